package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"patient-care-api/internal/model"
)

const today = model.Date("2024-10-24")

func takenOn(days ...int) []model.AdherenceEntry {
	out := []model.AdherenceEntry{}
	for _, d := range days {
		out = append(out, model.AdherenceEntry{Date: today.AddDays(-d), Taken: true})
	}
	return out
}

func TestMedicationScore(t *testing.T) {
	tests := []struct {
		name string
		meds []model.Medication
		want float64
	}{
		{"no medications", nil, 100},
		{"perfect week", []model.Medication{{Adherence: takenOn(0, 1, 2, 3, 4, 5, 6)}}, 100},
		{"four of seven", []model.Medication{{Adherence: takenOn(0, 2, 4, 6)}}, 100 * 4.0 / 7},
		{"outside window ignored", []model.Medication{{Adherence: takenOn(7, 8, 30)}}, 0},
		{"untaken entries ignored", []model.Medication{{Adherence: []model.AdherenceEntry{{Date: today, Taken: false}}}}, 0},
		{"two medications pooled", []model.Medication{
			{Adherence: takenOn(0, 1, 2, 3, 4, 5, 6)},
			{Adherence: takenOn(0)},
		}, 100 * 8.0 / 14},
		{"repeated logs count toward the pool", []model.Medication{
			{Frequency: model.FrequencyTwiceADay, Adherence: append(takenOn(0, 1, 2, 3, 4, 5, 6), takenOn(0, 1, 2, 3)...)},
			{Adherence: nil},
		}, 100 * 11.0 / 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MedicationScore(tt.meds, today), 1e-9)
		})
	}
}

func TestTwiceADayLogsOffsetAnUntakenDailyMedication(t *testing.T) {
	twice := append(takenOn(0, 1, 2, 3, 4, 5, 6), takenOn(0, 1, 2, 3, 4, 5, 6)...)
	meds := []model.Medication{
		{Frequency: model.FrequencyTwiceADay, Adherence: twice},
		{Frequency: model.FrequencyDaily},
	}

	s := MedicationScore(meds, today)
	assert.InDelta(t, 100, s, 1e-9)

	_, fired := LowAdherence(Inputs{MedScore: s})
	assert.False(t, fired)
	assert.Equal(t, 94, CompositeScore(s, 100, false))
}

func TestMedicationScoreAboveHundredIsClamped(t *testing.T) {
	twice := append(takenOn(0, 1, 2, 3, 4, 5, 6), takenOn(0, 1, 2, 3, 4, 5, 6)...)
	s := MedicationScore([]model.Medication{{Frequency: model.FrequencyTwiceADay, Adherence: twice}}, today)
	assert.InDelta(t, 200, s, 1e-9)
	assert.Equal(t, 100, CompositeScore(s, 100, true))
}

func TestMedicationScoreFourOfSevenRoundsTo57(t *testing.T) {
	s := MedicationScore([]model.Medication{{Adherence: takenOn(0, 1, 3, 5)}}, today)
	assert.Equal(t, 57, int(s+0.5))
}

func TestAppointmentScore(t *testing.T) {
	apt := func(s model.AppointmentStatus) model.Appointment { return model.Appointment{Status: s} }

	assert.Equal(t, 100.0, AppointmentScore(nil))
	assert.Equal(t, 100.0, AppointmentScore([]model.Appointment{apt(model.StatusScheduled), apt(model.StatusRescheduled)}))
	assert.Equal(t, 0.0, AppointmentScore([]model.Appointment{apt(model.StatusCancelled)}))
	assert.InDelta(t, 200.0/3, AppointmentScore([]model.Appointment{
		apt(model.StatusCompleted), apt(model.StatusCompleted), apt(model.StatusCancelled), apt(model.StatusScheduled),
	}), 1e-9)
}

func TestCompositeScore(t *testing.T) {
	assert.Equal(t, 94, CompositeScore(100, 100, false))
	assert.Equal(t, 96, CompositeScore(100, 100, true))
	assert.Equal(t, 14, CompositeScore(0, 0, false))
	assert.Equal(t, 16, CompositeScore(0, 0, true))
	// 0.5*57.142857 + 0.3*100 + 0.2*70 = 72.57
	assert.Equal(t, 73, CompositeScore(100*4.0/7, 100, false))
}

func TestCompositeScoreBounds(t *testing.T) {
	for med := 0.0; med <= 100; med += 12.5 {
		for apt := 0.0; apt <= 100; apt += 12.5 {
			for _, hr := range []bool{false, true} {
				s := CompositeScore(med, apt, hr)
				assert.GreaterOrEqual(t, s, 0)
				assert.LessOrEqual(t, s, 100)
			}
		}
	}
}
