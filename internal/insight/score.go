package insight

import (
	"math"

	"patient-care-api/internal/model"
)

// AdherenceWindow is how many calendar days, today included, count toward
// medication adherence.
const AdherenceWindow = 7

const (
	medWeight      = 0.5
	aptWeight      = 0.3
	baselineWeight = 0.2

	baselineWithVitals    = 80
	baselineWithoutVitals = 70

	// VacuousScore is awarded when there is nothing to judge.
	VacuousScore = 100.0
)

// MedicationScore is the number of taken entries inside the adherence window
// over one point per day per active medication. Frequency is not weighed, so
// repeated logs of a twice-a-day medication can lift the result above 100;
// CompositeScore clamps the final score.
func MedicationScore(meds []model.Medication, today model.Date) float64 {
	if len(meds) == 0 {
		return VacuousScore
	}
	window := make(map[model.Date]bool, AdherenceWindow)
	for _, d := range model.LastDays(today, AdherenceWindow) {
		window[d] = true
	}

	possible := AdherenceWindow * len(meds)
	taken := 0
	for _, m := range meds {
		for _, e := range m.Adherence {
			if e.Taken && window[e.Date] {
				taken++
			}
		}
	}
	return 100 * float64(taken) / float64(possible)
}

// AppointmentScore is completed / (completed + cancelled). Scheduled and
// rescheduled appointments are not judged yet.
func AppointmentScore(apts []model.Appointment) float64 {
	var completed, considered int
	for _, a := range apts {
		switch a.Status {
		case model.StatusCompleted:
			completed++
			considered++
		case model.StatusCancelled:
			considered++
		}
	}
	if considered == 0 {
		return VacuousScore
	}
	return 100 * float64(completed) / float64(considered)
}

// CompositeScore weighs the sub-scores with a vitals engagement baseline.
func CompositeScore(medScore, aptScore float64, hasHeartRate bool) int {
	baseline := float64(baselineWithoutVitals)
	if hasHeartRate {
		baseline = baselineWithVitals
	}
	score := int(math.Round(medWeight*medScore + aptWeight*aptScore + baselineWeight*baseline))
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
