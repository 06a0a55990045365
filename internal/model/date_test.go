package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-10-24")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-10-24"), d)

	for _, bad := range []string{"", "2024-1-2", "24-10-2024", "2024-02-30", "2024-10-24T10:00:00Z"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateOrdering(t *testing.T) {
	assert.True(t, Date("2024-09-30").Before("2024-10-01"))
	assert.True(t, Date("2025-01-01").After("2024-12-31"))
	assert.False(t, Date("2024-10-01").Before("2024-10-01"))
}

func TestAddDaysAndLastDays(t *testing.T) {
	assert.Equal(t, Date("2024-03-01"), Date("2024-02-29").AddDays(1))
	assert.Equal(t, Date("2023-12-31"), Date("2024-01-01").AddDays(-1))

	assert.Equal(t, []Date{
		"2024-03-02", "2024-03-01", "2024-02-29", "2024-02-28",
	}, LastDays("2024-03-02", 4))
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, 10, 24, 23, 59, 0, 0, time.Local)
	assert.Equal(t, Date("2024-10-24"), DateOf(ts))
}

func TestMedicationTakenOn(t *testing.T) {
	m := Medication{Adherence: []AdherenceEntry{
		{Date: "2024-10-23", Taken: false},
		{Date: "2024-10-24", Taken: true},
	}}
	assert.True(t, m.TakenOn("2024-10-24"))
	assert.False(t, m.TakenOn("2024-10-23"))
	assert.False(t, m.TakenOn("2024-10-22"))
}

func TestFinishStats(t *testing.T) {
	st := FinishStats(Stats{Appointments: 4}, 1, 2)
	assert.InDelta(t, 25, st.CompletionRate, 1e-9)
	assert.InDelta(t, 50, st.CancellationRate, 1e-9)
	assert.Zero(t, FinishStats(Stats{}, 0, 0).CompletionRate)
}
