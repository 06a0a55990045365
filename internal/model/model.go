package model

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Vitals are informational; only HeartRate feeds the health score.
type Vitals struct {
	HeartRate     *int     `json:"heartRate,omitempty"`
	BloodPressure string   `json:"bloodPressure,omitempty"`
	Hydration     *float64 `json:"hydration,omitempty"`
	Steps         *int     `json:"steps,omitempty"`
	Sleep         *float64 `json:"sleep,omitempty"`
}

// HasHeartRate reports whether a non-zero heart rate was recorded.
func (v Vitals) HasHeartRate() bool {
	return v.HeartRate != nil && *v.HeartRate > 0
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	HealthScore  int       `json:"healthScore"`
	Vitals       Vitals    `json:"vitals"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "Scheduled"
	StatusCancelled   AppointmentStatus = "Cancelled"
	StatusCompleted   AppointmentStatus = "Completed"
	StatusRescheduled AppointmentStatus = "Rescheduled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted, StatusRescheduled:
		return true
	}
	return false
}

const DefaultDoctorSpec = "General Physician"

type RescheduleEntry struct {
	Date      Date      `json:"date"`
	Time      string    `json:"time"`
	ChangedAt time.Time `json:"changedAt"`
}

type Appointment struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	DoctorName        string            `json:"doctorName"`
	DoctorSpec        string            `json:"doctorSpec"`
	Date              Date              `json:"date"`
	Time              string            `json:"time"`
	Status            AppointmentStatus `json:"status"`
	CancelledAt       *time.Time        `json:"cancelledAt,omitempty"`
	RescheduleHistory []RescheduleEntry `json:"rescheduleHistory"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Occupies reports whether the appointment holds its slot.
func (a *Appointment) Occupies() bool {
	return a.Status != StatusCancelled
}

type Frequency string

const (
	FrequencyDaily     Frequency = "Daily"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyTwiceADay Frequency = "Twice a day"
	FrequencyAsNeeded  Frequency = "As needed"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyTwiceADay, FrequencyAsNeeded:
		return true
	}
	return false
}

type AdherenceEntry struct {
	Date    Date      `json:"date"`
	Taken   bool      `json:"taken"`
	TakenAt time.Time `json:"takenAt"`
}

type Medication struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Dosage      string           `json:"dosage"`
	Time        string           `json:"time"`
	Frequency   Frequency        `json:"frequency"`
	Instruction string           `json:"instruction,omitempty"`
	StartDate   Date             `json:"startDate"`
	EndDate     *Date            `json:"endDate,omitempty"`
	Active      bool             `json:"isActive"`
	Adherence   []AdherenceEntry `json:"adherenceData"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// TakenOn reports whether a taken entry exists for day.
func (m *Medication) TakenOn(day Date) bool {
	for _, e := range m.Adherence {
		if e.Date == day && e.Taken {
			return true
		}
	}
	return false
}

type InsightType string

const (
	InsightAlert   InsightType = "Alert"
	InsightWarning InsightType = "Warning"
)

type Insight struct {
	Type     InsightType `json:"type"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Category string      `json:"category"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users            int     `json:"users"`
	Appointments     int     `json:"appointments"`
	Medications      int     `json:"medications"`
	CompletionRate   float64 `json:"completionRate"`
	CancellationRate float64 `json:"cancellationRate"`
}

// FinishStats fills the rates from raw completed/cancelled counts.
func FinishStats(st Stats, completed, cancelled int) Stats {
	if st.Appointments > 0 {
		st.CompletionRate = float64(completed) / float64(st.Appointments) * 100
		st.CancellationRate = float64(cancelled) / float64(st.Appointments) * 100
	}
	return st
}
