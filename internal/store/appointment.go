package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"patient-care-api/internal/model"
)

const appointmentCols = `id, user_id, doctor_name, doctor_spec, slot_date, slot_time, status,
	cancelled_at, reschedule_history, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	var date, status string
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorName, &a.DoctorSpec, &date, &a.Time, &status,
		&a.CancelledAt, &a.RescheduleHistory, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Date = model.Date(date)
	a.Status = model.AppointmentStatus(status)
	if a.RescheduleHistory == nil {
		a.RescheduleHistory = []model.RescheduleEntry{}
	}
	return a, nil
}

func (s *Store) collectAppointments(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// InsertAppointment returns ErrSlotTaken when the slot index rejects the row,
// which is what closes the check-then-insert race between two bookings.
func (s *Store) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	history := a.RescheduleHistory
	if history == nil {
		history = []model.RescheduleEntry{}
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, user_id, doctor_name, doctor_spec, slot_date, slot_time, status, reschedule_history)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.DoctorName, a.DoctorSpec, string(a.Date), a.Time, string(a.Status), history,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

func (s *Store) SlotTaken(ctx context.Context, doctor string, date model.Date, time, excludeID string) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM appointments
		WHERE doctor_name = $1 AND slot_date = $2 AND slot_time = $3
		  AND status <> 'Cancelled'`
	args := []any{doctor, string(date), time}

	if excludeID != "" {
		q += ` AND id <> $4`
		args = append(args, excludeID)
	}
	q += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, mapErr(err)
}

func (s *Store) AppointmentByID(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	return a, mapErr(err)
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	history := a.RescheduleHistory
	if history == nil {
		history = []model.RescheduleEntry{}
	}
	err := s.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET slot_date=$1, slot_time=$2, status=$3, cancelled_at=$4, reschedule_history=$5, updated_at=NOW()
		 WHERE id=$6
		 RETURNING updated_at`,
		string(a.Date), a.Time, string(a.Status), a.CancelledAt, history, a.ID,
	).Scan(&a.UpdatedAt)
	return mapErr(err)
}

func (s *Store) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	out, err := s.collectAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE user_id = $1
		 ORDER BY slot_date DESC, created_at DESC`, userID)
	return out, mapErr(err)
}

func (s *Store) UpcomingAppointments(ctx context.Context, userID string, today model.Date) ([]model.Appointment, error) {
	out, err := s.collectAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE user_id = $1 AND status <> 'Cancelled' AND slot_date >= $2
		 ORDER BY slot_date ASC, created_at ASC`, userID, string(today))
	return out, mapErr(err)
}

func (s *Store) PastAppointments(ctx context.Context, userID string, today model.Date) ([]model.Appointment, error) {
	out, err := s.collectAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE user_id = $1 AND (status IN ('Cancelled', 'Completed') OR slot_date < $2)
		 ORDER BY slot_date DESC, created_at DESC`, userID, string(today))
	return out, mapErr(err)
}
