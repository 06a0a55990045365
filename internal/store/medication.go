package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"patient-care-api/internal/model"
)

const medicationCols = `id, user_id, name, dosage, reminder_time, frequency, instruction,
	start_date, end_date, is_active, created_at, updated_at`

func scanMedication(row pgx.Row) (*model.Medication, error) {
	m := &model.Medication{}
	var freq, start string
	var end *string
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Time, &freq, &m.Instruction,
		&start, &end, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Frequency = model.Frequency(freq)
	m.StartDate = model.Date(start)
	if end != nil {
		d := model.Date(*end)
		m.EndDate = &d
	}
	m.Adherence = []model.AdherenceEntry{}
	return m, nil
}

func (s *Store) InsertMedication(ctx context.Context, m *model.Medication) error {
	var end *string
	if m.EndDate != nil {
		e := string(*m.EndDate)
		end = &e
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO medications (id, user_id, name, dosage, reminder_time, frequency, instruction, start_date, end_date, is_active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING created_at, updated_at`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Time, string(m.Frequency), m.Instruction,
		string(m.StartDate), end, m.Active,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return mapErr(err)
}

func (s *Store) MedicationByID(ctx context.Context, id string) (*model.Medication, error) {
	m, err := scanMedication(s.pool.QueryRow(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	if err := s.loadAdherence(ctx, []*model.Medication{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// ActiveMedications returns the user's non-deleted medications with their
// full adherence logs.
func (s *Store) ActiveMedications(ctx context.Context, userID string) ([]model.Medication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+medicationCols+` FROM medications
		 WHERE user_id = $1 AND is_active
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	var meds []*model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		meds = append(meds, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadAdherence(ctx, meds); err != nil {
		return nil, err
	}
	out := make([]model.Medication, len(meds))
	for i, m := range meds {
		out[i] = *m
	}
	return out, nil
}

func (s *Store) loadAdherence(ctx context.Context, meds []*model.Medication) error {
	if len(meds) == 0 {
		return nil
	}
	byID := make(map[string]*model.Medication, len(meds))
	ids := make([]string, 0, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT medication_id, day, taken, taken_at FROM medication_adherence
		 WHERE medication_id = ANY($1::uuid[])
		 ORDER BY id`, ids)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var medID, day string
		var e model.AdherenceEntry
		if err := rows.Scan(&medID, &day, &e.Taken, &e.TakenAt); err != nil {
			return err
		}
		e.Date = model.Date(day)
		if m, ok := byID[medID]; ok {
			m.Adherence = append(m.Adherence, e)
		}
	}
	return rows.Err()
}

// AppendAdherence adds a log entry; entries are never rewritten.
func (s *Store) AppendAdherence(ctx context.Context, medicationID string, e model.AdherenceEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO medication_adherence (medication_id, day, taken, taken_at) VALUES ($1,$2,$3,$4)`,
		medicationID, string(e.Date), e.Taken, e.TakenAt)
	if err != nil {
		return mapErr(err)
	}
	_, err = tx.Exec(ctx, `UPDATE medications SET updated_at=NOW() WHERE id=$1`, medicationID)
	if err != nil {
		return mapErr(err)
	}
	return tx.Commit(ctx)
}

func (s *Store) DeactivateMedication(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE medications SET is_active=false, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
