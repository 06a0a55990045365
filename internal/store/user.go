package store

import (
	"context"

	"patient-care-api/internal/model"
)

const userCols = `id, name, email, password_hash, phone, role, health_score,
	heart_rate, blood_pressure, hydration, steps, sleep, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, phone, role, health_score)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, string(u.Role), u.HealthScore,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

func (s *Store) userWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var role string
	err := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &role, &u.HealthScore,
		&u.Vitals.HeartRate, &u.Vitals.BloodPressure, &u.Vitals.Hydration, &u.Vitals.Steps, &u.Vitals.Sleep,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	u.Role = model.Role(role)
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, `email = $1`, email)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userWhere(ctx, `id = $1`, id)
}

// UpdateHealthScore overwrites the cached score; last write wins.
func (s *Store) UpdateHealthScore(ctx context.Context, id string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET health_score=$1, updated_at=NOW() WHERE id=$2`, score, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateVitals(ctx context.Context, id string, v model.Vitals) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET heart_rate=$1, blood_pressure=$2, hydration=$3, steps=$4, sleep=$5, updated_at=NOW()
		 WHERE id=$6`,
		v.HeartRate, v.BloodPressure, v.Hydration, v.Steps, v.Sleep, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	var completed, cancelled int
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'patient'),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COUNT(*) FROM medications WHERE is_active),
			(SELECT COUNT(*) FROM appointments WHERE status = 'Completed'),
			(SELECT COUNT(*) FROM appointments WHERE status = 'Cancelled')`,
	).Scan(&st.Users, &st.Appointments, &st.Medications, &completed, &cancelled)
	if err != nil {
		return st, mapErr(err)
	}
	return model.FinishStats(st, completed, cancelled), nil
}
