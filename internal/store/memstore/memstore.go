// Package memstore is an in-process Store with the same semantics as the
// Postgres one, including the active-slot uniqueness rule. It backs tests
// and STORE=memory local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"patient-care-api/internal/model"
	"patient-care-api/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	apts  map[string]*model.Appointment
	meds  map[string]*model.Medication
	seq   map[string]int // insertion order for stable sorts
	next  int
	now   func() time.Time
}

func New() *Store {
	return &Store{
		users: map[string]*model.User{},
		apts:  map[string]*model.Appointment{},
		meds:  map[string]*model.Medication{},
		seq:   map[string]int{},
		now:   time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) stamp(id string) {
	s.next++
	s.seq[id] = s.next
}

func cloneAppointment(a *model.Appointment) model.Appointment {
	c := *a
	c.RescheduleHistory = append([]model.RescheduleEntry{}, a.RescheduleHistory...)
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		c.CancelledAt = &t
	}
	return c
}

func cloneMedication(m *model.Medication) model.Medication {
	c := *m
	c.Adherence = append([]model.AdherenceEntry{}, m.Adherence...)
	return c
}

// slotHeld must be called with mu held.
func (s *Store) slotHeld(doctor string, date model.Date, tm, excludeID string) bool {
	for id, a := range s.apts {
		if id == excludeID || !a.Occupies() {
			continue
		}
		if a.DoctorName == doctor && a.Date == date && a.Time == tm {
			return true
		}
	}
	return false
}

func (s *Store) InsertAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Occupies() && s.slotHeld(a.DoctorName, a.Date, a.Time, "") {
		return store.ErrSlotTaken
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.RescheduleHistory == nil {
		a.RescheduleHistory = []model.RescheduleEntry{}
	}
	c := cloneAppointment(a)
	s.apts[a.ID] = &c
	s.stamp(a.ID)
	return nil
}

func (s *Store) SlotTaken(_ context.Context, doctor string, date model.Date, tm, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotHeld(doctor, date, tm, excludeID), nil
}

func (s *Store) AppointmentByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.apts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneAppointment(a)
	return &c, nil
}

func (s *Store) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.apts[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	if a.Occupies() && s.slotHeld(cur.DoctorName, a.Date, a.Time, a.ID) {
		return store.ErrSlotTaken
	}
	a.UpdatedAt = s.now()
	c := cloneAppointment(a)
	c.UserID, c.DoctorName, c.DoctorSpec, c.CreatedAt = cur.UserID, cur.DoctorName, cur.DoctorSpec, cur.CreatedAt
	s.apts[a.ID] = &c
	return nil
}

func (s *Store) filterAppointments(keep func(*model.Appointment) bool, asc bool) []model.Appointment {
	out := []model.Appointment{}
	for _, a := range s.apts {
		if keep(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			if asc {
				return out[i].Date < out[j].Date
			}
			return out[i].Date > out[j].Date
		}
		if asc {
			return s.seq[out[i].ID] < s.seq[out[j].ID]
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out
}

func (s *Store) AppointmentsByUser(_ context.Context, userID string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAppointments(func(a *model.Appointment) bool {
		return a.UserID == userID
	}, false), nil
}

func (s *Store) UpcomingAppointments(_ context.Context, userID string, today model.Date) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAppointments(func(a *model.Appointment) bool {
		return a.UserID == userID && a.Occupies() && !a.Date.Before(today)
	}, true), nil
}

func (s *Store) PastAppointments(_ context.Context, userID string, today model.Date) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAppointments(func(a *model.Appointment) bool {
		if a.UserID != userID {
			return false
		}
		return a.Status == model.StatusCancelled || a.Status == model.StatusCompleted || a.Date.Before(today)
	}, false), nil
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.users {
		if ex.Email == u.Email {
			return store.ErrEmailTaken
		}
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) UpdateHealthScore(_ context.Context, id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.HealthScore = score
	u.UpdatedAt = s.now()
	return nil
}

func (s *Store) UpdateVitals(_ context.Context, id string, v model.Vitals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Vitals = v
	u.UpdatedAt = s.now()
	return nil
}

func (s *Store) InsertMedication(_ context.Context, m *model.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Adherence == nil {
		m.Adherence = []model.AdherenceEntry{}
	}
	c := cloneMedication(m)
	s.meds[m.ID] = &c
	s.stamp(m.ID)
	return nil
}

func (s *Store) MedicationByID(_ context.Context, id string) (*model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meds[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneMedication(m)
	return &c, nil
}

func (s *Store) ActiveMedications(_ context.Context, userID string) ([]model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Medication{}
	for _, m := range s.meds {
		if m.UserID == userID && m.Active {
			out = append(out, cloneMedication(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *Store) AppendAdherence(_ context.Context, medicationID string, e model.AdherenceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meds[medicationID]
	if !ok {
		return store.ErrNotFound
	}
	m.Adherence = append(m.Adherence, e)
	m.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeactivateMedication(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meds[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Active = false
	m.UpdatedAt = s.now()
	return nil
}

func (s *Store) Stats(context.Context) (model.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st model.Stats
	var completed, cancelled int
	for _, u := range s.users {
		if u.Role == model.RolePatient {
			st.Users++
		}
	}
	for _, a := range s.apts {
		st.Appointments++
		switch a.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusCancelled:
			cancelled++
		}
	}
	for _, m := range s.meds {
		if m.Active {
			st.Medications++
		}
	}
	return model.FinishStats(st, completed, cancelled), nil
}
