// Package memory holds map-backed repositories for tests and local tools.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
)

type Store struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*model.Appointment
	order        []uuid.UUID
	series       []*model.AppointmentSeries
	clinics      map[uuid.UUID]*model.Clinic

	// Err, when set, is returned by every operation
	Err error
}

func NewStore() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]*model.Appointment),
		clinics:      make(map[uuid.UUID]*model.Clinic),
	}
}

func (s *Store) Appointments() repository.AppointmentRepository { return (*appointmentRepo)(s) }
func (s *Store) Series() repository.SeriesRepository             { return (*seriesRepo)(s) }
func (s *Store) Clinics() repository.ClinicRepository            { return (*clinicRepo)(s) }

// AddClinic registers a clinic and returns it
func (s *Store) AddClinic(name, opsEmail, timezone string) *model.Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Clinic{Name: name, OpsEmail: opsEmail, Timezone: timezone}
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.clinics[c.ID] = c
	return c
}

func clone(a *model.Appointment) *model.Appointment {
	cp := *a
	return &cp
}

type appointmentRepo Store

func (r *appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	id := uuid.New()
	now := time.Now().UTC()
	a.ID = id.String()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.appointments[id] = clone(a)
	s.order = append(s.order, id)
	return nil
}

func (r *appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return clone(a), nil
}

func (r *appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	if _, ok := s.appointments[id]; !ok {
		return apperrors.ErrRecordNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = clone(a)
	return nil
}

func (r *appointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.appointments[id]; !ok {
		return apperrors.ErrRecordNotFound
	}
	delete(s.appointments, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// inOrder returns stored appointments matching keep, in insertion order
func (s *Store) inOrder(keep func(*model.Appointment) bool) []*model.Appointment {
	out := make([]*model.Appointment, 0)
	for _, id := range s.order {
		if a := s.appointments[id]; keep(a) {
			out = append(out, clone(a))
		}
	}
	return out
}

func (r *appointmentRepo) List(_ context.Context, f *model.AppointmentFilters) ([]*model.Appointment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.inOrder(func(a *model.Appointment) bool {
		return a.ClinicID == f.ClinicID &&
			(f.Provider == "" || a.Provider == f.Provider) &&
			(f.Date == "" || a.Date == f.Date) &&
			(f.Confirmed == nil || a.Status.Confirmed == *f.Confirmed)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *appointmentRepo) ListByDay(_ context.Context, clinicID uuid.UUID, date, provider string) ([]*model.Appointment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.inOrder(func(a *model.Appointment) bool {
		return a.ClinicID == clinicID && a.Date == date && (provider == "" || a.Provider == provider)
	}), nil
}

func (r *appointmentRepo) ListClinicsWithAppointments(_ context.Context, date string) ([]uuid.UUID, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	seen := make(map[uuid.UUID]bool)
	for _, a := range s.appointments {
		if a.Date == date {
			seen[a.ClinicID] = true
		}
	}
	for _, se := range s.series {
		if se.StartDate <= date {
			seen[se.ClinicID] = true
		}
	}
	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

type seriesRepo Store

func (r *seriesRepo) Create(_ context.Context, se *model.AppointmentSeries) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	se.ID = uuid.New()
	se.CreatedAt = time.Now().UTC()
	se.UpdatedAt = se.CreatedAt
	cp := *se
	s.series = append(s.series, &cp)
	return nil
}

func (r *seriesRepo) List(_ context.Context, clinicID uuid.UUID) ([]*model.AppointmentSeries, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*model.AppointmentSeries, 0)
	for _, se := range s.series {
		if se.ClinicID == clinicID {
			cp := *se
			out = append(out, &cp)
		}
	}
	return out, nil
}

type clinicRepo Store

func (r *clinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.clinics[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}
