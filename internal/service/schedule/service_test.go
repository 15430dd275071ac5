package schedule

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	"github.com/jwalitptl/clinic-schedule/internal/repository/memory"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

const day = "2024-05-01"

func newTestService(t *testing.T) (*Service, *memory.Store, *model.Clinic) {
	t.Helper()
	store := memory.NewStore()
	clinic := store.AddClinic("North", "ops@north.test", "America/New_York")
	svc := NewService(store.Appointments(), store.Series(), store.Clinics(),
		metrics.New("test"), logger.Nop(), Config{TTL: time.Minute, CleanupInterval: time.Minute})
	svc.now = func() time.Time { return time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC) }
	return svc, store, clinic
}

func book(t *testing.T, store *memory.Store, clinicID uuid.UUID, provider, clock string, duration int) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		ClinicID: clinicID, Provider: provider, PatientName: "P", Date: day,
		Time: clock, Duration: duration, Type: model.AppointmentTypeFollowUp,
	}
	require.NoError(t, store.Appointments().Create(context.Background(), a))
	return a
}

func statusOf(err error) int {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode()
	}
	return 0
}

func TestGroup(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.Group(context.Background(), []*model.Appointment{
		{ID: "a", Provider: "Dr. Chen", Time: "9:00", Duration: 30},
		{ID: "b", Provider: "Dr. Chen", Time: "9:00", Duration: 30},
		{ID: "c", Provider: "Dr. Chen", Time: "9:30", Duration: 30},
		{ID: "d", Provider: "Dr. Chen", Time: "10:00", Duration: 30},
	})
	require.NoError(t, err)
	require.Len(t, res.Providers, 1)
	groups := res.Providers[0].Groups
	require.Len(t, groups, 3)
	assert.True(t, groups[0].Conflict)
	assert.Equal(t, 2, groups[0].Lanes)
	assert.Equal(t, 1, res.Stats.ConflictGroups)
	assert.Equal(t, 2, res.Stats.ConflictingAppointments)
}

func TestGroup_InputErrorsAreBadRequests(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Group(context.Background(), []*model.Appointment{{ID: "x", Time: "25:99"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Contains(t, err.Error(), `"25:99"`)

	_, err = svc.Group(context.Background(), []*model.Appointment{{ID: "x", Time: "9:00", Duration: -1}})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = svc.Group(context.Background(), []*model.Appointment{{ID: "x", Time: "9:00"}, nil})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Contains(t, err.Error(), "appointment 1 is missing")
}

func TestDayView_IncludesSeriesAndScopesProviders(t *testing.T) {
	svc, store, clinic := newTestService(t)
	ctx := context.Background()

	book(t, store, clinic.ID, "Dr. Chen", "09:00", 30)
	book(t, store, clinic.ID, "Dr. Patel", "09:00", 30)
	require.NoError(t, store.Series().Create(ctx, &model.AppointmentSeries{
		ClinicID: clinic.ID, Provider: "Dr. Chen", PatientName: "Weekly", RRule: "FREQ=WEEKLY;BYDAY=WE",
		StartDate: "2024-04-01", Time: "9:15 AM", Duration: 30, Type: model.AppointmentTypeFollowUp,
	}))

	view, err := svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	require.Len(t, view.Providers, 2)
	assert.Equal(t, "Dr. Chen", view.Providers[0].Provider)
	chen := view.Providers[0].Groups
	require.Len(t, chen, 1)
	assert.True(t, chen[0].Conflict)
	assert.Len(t, chen[0].Members, 2)
	assert.Equal(t, 3, view.Stats.Total)

	patelOnly, err := svc.DayView(ctx, clinic.ID, day, "Dr. Patel")
	require.NoError(t, err)
	require.Len(t, patelOnly.Providers, 1)
	assert.False(t, patelOnly.Providers[0].Groups[0].Conflict)
}

func TestDayView_CacheAndInvalidate(t *testing.T) {
	svc, store, clinic := newTestService(t)
	ctx := context.Background()

	book(t, store, clinic.ID, "Dr. Chen", "09:00", 30)
	view, err := svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Total)

	book(t, store, clinic.ID, "Dr. Chen", "09:10", 30)
	view, err = svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Total, "served from cache")

	svc.Invalidate(clinic.ID, day)
	view, err = svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Total)

	book(t, store, clinic.ID, "Dr. Chen", "11:00", 30)
	svc.Invalidate(clinic.ID, "")
	view, err = svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stats.Total)
}

// writeDuringRead runs a write between the day read and the cache store.
type writeDuringRead struct {
	repository.AppointmentRepository
	write func()
}

func (r *writeDuringRead) ListByDay(ctx context.Context, clinicID uuid.UUID, date, provider string) ([]*model.Appointment, error) {
	apts, err := r.AppointmentRepository.ListByDay(ctx, clinicID, date, provider)
	if r.write != nil {
		r.write()
		r.write = nil
	}
	return apts, err
}

func TestLoad_InvalidateDuringReadIsNotCached(t *testing.T) {
	store := memory.NewStore()
	clinic := store.AddClinic("North", "", "UTC")
	repo := &writeDuringRead{AppointmentRepository: store.Appointments()}
	svc := NewService(repo, store.Series(), store.Clinics(),
		metrics.New("test"), logger.Nop(), Config{TTL: time.Minute, CleanupInterval: time.Minute})
	ctx := context.Background()

	book(t, store, clinic.ID, "Dr. Chen", "09:00", 30)
	repo.write = func() {
		book(t, store, clinic.ID, "Dr. Chen", "09:10", 30)
		svc.Invalidate(clinic.ID, day)
	}

	view, err := svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Total)

	view, err = svc.DayView(ctx, clinic.ID, day, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Total)
}

func TestConflicts(t *testing.T) {
	svc, store, clinic := newTestService(t)
	a := book(t, store, clinic.ID, "Dr. Chen", "09:00", 30)
	b := book(t, store, clinic.ID, "Dr. Chen", "09:15", 30)
	book(t, store, clinic.ID, "Dr. Chen", "10:00", 30)

	conflicts, err := svc.Conflicts(context.Background(), clinic.ID, day)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, []string{a.ID, b.ID}, conflicts[0].AppointmentIDs)
	assert.Equal(t, clinic.ID, conflicts[0].ClinicID)
	assert.Equal(t, day, conflicts[0].Date)
	assert.Equal(t, "09:00", conflicts[0].Start)
	assert.Equal(t, "09:45", conflicts[0].End)
}

func TestLoad_Errors(t *testing.T) {
	svc, store, clinic := newTestService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx, clinic.ID, "05/01/2024", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	store.Err = errors.New("db down")
	_, err = svc.Load(ctx, clinic.ID, day, "")
	assert.Equal(t, http.StatusInternalServerError, statusOf(err))
}

func TestExportICS(t *testing.T) {
	svc, store, clinic := newTestService(t)
	a := book(t, store, clinic.ID, "Dr. Chen", "09:00", 30)
	book(t, store, clinic.ID, "Dr. Chen", "09:15", 30)

	ics, err := svc.ExportICS(context.Background(), clinic.ID, day)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.Contains(t, ics, a.ID+"@clinic-schedule")
	assert.Contains(t, ics, "CONFLICT")

	_, err = svc.ExportICS(context.Background(), uuid.New(), day)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
