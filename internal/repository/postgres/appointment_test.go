package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

// openTestDB connects to the database named by SCHEDULE_TEST_DATABASE_DSN,
// which must already carry the migrations. Tests are skipped without it.
func openTestDB(t *testing.T) (BaseRepository, uuid.UUID) {
	t.Helper()
	dsn := os.Getenv("SCHEDULE_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("SCHEDULE_TEST_DATABASE_DSN not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clinicID := uuid.New()
	_, err = db.Exec(`INSERT INTO clinics (id, name, ops_email, timezone) VALUES ($1, $2, $3, $4)`,
		clinicID, "Test clinic", "ops@example.com", "UTC")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM clinics WHERE id = $1`, clinicID)
	})

	return NewBaseRepository(db, metrics.New("test")), clinicID
}

func TestAppointmentRepository_CRUD(t *testing.T) {
	base, clinicID := openTestDB(t)
	repo := NewAppointmentRepository(base)
	ctx := context.Background()

	apt := &model.Appointment{
		ClinicID:    clinicID,
		Provider:    "Dr. Chen",
		PatientName: "Ada",
		Date:        "2024-05-01",
		Time:        "09:00",
		Duration:    30,
		Type:        model.AppointmentTypeFollowUp,
	}
	require.NoError(t, repo.Create(ctx, apt))
	require.NotEmpty(t, apt.ID)

	id := uuid.MustParse(apt.ID)
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", got.Date)
	assert.Equal(t, "09:00", got.Time)
	assert.False(t, got.Status.Confirmed)

	got.Status.Confirmed = true
	got.Time = "09:15"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Status.Confirmed)
	assert.Equal(t, "09:15", got.Time)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), apperrors.ErrRecordNotFound)
}

func TestAppointmentRepository_ListByDay(t *testing.T) {
	base, clinicID := openTestDB(t)
	repo := NewAppointmentRepository(base)
	ctx := context.Background()

	for _, a := range []struct{ provider, date, clock string }{
		{"Dr. Chen", "2024-05-01", "10:00"},
		{"Dr. Chen", "2024-05-01", "09:00"},
		{"Dr. Patel", "2024-05-01", "09:00"},
		{"Dr. Chen", "2024-05-02", "09:00"},
	} {
		require.NoError(t, repo.Create(ctx, &model.Appointment{
			ClinicID: clinicID, Provider: a.provider, PatientName: "P", Date: a.date,
			Time: a.clock, Duration: 30, Type: model.AppointmentTypeConsultation,
		}))
	}

	day, err := repo.ListByDay(ctx, clinicID, "2024-05-01", "")
	require.NoError(t, err)
	require.Len(t, day, 3)
	// insertion order
	assert.Equal(t, "10:00", day[0].Time)

	chen, err := repo.ListByDay(ctx, clinicID, "2024-05-01", "Dr. Chen")
	require.NoError(t, err)
	assert.Len(t, chen, 2)

	confirmed := false
	listed, err := repo.List(ctx, &model.AppointmentFilters{ClinicID: clinicID, Confirmed: &confirmed})
	require.NoError(t, err)
	assert.Len(t, listed, 4)

	clinics, err := repo.ListClinicsWithAppointments(ctx, "2024-05-02")
	require.NoError(t, err)
	assert.Contains(t, clinics, clinicID)
}

func TestSeriesRepository_CreateAndList(t *testing.T) {
	base, clinicID := openTestDB(t)
	repo := NewSeriesRepository(base)
	ctx := context.Background()

	s := &model.AppointmentSeries{
		ClinicID:    clinicID,
		Provider:    "Dr. Chen",
		PatientName: "Ada",
		RRule:       "FREQ=WEEKLY;BYDAY=MO",
		StartDate:   "2024-05-06",
		Time:        "14:30",
		Duration:    45,
		Type:        model.AppointmentTypeFollowUp,
	}
	require.NoError(t, repo.Create(ctx, s))

	list, err := repo.List(ctx, clinicID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-05-06", list[0].StartDate)
	assert.Equal(t, s.ID, list[0].ID)

	clinic, err := NewClinicRepository(base).Get(ctx, clinicID)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", clinic.OpsEmail)
}
