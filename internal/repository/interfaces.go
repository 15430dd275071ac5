package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository stores single bookings
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListByDay returns a clinic's bookings on date, optionally for one
		// provider, ordered by insertion.
		ListByDay(ctx context.Context, clinicID uuid.UUID, date, provider string) ([]*model.Appointment, error)
		ListClinicsWithAppointments(ctx context.Context, date string) ([]uuid.UUID, error)
	}

	SeriesRepository interface {
		Create(ctx context.Context, series *model.AppointmentSeries) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.AppointmentSeries, error)
	}

	ClinicRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	}
)
