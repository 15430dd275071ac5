package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

func (r *seriesRepository) Create(ctx context.Context, series *model.AppointmentSeries) (err error) {
	defer r.observe("series_create")(&err)

	query := `
		INSERT INTO appointment_series (
			id, clinic_id, provider, patient_name, rrule, start_date,
			start_time, duration_minutes, type, created_at, updated_at
		) VALUES (
			:id, :clinic_id, :provider, :patient_name, :rrule, :start_date,
			:start_time, :duration_minutes, :type, :created_at, :updated_at
		)
	`
	series.ID = uuid.New()
	series.CreatedAt = time.Now().UTC()
	series.UpdatedAt = series.CreatedAt

	if _, err = r.db.NamedExecContext(ctx, query, series); err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}
	return nil
}

func (r *seriesRepository) List(ctx context.Context, clinicID uuid.UUID) (_ []*model.AppointmentSeries, err error) {
	defer r.observe("series_list")(&err)

	query := `
		SELECT id, clinic_id, provider, patient_name, rrule,
			   to_char(start_date, 'YYYY-MM-DD') AS start_date,
			   start_time, duration_minutes, type, created_at, updated_at
		FROM appointment_series
		WHERE clinic_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var series []*model.AppointmentSeries
	if err = r.db.SelectContext(ctx, &series, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}
