package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

const appointmentColumns = `
	id, clinic_id, provider, patient_name,
	to_char(appointment_date, 'YYYY-MM-DD') AS appointment_date,
	start_time, duration_minutes, type, confirmed, intake_complete,
	notes, series_id, created_at, updated_at`

type appointmentRow struct {
	ID             uuid.UUID  `db:"id"`
	ClinicID       uuid.UUID  `db:"clinic_id"`
	Provider       string     `db:"provider"`
	PatientName    string     `db:"patient_name"`
	Date           string     `db:"appointment_date"`
	StartTime      string     `db:"start_time"`
	Duration       int        `db:"duration_minutes"`
	Type           string     `db:"type"`
	Confirmed      bool       `db:"confirmed"`
	IntakeComplete bool       `db:"intake_complete"`
	Notes          string     `db:"notes"`
	SeriesID       *uuid.UUID `db:"series_id"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r appointmentRow) toModel() *model.Appointment {
	return &model.Appointment{
		ID:          r.ID.String(),
		ClinicID:    r.ClinicID,
		Provider:    r.Provider,
		PatientName: r.PatientName,
		Date:        r.Date,
		Time:        r.StartTime,
		Duration:    r.Duration,
		Type:        model.AppointmentType(r.Type),
		Status: model.AppointmentStatus{
			Confirmed:      r.Confirmed,
			IntakeComplete: r.IntakeComplete,
		},
		Notes:     r.Notes,
		SeriesID:  r.SeriesID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toModels(rows []appointmentRow) []*model.Appointment {
	out := make([]*model.Appointment, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("appointment_create")(&err)

	query := `
		INSERT INTO appointments (
			id, clinic_id, provider, patient_name, appointment_date,
			start_time, duration_minutes, type, confirmed, intake_complete,
			notes, series_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	id := uuid.New()
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, query,
		id,
		appointment.ClinicID,
		appointment.Provider,
		appointment.PatientName,
		appointment.Date,
		appointment.Time,
		appointment.Duration,
		appointment.Type,
		appointment.Status.Confirmed,
		appointment.Status.IntakeComplete,
		appointment.Notes,
		appointment.SeriesID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	appointment.ID = id.String()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Appointment, err error) {
	defer r.observe("appointment_get")(&err)

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var row appointmentRow
	if err = r.db.GetContext(ctx, &row, query, id); err != nil {
		err = notFound(err)
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("appointment_update")(&err)

	id, err := uuid.Parse(appointment.ID)
	if err != nil {
		return fmt.Errorf("invalid appointment id %q: %w", appointment.ID, err)
	}

	query := `
		UPDATE appointments
		SET appointment_date = $1, start_time = $2, duration_minutes = $3,
			confirmed = $4, intake_complete = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.Time,
		appointment.Duration,
		appointment.Status.Confirmed,
		appointment.Status.IntakeComplete,
		appointment.Notes,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if err = checkAffected(result); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	appointment.UpdatedAt = now
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("appointment_delete")(&err)

	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if err = checkAffected(result); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) (_ []*model.Appointment, err error) {
	defer r.observe("appointment_list")(&err)

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE clinic_id = $1`
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.Provider != "" {
		query += fmt.Sprintf(" AND provider = $%d", argCount)
		args = append(args, filters.Provider)
		argCount++
	}

	if filters.Date != "" {
		query += fmt.Sprintf(" AND appointment_date = $%d", argCount)
		args = append(args, filters.Date)
		argCount++
	}

	if filters.Confirmed != nil {
		query += fmt.Sprintf(" AND confirmed = $%d", argCount)
		args = append(args, *filters.Confirmed)
	}

	query += " ORDER BY appointment_date ASC, start_time ASC, created_at ASC"

	var rows []appointmentRow
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return toModels(rows), nil
}

func (r *appointmentRepository) ListByDay(ctx context.Context, clinicID uuid.UUID, date, provider string) (_ []*model.Appointment, err error) {
	defer r.observe("appointment_list_by_day")(&err)

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE clinic_id = $1 AND appointment_date = $2`
	args := []interface{}{clinicID, date}
	if provider != "" {
		query += " AND provider = $3"
		args = append(args, provider)
	}
	query += " ORDER BY created_at ASC, id ASC"

	var rows []appointmentRow
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments for %s: %w", date, err)
	}
	return toModels(rows), nil
}

func (r *appointmentRepository) ListClinicsWithAppointments(ctx context.Context, date string) (_ []uuid.UUID, err error) {
	defer r.observe("appointment_list_clinics")(&err)

	query := `
		SELECT clinic_id FROM appointments WHERE appointment_date = $1
		UNION
		SELECT clinic_id FROM appointment_series WHERE start_date <= $1
		ORDER BY clinic_id
	`
	var ids []uuid.UUID
	if err = r.db.SelectContext(ctx, &ids, query, date); err != nil {
		return nil, fmt.Errorf("failed to list clinics with appointments: %w", err)
	}
	return ids, nil
}
