package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	sched "github.com/jwalitptl/clinic-schedule/internal/schedule"
	"github.com/jwalitptl/clinic-schedule/internal/service/notification"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
)

// DayIndex is the cached view of clinic days that writes must keep fresh
type DayIndex interface {
	Conflicts(ctx context.Context, clinicID uuid.UUID, date string) ([]model.Conflict, error)
	Invalidate(clinicID uuid.UUID, date string)
}

type Service struct {
	repo     repository.AppointmentRepository
	series   repository.SeriesRepository
	days     DayIndex
	notifier notification.Notifier
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	series repository.SeriesRepository,
	days DayIndex,
	notifier notification.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		series:   series,
		days:     days,
		notifier: notifier,
		logger:   log,
	}
}

// normalize rewrites the clock into canonical HH:MM form and applies the
// default length.
func normalize(apt *model.Appointment) error {
	clock, err := sched.NormalizeClock(apt.Time)
	if err != nil {
		return apperrors.BadRequest(err.Error(), err)
	}
	duration, err := sched.ResolveDuration(apt.ID, apt.Duration)
	if err != nil {
		return apperrors.BadRequest(err.Error(), err)
	}
	if _, err := model.ParseDate(apt.Date); err != nil {
		return apperrors.BadRequest(err.Error(), err)
	}
	apt.Time = clock
	apt.Duration = duration
	return nil
}

func repoError(err error) error {
	if apperrors.Is(err, apperrors.ErrRecordNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	return apperrors.Internal(err)
}

func (s *Service) Create(ctx context.Context, clinicID uuid.UUID, req *model.CreateAppointmentRequest) (*model.BookingResult, error) {
	if !req.Type.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid appointment type %q", req.Type), nil)
	}

	apt := &model.Appointment{
		ClinicID:    clinicID,
		Provider:    req.Provider,
		PatientName: req.PatientName,
		Date:        req.Date,
		Time:        req.Time,
		Duration:    req.Duration,
		Type:        req.Type,
		Status:      model.AppointmentStatus{Confirmed: req.Confirmed},
		Notes:       req.Notes,
	}
	if err := normalize(apt); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	s.logger.Info("appointment created", "appointment_id", apt.ID, "clinic_id", clinicID.String(), "date", apt.Date)

	return s.afterWrite(ctx, apt, "")
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters.Date != "" {
		if _, err := model.ParseDate(filters.Date); err != nil {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
	}
	apts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return apts, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.BookingResult, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}
	previousDate := apt.Date

	if req.Date != nil {
		apt.Date = *req.Date
	}
	if req.Time != nil {
		apt.Time = *req.Time
	}
	if req.Duration != nil {
		apt.Duration = *req.Duration
	}
	if req.Confirmed != nil {
		apt.Status.Confirmed = *req.Confirmed
	}
	if req.IntakeComplete != nil {
		apt.Status.IntakeComplete = *req.IntakeComplete
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if err := normalize(apt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, repoError(err)
	}
	return s.afterWrite(ctx, apt, previousDate)
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*model.BookingResult, error) {
	confirmed := true
	return s.Update(ctx, id, &model.UpdateAppointmentRequest{Confirmed: &confirmed})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return repoError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err)
	}
	s.days.Invalidate(apt.ClinicID, apt.Date)
	s.logger.Info("appointment deleted", "appointment_id", apt.ID, "clinic_id", apt.ClinicID.String())
	return nil
}

func (s *Service) CreateSeries(ctx context.Context, clinicID uuid.UUID, req *model.CreateSeriesRequest) (*model.AppointmentSeries, error) {
	if !req.Type.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid appointment type %q", req.Type), nil)
	}
	if _, err := sched.ParseRule(req.RRule); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	// validated through the same path as single bookings
	probe := &model.Appointment{Date: req.StartDate, Time: req.Time, Duration: req.Duration}
	if err := normalize(probe); err != nil {
		return nil, err
	}

	series := &model.AppointmentSeries{
		ClinicID:    clinicID,
		Provider:    req.Provider,
		PatientName: req.PatientName,
		RRule:       req.RRule,
		StartDate:   req.StartDate,
		Time:        probe.Time,
		Duration:    probe.Duration,
		Type:        req.Type,
	}
	if err := s.series.Create(ctx, series); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create series: %w", err))
	}

	s.days.Invalidate(clinicID, "")
	s.logger.Info("series created", "series_id", series.ID.String(), "clinic_id", clinicID.String(), "rrule", series.RRule)
	return series, nil
}

// afterWrite refreshes the cached days touched by a write and reports the
// conflicts the appointment now takes part in.
func (s *Service) afterWrite(ctx context.Context, apt *model.Appointment, previousDate string) (*model.BookingResult, error) {
	s.days.Invalidate(apt.ClinicID, apt.Date)
	if previousDate != "" && previousDate != apt.Date {
		s.days.Invalidate(apt.ClinicID, previousDate)
	}

	all, err := s.days.Conflicts(ctx, apt.ClinicID, apt.Date)
	if err != nil {
		// the write itself succeeded
		s.logger.Error(err, "failed to check conflicts", "appointment_id", apt.ID)
		return &model.BookingResult{Appointment: apt, Conflicts: []model.Conflict{}}, nil
	}
	conflicts := involving(all, apt.ID)

	if len(conflicts) > 0 {
		if err := s.notifier.NotifyConflicts(ctx, conflicts); err != nil {
			s.logger.Error(err, "failed to notify conflicts", "appointment_id", apt.ID)
		}
	}

	return &model.BookingResult{Appointment: apt, Conflicts: conflicts}, nil
}

func involving(conflicts []model.Conflict, id string) []model.Conflict {
	out := make([]model.Conflict, 0)
	for _, c := range conflicts {
		for _, member := range c.AppointmentIDs {
			if member == id {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
