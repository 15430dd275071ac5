package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	"github.com/jwalitptl/clinic-schedule/internal/service/notification"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

// DayIndex resolves the conflicts of a clinic day
type DayIndex interface {
	Conflicts(ctx context.Context, clinicID uuid.UUID, date string) ([]model.Conflict, error)
	Invalidate(clinicID uuid.UUID, date string)
}

type ConflictScanConfig struct {
	Interval time.Duration
	Location *time.Location
}

// ConflictScanWorker periodically looks at the next day's bookings of every
// clinic and announces the conflicts it finds.
type ConflictScanWorker struct {
	repo     repository.AppointmentRepository
	days     DayIndex
	notifier notification.Notifier
	config   ConflictScanConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewConflictScanWorker(
	repo repository.AppointmentRepository,
	days DayIndex,
	notifier notification.Notifier,
	config ConflictScanConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *ConflictScanWorker {
	if config.Interval <= 0 {
		panic("Interval must be greater than 0")
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &ConflictScanWorker{
		repo:     repo,
		days:     days,
		notifier: notifier,
		config:   config,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Start scans once immediately and then on every tick until ctx is done.
func (w *ConflictScanWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("Starting conflict scan worker", "interval", w.config.Interval.String())

	for {
		if err := w.scanNextDay(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error(err, "Conflict scan failed")
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Shutting down conflict scan worker")
			return
		case <-ticker.C:
		}
	}
}

func (w *ConflictScanWorker) scanNextDay(ctx context.Context) error {
	tomorrow := w.now().In(w.config.Location).AddDate(0, 0, 1)
	_, err := w.Scan(ctx, tomorrow.Format(model.DateLayout))
	return err
}

// Scan checks every clinic with bookings on date and returns the number of
// conflicts found. A failing clinic does not stop the others.
func (w *ConflictScanWorker) Scan(ctx context.Context, date string) (int, error) {
	start := time.Now()
	defer func() {
		w.metrics.ScanRuns.Inc()
		w.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	clinics, err := w.repo.ListClinicsWithAppointments(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list clinics: %w", err)
	}

	found := 0
	var errs []error
	for _, clinicID := range clinics {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		// scans must not see a stale cached day
		w.days.Invalidate(clinicID, date)
		conflicts, err := w.days.Conflicts(ctx, clinicID, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("clinic %s: %w", clinicID, err))
			continue
		}
		found += len(conflicts)
		if len(conflicts) == 0 {
			continue
		}

		if err := w.notifier.NotifyConflicts(ctx, conflicts); err != nil {
			errs = append(errs, fmt.Errorf("clinic %s: %w", clinicID, err))
		}
	}

	w.logger.Info("Conflict scan finished", "date", date, "clinics", len(clinics), "conflicts", found)
	return found, errors.Join(errs...)
}
