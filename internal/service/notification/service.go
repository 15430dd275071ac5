package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-schedule/internal/email"
	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

const (
	// ConflictChannel is the broker channel conflict events are published on
	ConflictChannel     = "schedule.conflicts"
	MessageTypeConflict = "schedule.conflict"

	channelBroker = "broker"
	channelEmail  = "email"
)

// Notifier announces newly detected schedule conflicts. A conflict that was
// already announced is skipped until its membership changes or the
// deduplication window passes.
type Notifier interface {
	NotifyConflicts(ctx context.Context, conflicts []model.Conflict) error
}

type service struct {
	broker   messaging.Broker
	emailSvc email.Service
	clinics  repository.ClinicRepository
	seen     *gocache.Cache
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewService wires the delivery channels. broker and emailSvc may be nil to
// disable that channel.
func NewService(
	broker messaging.Broker,
	emailSvc email.Service,
	clinics repository.ClinicRepository,
	m *metrics.Metrics,
	log *logger.Logger,
	dedupeWindow time.Duration,
) Notifier {
	return &service{
		broker:   broker,
		emailSvc: emailSvc,
		clinics:  clinics,
		seen:     gocache.New(dedupeWindow, dedupeWindow),
		metrics:  m,
		logger:   log,
	}
}

func (s *service) NotifyConflicts(ctx context.Context, conflicts []model.Conflict) error {
	fresh := make([]model.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		if err := s.seen.Add(c.Key(), struct{}{}, gocache.DefaultExpiration); err == nil {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	var errs []error
	if s.broker != nil {
		for _, c := range fresh {
			if err := s.publish(ctx, c); err != nil {
				// retry on the next detection
				s.seen.Delete(c.Key())
				errs = append(errs, err)
			}
		}
	}

	if s.emailSvc != nil {
		for clinicID, cs := range byClinic(fresh) {
			if err := s.email(ctx, clinicID, cs); err != nil {
				for _, c := range cs {
					s.seen.Delete(c.Key())
				}
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (s *service) publish(ctx context.Context, c model.Conflict) error {
	err := s.broker.Publish(ctx, ConflictChannel, messaging.Message{
		Type:    MessageTypeConflict,
		Payload: c,
	})
	if err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(channelBroker).Inc()
		s.logger.Error(err, "failed to publish conflict", "clinic_id", c.ClinicID.String(), "provider", c.Provider)
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(channelBroker).Inc()
	return nil
}

func (s *service) email(ctx context.Context, clinicID uuid.UUID, cs []model.Conflict) error {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return fmt.Errorf("failed to load clinic %s: %w", clinicID, err)
	}
	if clinic.OpsEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%d schedule conflict(s) at %s", len(cs), clinic.Name)
	if err := s.emailSvc.SendCustom(ctx, clinic.OpsEmail, subject, conflictBody(cs)); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(channelEmail).Inc()
		s.logger.Error(err, "failed to email conflicts", "clinic_id", clinicID.String())
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(channelEmail).Inc()
	return nil
}

func byClinic(cs []model.Conflict) map[uuid.UUID][]model.Conflict {
	out := make(map[uuid.UUID][]model.Conflict)
	for _, c := range cs {
		out[c.ClinicID] = append(out[c.ClinicID], c)
	}
	return out
}

func conflictBody(cs []model.Conflict) string {
	var b strings.Builder
	b.WriteString("The following appointments overlap:\n\n")
	for _, c := range cs {
		fmt.Fprintf(&b, "%s %s-%s %s: %s\n", c.Date, c.Start, c.End, c.Provider, strings.Join(c.AppointmentIDs, ", "))
	}
	return b.String()
}
