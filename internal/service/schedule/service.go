package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-schedule/internal/calendar"
	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository"
	sched "github.com/jwalitptl/clinic-schedule/internal/schedule"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

const (
	sourceRequest = "request"
	sourceDay     = "day_view"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Day is one clinic day resolved into per-provider overlap groups.
type Day struct {
	ClinicID     uuid.UUID
	Date         string
	Appointments []*model.Appointment
	Groups       []sched.ProviderGroups
}

type Service struct {
	appointments repository.AppointmentRepository
	series       repository.SeriesRepository
	clinics      repository.ClinicRepository
	cache        *gocache.Cache
	mu           sync.Mutex
	generations  map[uuid.UUID]uint64
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	series repository.SeriesRepository,
	clinics repository.ClinicRepository,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Service {
	return &Service{
		appointments: appointments,
		series:       series,
		clinics:      clinics,
		cache:        gocache.New(cfg.TTL, cfg.CleanupInterval),
		generations:  make(map[uuid.UUID]uint64),
		metrics:      m,
		logger:       log,
		now:          time.Now,
	}
}

// Group partitions caller-supplied appointments without touching storage.
func (s *Service) Group(ctx context.Context, apts []*model.Appointment) (*model.GroupResult, error) {
	pgs, err := s.group(sourceRequest, apts)
	if err != nil {
		return nil, err
	}
	return &model.GroupResult{
		Providers: sched.ToProviderSchedules(pgs),
		Stats:     sched.Stats(apts, pgs),
	}, nil
}

func (s *Service) group(source string, apts []*model.Appointment) ([]sched.ProviderGroups, error) {
	pgs, err := sched.GroupByProvider(apts)
	s.metrics.GroupingRuns.WithLabelValues(source, metrics.Status(err)).Inc()
	if err != nil {
		if sched.IsInputError(err) {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	for _, pg := range pgs {
		for _, g := range pg.Groups {
			s.metrics.GroupSize.Observe(float64(g.Size()))
			if g.Conflict() {
				s.metrics.ConflictsDetected.WithLabelValues(source).Inc()
			}
		}
	}
	return pgs, nil
}

func cacheKey(clinicID uuid.UUID, date, provider string) string {
	return fmt.Sprintf("%s/%s/%s", clinicID, date, provider)
}

// Load resolves a clinic day, optionally for a single provider. Stored
// appointments come first in insertion order, followed by series occurrences.
func (s *Service) Load(ctx context.Context, clinicID uuid.UUID, date, provider string) (*Day, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	key := cacheKey(clinicID, date, provider)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Inc()
		return cached.(*Day), nil
	}
	s.metrics.CacheMisses.Inc()
	gen := s.generation(clinicID)

	apts, err := s.appointments.ListByDay(ctx, clinicID, date, provider)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	series, err := s.series.List(ctx, clinicID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if provider != "" {
		filtered := series[:0:0]
		for _, se := range series {
			if se.Provider == provider {
				filtered = append(filtered, se)
			}
		}
		series = filtered
	}
	occurrences, err := sched.ExpandSeries(series, day)
	if err != nil {
		// a stored series that no longer parses is a data problem, not a bad request
		s.logger.Error(err, "failed to expand series", "clinic_id", clinicID.String(), "date", date)
		return nil, apperrors.Internal(err)
	}
	apts = append(apts, occurrences...)

	pgs, err := s.group(sourceDay, apts)
	if err != nil {
		return nil, err
	}

	result := &Day{ClinicID: clinicID, Date: date, Appointments: apts, Groups: pgs}
	s.store(clinicID, gen, key, result)
	return result, nil
}

func (s *Service) generation(clinicID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[clinicID]
}

// store caches a day view unless the clinic was invalidated after the view
// was read.
func (s *Service) store(clinicID uuid.UUID, gen uint64, key string, day *Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[clinicID] != gen {
		return
	}
	s.cache.SetDefault(key, day)
}

func (s *Service) DayView(ctx context.Context, clinicID uuid.UUID, date, provider string) (*model.DayView, error) {
	day, err := s.Load(ctx, clinicID, date, provider)
	if err != nil {
		return nil, err
	}
	return &model.DayView{
		ClinicID:  clinicID,
		Date:      date,
		Providers: sched.ToProviderSchedules(day.Groups),
		Stats:     sched.Stats(day.Appointments, day.Groups),
	}, nil
}

func (s *Service) Conflicts(ctx context.Context, clinicID uuid.UUID, date string) ([]model.Conflict, error) {
	day, err := s.Load(ctx, clinicID, date, "")
	if err != nil {
		return nil, err
	}
	conflicts := sched.Conflicts(day.Groups)
	for i := range conflicts {
		conflicts[i].ClinicID = clinicID
		conflicts[i].Date = date
	}
	return conflicts, nil
}

func (s *Service) Stats(ctx context.Context, clinicID uuid.UUID, date string) (model.DayStats, error) {
	day, err := s.Load(ctx, clinicID, date, "")
	if err != nil {
		return model.DayStats{}, err
	}
	return sched.Stats(day.Appointments, day.Groups), nil
}

// ExportICS renders the clinic day as an iCalendar feed in the clinic's
// timezone.
func (s *Service) ExportICS(ctx context.Context, clinicID uuid.UUID, date string) (string, error) {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrRecordNotFound) {
			return "", apperrors.NotFound("clinic", err)
		}
		return "", apperrors.Internal(err)
	}

	loc, err := time.LoadLocation(clinic.Timezone)
	if err != nil {
		s.logger.Warn("unknown clinic timezone, exporting in UTC", "clinic_id", clinicID.String(), "timezone", clinic.Timezone)
		loc = time.UTC
	}

	day, err := s.Load(ctx, clinicID, date, "")
	if err != nil {
		return "", err
	}

	ics, err := calendar.Export(date, day.Groups, loc, s.now())
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return ics, nil
}

// Invalidate drops cached views of a clinic day. An empty date drops every
// cached day of the clinic.
func (s *Service) Invalidate(clinicID uuid.UUID, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[clinicID]++

	prefix := clinicID.String() + "/"
	if date != "" {
		prefix += date + "/"
	}
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}
