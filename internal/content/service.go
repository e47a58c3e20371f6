// Package content implements the administrator workflows of the temple site:
// scheduling poojas with their Tamil calendar date, notices, the committee
// roster, and the media gallery.
package content

import (
	"errors"
	"time"

	"github.com/iwvelando/temple-portal/internal/media"
	"github.com/iwvelando/temple-portal/internal/metrics"
	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"go.uber.org/zap"
)

var (
	// ErrValidation is returned when submitted content is incomplete or
	// malformed. It is wrapped with the offending field.
	ErrValidation = errors.New("validation failed")
	// ErrGalleryFull is returned when the per-type gallery limit is reached.
	ErrGalleryFull = errors.New("gallery full")
)

// Service ties the document store, the media storage, and the Tamil
// calendar together.
type Service struct {
	store    *store.Store
	media    *media.Storage
	calendar *tamildate.Calendar
	metrics  *metrics.Metrics
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics counts resolutions and rejections on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocation sets the zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service. media may be nil, in which case uploads fail but
// linked media still works. A nil calendar means tamildate.Default().
func New(st *store.Store, ms *media.Storage, cal *tamildate.Calendar, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cal == nil {
		cal = tamildate.Default()
	}
	s := &Service{
		store:    st,
		media:    ms,
		calendar: cal,
		logger:   logger,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar returns the calendar used to derive Tamil dates.
func (s *Service) Calendar() *tamildate.Calendar {
	return s.calendar
}

// Today returns the current civil date in the site's zone as YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().In(s.location).Format(constants.DateLayout)
}

// PreviewTamilDate resolves the Tamil date for a Gregorian date string, the
// same way SavePooja does when the administrator leaves it blank.
func (s *Service) PreviewTamilDate(date string) (tamildate.Result, error) {
	result, err := s.calendar.ResolveString(date)
	s.observe(date, result, err)
	return result, err
}

func (s *Service) observe(date string, result tamildate.Result, err error) {
	if s.metrics != nil {
		s.metrics.ObserveResolution(result, err)
	}
	switch {
	case errors.Is(err, tamildate.ErrNoTransition):
		s.logger.Error("no Tamil month transition precedes date",
			zap.String("op", "content.resolveTamilDate"),
			zap.String("date", date),
			zap.Error(err),
		)
	case err != nil:
		s.logger.Debug("could not resolve Tamil date",
			zap.String("op", "content.resolveTamilDate"),
			zap.String("date", date),
			zap.Error(err),
		)
	case result.Suspect:
		s.logger.Warn("Tamil day exceeds the longest possible month, check the calendar overrides",
			zap.String("op", "content.resolveTamilDate"),
			zap.String("date", date),
			zap.String("month", result.Month),
			zap.Int("day", result.Day),
		)
	}
}
