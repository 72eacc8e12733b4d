package explorer

import (
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/geodash/internal/domain/pagination"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/metrics"
)

// DataReadyHandler is told about the derived view after a load succeeds.
type DataReadyHandler func(view []record.Record, total int)

// ErrorHandler is told the reason a load failed.
type ErrorHandler func(reason string)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSize sets the initial page size. Invalid sizes are ignored.
func WithPageSize(n int) Option {
	return func(s *Service) {
		s.window = pagination.NewWindow(n)
	}
}

// WithLocation sets the location date bounds are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithStatusLister sets where filter status choices come from.
func WithStatusLister(l record.StatusLister) Option {
	return func(s *Service) {
		s.statuses = l
	}
}

// WithDataReadyHandler registers the load success callback.
func WithDataReadyHandler(fn DataReadyHandler) Option {
	return func(s *Service) {
		s.onReady = fn
	}
}

// WithErrorHandler registers the load failure callback.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *Service) {
		s.onError = fn
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
