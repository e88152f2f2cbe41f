// Package metrics decorates a gocontent.Strategy with Prometheus instrumentation.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
)

const namespace = "content"

// Collectors holds the metric vectors shared by every instrumented strategy.
type Collectors struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCollectors registers the operation counter and latency histogram on reg.
// Registering twice on the same registerer reuses the existing collectors.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collectors{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Count of storage operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op", "result"}),
	}

	if err := reg.Register(c.operations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register operations counter: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register operations counter: %w", err)
		}
		c.operations = existing
	}

	if err := reg.Register(c.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register duration histogram: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register duration histogram: %w", err)
		}
		c.duration = existing
	}

	return c, nil
}

// Instrument wraps s so every call is counted and timed under backend.
// The returned value also implements gocontent.RecencyLoader and
// gocontent.WebhookSaver; when s does not, those calls fail with
// gocontent.ErrCapability and are still recorded.
func Instrument(backend string, s gocontent.Strategy, reg prometheus.Registerer) (*Strategy, error) {
	c, err := NewCollectors(reg)
	if err != nil {
		return nil, err
	}
	return c.Instrument(backend, s), nil
}

// Instrument wraps s using already registered collectors.
func (c *Collectors) Instrument(backend string, s gocontent.Strategy) *Strategy {
	return &Strategy{backend: backend, next: s, collectors: c}
}

// Strategy is an instrumented gocontent.Strategy.
type Strategy struct {
	backend    string
	next       gocontent.Strategy
	collectors *Collectors
}

var (
	_ gocontent.Strategy      = (*Strategy)(nil)
	_ gocontent.RecencyLoader = (*Strategy)(nil)
	_ gocontent.WebhookSaver  = (*Strategy)(nil)
)

func (s *Strategy) Capabilities() gocontent.Capabilities {
	return s.next.Capabilities()
}

func (s *Strategy) Save(ctx context.Context, content string, name string) error {
	done := s.start(gocontent.OpSave, name)
	err := s.next.Save(ctx, content, name)
	done(err)
	return err
}

func (s *Strategy) Load(ctx context.Context, name string) (string, error) {
	done := s.start(gocontent.OpLoad, name)
	content, err := s.next.Load(ctx, name)
	done(err)
	return content, err
}

func (s *Strategy) Download(ctx context.Context, name string, destination string) error {
	done := s.start(gocontent.OpDownload, name)
	err := s.next.Download(ctx, name, destination)
	done(err)
	return err
}

func (s *Strategy) LoadByRecencyIndex(ctx context.Context, n int) (string, error) {
	done := s.start(gocontent.OpRecency, fmt.Sprintf("#%d", n))

	loader, ok := s.next.(gocontent.RecencyLoader)
	if !ok {
		err := s.next.Capabilities().Check(gocontent.OpRecency)
		done(err)
		return "", err
	}

	content, err := loader.LoadByRecencyIndex(ctx, n)
	done(err)
	return content, err
}

func (s *Strategy) SaveWebhook(ctx context.Context, content string, name string) error {
	done := s.start(gocontent.OpWebhook, name)

	saver, ok := s.next.(gocontent.WebhookSaver)
	if !ok {
		err := s.next.Capabilities().Check(gocontent.OpWebhook)
		done(err)
		return err
	}

	err := saver.SaveWebhook(ctx, content, name)
	done(err)
	return err
}

// Unwrap returns the decorated strategy.
func (s *Strategy) Unwrap() gocontent.Strategy {
	return s.next
}

func (s *Strategy) start(op gocontent.Operation, name string) func(error) {
	id := uuid.NewString()
	begin := time.Now()

	log.Debug().Str("op_id", id).Str("backend", s.backend).Str("op", string(op)).Str("name", name).Msg("storage operation started")

	return func(err error) {
		elapsed := time.Since(begin)
		result := Result(err)

		s.collectors.operations.WithLabelValues(s.backend, string(op), result).Inc()
		s.collectors.duration.WithLabelValues(s.backend, string(op), result).Observe(elapsed.Seconds())

		log.Debug().Str("op_id", id).Str("backend", s.backend).Str("op", string(op)).
			Str("result", result).Dur("elapsed", elapsed).Msg("storage operation finished")
	}
}

// Result maps an error onto the label used for the result dimension.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gocontent.ErrCapability):
		return "capability"
	case errors.Is(err, gocontent.ErrNotFound):
		return "not_found"
	case errors.Is(err, gocontent.ErrAuth):
		return "auth"
	case errors.Is(err, gocontent.ErrConfig):
		return "config"
	case errors.Is(err, gocontent.ErrIO):
		return "io"
	case errors.Is(err, gocontent.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, gocontent.ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
