package zerologobs

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leofalp/llmstream/providers/observability"
)

// Observer implements observability.Provider on top of a zerolog.Logger.
type Observer struct {
	logger  zerolog.Logger
	metrics *metricsStore
}

// New creates a zerolog-based observer. With no options it writes JSON
// lines to stdout at info level, reading LLMSTREAM_LOG_LEVEL/LOG_LEVEL for
// the default level the same way slogobs.New does.
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	var logger zerolog.Logger
	if cfg.logger != nil {
		logger = *cfg.logger
	} else {
		var writer io.Writer = cfg.output
		if cfg.pretty {
			writer = zerolog.ConsoleWriter{Out: cfg.output, NoColor: !cfg.colors}
		}
		logger = zerolog.New(writer).Level(cfg.level).With().Timestamp().Logger()
	}

	return &Observer{
		logger:  logger,
		metrics: newMetricsStore(),
	}
}

var _ observability.Provider = (*Observer)(nil)

// --- TRACING ---

// StartSpan begins a named span and emits a debug event at its start. The
// returned context is unchanged; the returned Span's End logs the elapsed
// duration along with any attributes accumulated via SetAttributes,
// SetStatus, RecordError, and AddEvent.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &zerologSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}

	ev := o.logger.Debug().Str("span", name).Str("event", "span.start")
	applyAttrs(ev, attrs)
	ev.Msg("span started")

	return ctx, span
}

type zerologSpan struct {
	name      string
	startTime time.Time
	logger    zerolog.Logger
	attrs     []observability.Attribute
	mu        sync.Mutex
}

// End completes the span, logging its elapsed duration and accumulated
// attributes at debug level.
func (s *zerologSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	duration := time.Since(s.startTime)
	ev := s.logger.Debug().
		Str("span", s.name).
		Str("event", "span.end").
		Dur("duration", duration)
	applyAttrs(ev, s.attrs)
	ev.Msg("span ended")
}

// SetAttributes appends attrs to the span's attribute list.
func (s *zerologSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

// SetStatus records the span's final status code and an optional description.
func (s *zerologSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var statusStr string
	switch code {
	case observability.StatusOK:
		statusStr = "ok"
	case observability.StatusError:
		statusStr = "error"
	default:
		statusStr = "unset"
	}

	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, statusStr))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

// RecordError attaches err to the span and logs it immediately at error level.
func (s *zerologSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.Error().Str("span", s.name).Str("event", "error").Err(err).Msg("span error")
}

// AddEvent logs a named event on the span's timeline at debug level.
func (s *zerologSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.logger.Debug().Str("span", s.name).Str("event", name)
	applyAttrs(ev, attrs)
	ev.Msg("span event")
}

// --- METRICS ---

// Counter returns a named observability.Counter backed by an in-memory
// running total. Multiple calls with the same name return the same
// instance. Each Add logs the delta and cumulative value at debug level.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.getCounter(name, o.logger)
}

// Histogram returns a named observability.Histogram backed by the
// in-memory store. Each Record logs the observed value at debug level.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.getHistogram(name, o.logger)
}

type metricsStore struct {
	mu         sync.RWMutex
	counters   map[string]*zerologCounter
	histograms map[string]*zerologHistogram
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		counters:   make(map[string]*zerologCounter),
		histograms: make(map[string]*zerologHistogram),
	}
}

func (m *metricsStore) getCounter(name string, logger zerolog.Logger) *zerologCounter {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()
	if exists {
		return counter
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if counter, exists := m.counters[name]; exists {
		return counter
	}
	counter = &zerologCounter{name: name, logger: logger}
	m.counters[name] = counter
	return counter
}

func (m *metricsStore) getHistogram(name string, logger zerolog.Logger) *zerologHistogram {
	m.mu.RLock()
	histogram, exists := m.histograms[name]
	m.mu.RUnlock()
	if exists {
		return histogram
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}
	histogram = &zerologHistogram{name: name, logger: logger}
	m.histograms[name] = histogram
	return histogram
}

type zerologCounter struct {
	name   string
	logger zerolog.Logger
	mu     sync.Mutex
	value  int64
}

// Add implements observability.Counter, incrementing by value and logging
// the updated total at debug level.
func (c *zerologCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	current := c.value
	c.mu.Unlock()

	ev := c.logger.Debug().
		Str("metric", c.name).
		Str("type", "counter").
		Int64("value", current).
		Int64("delta", value)
	applyAttrs(ev, attrs)
	ev.Msg("counter")
}

type zerologHistogram struct {
	name   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// Record implements observability.Histogram, logging the observation at
// debug level.
func (h *zerologHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ev := h.logger.Debug().
		Str("metric", h.name).
		Str("type", "histogram").
		Float64("value", value)
	applyAttrs(ev, attrs)
	ev.Msg("histogram")
}

// --- LOGGING ---

// Trace logs below debug level (zerolog.TraceLevel), filtered out unless
// the observer's level is explicitly set to trace via WithLevel.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	ev := o.logger.Trace()
	applyAttrs(ev, attrs)
	ev.Msg(msg)
}

// Debug logs detailed diagnostic information.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	ev := o.logger.Debug()
	applyAttrs(ev, attrs)
	ev.Msg(msg)
}

// Info logs general operational events.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	ev := o.logger.Info()
	applyAttrs(ev, attrs)
	ev.Msg(msg)
}

// Warn logs recoverable but noteworthy situations.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	ev := o.logger.Warn()
	applyAttrs(ev, attrs)
	ev.Msg(msg)
}

// Error logs failures that require attention.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	ev := o.logger.Error()
	applyAttrs(ev, attrs)
	ev.Msg(msg)
}

// applyAttrs attaches each observability.Attribute to ev by its dynamic
// type, since zerolog's *zerolog.Event has no single Any(key, value) method
// the way slog.Attr does.
func applyAttrs(ev *zerolog.Event, attrs []observability.Attribute) {
	for _, attr := range attrs {
		switch v := attr.Value.(type) {
		case string:
			ev.Str(attr.Key, v)
		case int:
			ev.Int(attr.Key, v)
		case int64:
			ev.Int64(attr.Key, v)
		case float64:
			ev.Float64(attr.Key, v)
		case bool:
			ev.Bool(attr.Key, v)
		case time.Duration:
			ev.Dur(attr.Key, v)
		default:
			ev.Interface(attr.Key, v)
		}
	}
}
