package filterbuilder

import (
	"log/slog"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/observability"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/validate"
)

// Mode selects how a Transport receives the filter.
type Mode string

// Transport modes.
const (
	// ModeGet hands the transport a query string alongside the filter.
	ModeGet Mode = "GET"
	// ModePost hands the transport the filter as a request body and an
	// empty query string.
	ModePost Mode = "POST"
)

// Transport connects a Builder to a backend. The Builder never performs
// I/O itself; OnFilterChange is expected to.
type Transport struct {
	Mode Mode

	// OnFilterChange receives every new filter. Required.
	OnFilterChange func(filter codec.Filter, queryString string)

	// OnError receives callback failures. Optional.
	OnError func(err error)

	// TransformFilter rewrites the filter before it is encoded. Optional.
	TransformFilter func(codec.Filter) codec.Filter
}

type config struct {
	schemaName string
	initial    *codec.Filter
	transport  *Transport
	onChange   func(codec.Filter, string)
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
	validation validate.Options
}

func defaultConfig() config {
	return config{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Builder.
type Option func(*config)

// WithSchemaName labels the session's logs with the schema name.
func WithSchemaName(name string) Option {
	return func(c *config) {
		c.schemaName = name
	}
}

// WithInitialFilter starts the session from f instead of an empty group.
// The initial filter is not emitted.
func WithInitialFilter(f codec.Filter) Option {
	return func(c *config) {
		c.initial = &f
	}
}

// WithTransport routes every change through t. A transport without
// OnFilterChange is ignored.
//
// Example:
//
//	b, err := filterbuilder.New(cfg, filterbuilder.WithTransport(filterbuilder.Transport{
//	    Mode: filterbuilder.ModeGet,
//	    OnFilterChange: func(_ codec.Filter, qs string) {
//	        go fetch("/api/users?" + qs)
//	    },
//	}))
func WithTransport(t Transport) Option {
	return func(c *config) {
		if t.OnFilterChange == nil {
			return
		}
		if t.Mode == "" {
			t.Mode = ModeGet
		}
		c.transport = &t
	}
}

// WithOnChange registers fn to receive every new filter and its query
// string, before any transport transform.
func WithOnChange(fn func(filter codec.Filter, queryString string)) Option {
	return func(c *config) {
		c.onChange = fn
	}
}

// WithLogger enables structured logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables metrics recording. Pass
// observability.NewMetricsRecorder() for OpenTelemetry.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager enables tracing. Pass observability.NewSpanManager() for
// OpenTelemetry.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *config) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithValidationOptions sets the options used by Builder.Validate.
func WithValidationOptions(opts validate.Options) Option {
	return func(c *config) {
		c.validation = opts
	}
}
