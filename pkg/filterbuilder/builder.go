package filterbuilder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/observability"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/query"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/validate"
)

// Builder is an editing session over one filter tree. It applies actions,
// and after every change serializes the tree and hands it to the host's
// callbacks. A Builder is safe for concurrent use; callbacks run outside
// its lock, in the calling goroutine.
type Builder struct {
	id     string
	schema *schema.Config
	cfg    config
	logger *slog.Logger

	mu   sync.Mutex
	root tree.Node
}

// New starts a session over cfg. cfg must pass schema validation.
func New(cfg *schema.Config, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, ErrNilSchema
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new builder: %w", err)
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	b := &Builder{
		id:     tree.NewID(),
		schema: cfg,
		cfg:    c,
	}
	b.logger = observability.EnrichLogger(c.logger, b.id, c.schemaName)

	if c.initial != nil {
		root, reassigned := tree.EnsureUniqueIDs(codec.Deserialize(*c.initial))
		b.root = root
		groups, conditions := tree.Count(root)
		observability.LogLoad(b.logger, groups, conditions, reassigned)
	} else {
		b.root = tree.NewGroup(tree.And)
	}
	return b, nil
}

// ID returns the session id.
func (b *Builder) ID() string {
	return b.id
}

// Schema returns the session schema.
func (b *Builder) Schema() *schema.Config {
	return b.schema
}

// State returns the current tree. Trees are values; the caller may keep it.
func (b *Builder) State() tree.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.root
}

// Filter returns the serialized current tree.
func (b *Builder) Filter() codec.Filter {
	return codec.Serialize(b.State())
}

// QueryString returns the query string of the current tree.
func (b *Builder) QueryString() string {
	return query.GenerateQueryString(b.Filter())
}

// Ready reports whether the tree holds at least one complete condition.
func (b *Builder) Ready() bool {
	return validate.IsComplete(b.State(), b.schema)
}

// Dispatch applies action to the tree. When the reducer ignores the
// action, its diagnostics are logged and returned and nothing is emitted.
// Otherwise the new tree is emitted to the host callbacks; the returned
// error is the first callback failure, if any. A failed callback does not
// roll back the change.
func (b *Builder) Dispatch(ctx context.Context, action tree.Action) ([]tree.Diagnostic, error) {
	kind := action.Kind()
	ctx, span := b.cfg.spans.StartDispatchSpan(ctx, b.id, kind)
	elapsed := observability.TimedOperation()

	b.mu.Lock()
	next, diags := tree.Reduce(b.root, action)
	if len(diags) == 0 {
		b.root = next
	}
	root := b.root
	b.mu.Unlock()

	duration := elapsed()
	b.cfg.metrics.RecordDispatch(ctx, kind, duration, len(diags))

	if len(diags) > 0 {
		for _, d := range diags {
			observability.LogDiagnostic(b.logger, d)
			b.cfg.spans.AddSpanEvent(ctx, "diagnostic",
				attribute.String("code", string(d.Code)),
				attribute.String("target_id", d.TargetID),
			)
		}
		b.cfg.spans.EndSpanWithError(span, nil)
		return diags, nil
	}

	groups, conditions := tree.Count(root)
	observability.LogDispatch(b.logger, kind, float64(duration.Microseconds())/1000, groups, conditions)
	if _, ok := action.(tree.Reset); ok {
		observability.LogReset(b.logger, root.NodeID())
	}
	b.cfg.metrics.RecordFilterSize(ctx, conditions)

	err := b.emit(ctx, root)
	b.cfg.spans.EndSpanWithError(span, err)
	return nil, err
}

// Reset replaces the tree with a fresh empty AND group.
func (b *Builder) Reset(ctx context.Context) error {
	_, err := b.Dispatch(ctx, tree.Reset{})
	return err
}

// Load replaces the tree with one built from f and emits it.
func (b *Builder) Load(ctx context.Context, f codec.Filter) error {
	root, reassigned := tree.EnsureUniqueIDs(codec.Deserialize(f))

	b.mu.Lock()
	b.root = root
	b.mu.Unlock()

	groups, conditions := tree.Count(root)
	observability.LogLoad(b.logger, groups, conditions, reassigned)
	b.cfg.metrics.RecordFilterSize(ctx, conditions)
	return b.emit(ctx, root)
}

// LoadJSON is Load for raw JSON. Input that is not a filter object loads
// an empty group.
func (b *Builder) LoadJSON(ctx context.Context, data []byte) error {
	var f codec.Filter
	if err := json.Unmarshal(data, &f); err != nil {
		f = codec.Filter{}
	}
	return b.Load(ctx, f)
}

// Validate checks the current tree with the session's validation options.
func (b *Builder) Validate(ctx context.Context) validate.Result {
	ctx, span := b.cfg.spans.StartValidateSpan(ctx, b.id)
	res := validate.Filter(b.State(), b.schema, b.cfg.validation)

	observability.LogValidation(b.logger, res.IsValid, len(res.Errors), len(res.Warnings))
	b.cfg.metrics.RecordValidation(ctx, res.IsValid, len(res.Errors))
	b.cfg.spans.AddSpanEvent(ctx, "validated",
		attribute.Bool("valid", res.IsValid),
		attribute.Int("errors", len(res.Errors)),
		attribute.Int("warnings", len(res.Warnings)),
	)
	b.cfg.spans.EndSpanWithError(span, nil)
	return res
}

// emit serializes root and runs the host callbacks in order: OnChange,
// then the transport. Every failure goes to the transport's OnError; the
// first one is returned.
func (b *Builder) emit(ctx context.Context, root tree.Node) error {
	filter := codec.Serialize(root)
	t := b.cfg.transport
	var firstErr error
	fail := func(err error) {
		if err == nil {
			return
		}
		observability.LogCallbackError(b.logger, callbackName(err), err)
		b.cfg.spans.AddSpanEvent(ctx, "callback_failed", attribute.String("error", err.Error()))
		if t != nil {
			b.reportError(t, err)
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if fn := b.cfg.onChange; fn != nil {
		qs := query.GenerateQueryString(filter)
		fail(guard("on_change", func() { fn(filter, qs) }))
	}

	if t == nil {
		return firstErr
	}

	out := filter
	if t.TransformFilter != nil {
		var transformed codec.Filter
		err := guard("transform_filter", func() { transformed = t.TransformFilter(filter) })
		if err != nil {
			fail(err)
			return firstErr
		}
		out = transformed
	}

	var err error
	switch t.Mode {
	case ModePost:
		body := query.GenerateRequestBody(out)
		err = guard("on_filter_change", func() { t.OnFilterChange(body, "") })
	default:
		qs := query.GenerateQueryString(out)
		err = guard("on_filter_change", func() { t.OnFilterChange(out, qs) })
	}
	fail(err)
	return firstErr
}

func (b *Builder) reportError(t *Transport, err error) {
	if t.OnError == nil {
		return
	}
	if perr := guard("on_error", func() { t.OnError(err) }); perr != nil {
		observability.LogCallbackError(b.logger, "on_error", perr)
	}
}

// guard runs fn and turns a panic into a *CallbackError.
func guard(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{Callback: name, Err: fmt.Errorf("%w: %v", ErrCallbackPanic, r)}
		}
	}()
	fn()
	return nil
}

func callbackName(err error) string {
	var ce *CallbackError
	if errors.As(err, &ce) {
		return ce.Callback
	}
	return "unknown"
}
