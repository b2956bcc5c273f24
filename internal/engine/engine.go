package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/relation"
)

// WarningHandler receives non-fatal diagnostics such as
// *UnconfiguredFilterWarning.
type WarningHandler func(warning error)

// Engine runs filter calls. It holds no mutable state of its own after
// construction; one Engine is safe for concurrent FilterBy calls as long as
// each call gets its own accumulator (Entity.NewQuery guarantees that).
type Engine struct {
	logger    *slog.Logger
	ids       QueryIDGenerator
	onWarning WarningHandler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator sets the query ID generator. Default: UUIDv7Generator.
func WithIDGenerator(gen QueryIDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.ids = gen
		}
	}
}

// WithWarningHandler routes warnings to fn instead of the logger.
func WithWarningHandler(fn WarningHandler) Option {
	return func(e *Engine) {
		e.onWarning = fn
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.onWarning == nil {
		logger := e.logger
		e.onWarning = func(w error) {
			logger.Warn("filter misconfiguration", "warning", w.Error())
		}
	}
	return e
}

// NewSilent creates an Engine whose logs are discarded. Intended for tests.
func NewSilent(opts ...Option) *Engine {
	base := []Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return New(append(base, opts...)...)
}

// FilterBy returns entity's base query filtered by params.
//
// Empty params return the unfiltered query unchanged. Otherwise the merged
// attribute map is applied (StageDeclarative) and then the extension hook
// runs over the same accumulator (StageExtended). Any error aborts the call
// and the partially built query is discarded.
func (e *Engine) FilterBy(entity *Entity, params ir.Params) (relation.Query, error) {
	if entity == nil {
		return nil, &EntityError{Entity: "<nil>", Message: "entity is required"}
	}

	base := entity.NewQuery()
	if base == nil {
		return nil, &EntityError{Entity: entity.Name, Message: "query factory returned nil"}
	}
	if params.IsEmpty() {
		return base, nil
	}

	logger := e.logger.With("query_id", e.ids.Generate(), "entity", entity.Name)

	attrs := entity.AttributeMap()
	ext := entity.Extension()
	if attrs.IsEmpty() && ext == nil {
		e.onWarning(&UnconfiguredFilterWarning{Entity: entity.Name})
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		if hash, err := ir.ParamsHash(params); err == nil {
			logger = logger.With("params_hash", hash[:16])
		}
	}

	logger.Debug("applying attribute map",
		"stage", StageDeclarative.String(),
		"rules", attrs.Len(),
		"params", params.Len(),
	)
	q, err := Apply(attrs, entity.Columns, params, base)
	if err != nil {
		logger.Debug("filter aborted", "stage", StageDeclarative.String(), "error", err)
		return nil, err
	}

	if ext == nil {
		logger.Debug("no custom filters defined", "filter", entity.FilterName())
		return q, nil
	}

	logger.Debug("running extension hook", "stage", StageExtended.String(), "filter", entity.FilterName())
	q, err = ext.Extend(q, params)
	if err != nil {
		logger.Debug("filter aborted", "stage", StageExtended.String(), "error", err)
		var ipe *InvalidParameterError
		if errors.As(err, &ipe) {
			if ipe.Stage != 0 {
				return nil, err
			}
			// The hook may return a shared error value; stamp a copy.
			staged := *ipe
			staged.Stage = StageExtended
			return nil, &staged
		}
		return nil, &ExtensionError{Entity: entity.Name, Filter: entity.FilterName(), Err: err}
	}
	if q == nil {
		return nil, &ExtensionError{Entity: entity.Name, Filter: entity.FilterName(), Err: errors.New("hook returned a nil query")}
	}

	return q, nil
}
