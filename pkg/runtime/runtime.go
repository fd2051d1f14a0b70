// Package runtime provides the Search entry point applications embed:
// parse-cache-backed compilation, evaluation, error-suppression policy,
// structured logging and optional throughput control layered over the
// parser and evaluator packages.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/halvorsen/jmespath/pkg/cache"
	"github.com/halvorsen/jmespath/pkg/evaluator"
	"github.com/halvorsen/jmespath/pkg/parser"
	"github.com/halvorsen/jmespath/pkg/types"
)

// Runtime is the compiled façade over the lexer/parser/interpreter
// pipeline: it owns the parse cache, the interpreter, and the policy
// knobs (error suppression, rate limiting, logging) that don't belong in
// either of those lower layers.
type Runtime struct {
	opts    Options
	logger  *slog.Logger
	cache   *cache.Cache
	eval    *evaluator.Evaluator
	limiter *rate.Limiter
}

// Options configures a Runtime. The zero value is a usable, unlimited
// configuration equivalent to New() with no options.
type Options struct {
	// DisableVisitErrors turns suppressible evaluation errors (arity,
	// type, invalid-value, unknown-function) into a null result instead
	// of returning an error. Syntax errors are never suppressed.
	DisableVisitErrors bool
	// ParseCacheSize bounds the number of compiled expressions kept in
	// the LRU parse cache. Zero disables the parse cache.
	ParseCacheSize int
	// Logger receives structured diagnostics for each Search call.
	Logger *slog.Logger
	// RateLimit, when non-zero, bounds Search throughput. It exists to
	// let an embedding service protect itself from a caller issuing
	// pathological expressions in a tight loop, not to sandbox the
	// expression language itself.
	RateLimit rate.Limit
	RateBurst int
}

// Option configures a Runtime at construction time.
type Option func(*Options)

// WithDisableVisitErrors toggles suppression of runtime evaluation errors.
func WithDisableVisitErrors(disable bool) Option {
	return func(o *Options) { o.DisableVisitErrors = disable }
}

// WithParseCacheSize sets the parse cache's maximum entry count.
func WithParseCacheSize(size int) Option {
	return func(o *Options) { o.ParseCacheSize = size }
}

// WithLogger sets the Runtime's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithRateLimit caps Search calls to limit-per-second with the given
// burst allowance. A zero limit (the default) means unlimited.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *Options) {
		o.RateLimit = limit
		o.RateBurst = burst
	}
}

// New builds a Runtime. With no options, expressions are parsed on every
// Search call (no caching), evaluation errors propagate as errors, and
// there is no rate limit.
func New(opts ...Option) *Runtime {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	r := &Runtime{
		opts:   options,
		logger: options.Logger,
		eval:   evaluator.New(evaluator.WithLogger(options.Logger)),
	}
	if options.ParseCacheSize > 0 {
		r.cache = cache.New(options.ParseCacheSize, cache.WithLogger(options.Logger))
	}
	if options.RateLimit > 0 {
		r.limiter = rate.NewLimiter(options.RateLimit, options.RateBurst)
	}
	return r
}

// Search compiles expr (using the parse cache, if enabled) and evaluates
// it against data. When DisableVisitErrors is set, a suppressible
// evaluation error (see types.RuntimeSuppressible) yields (Null, nil)
// instead of propagating; syntax errors always propagate.
func (r *Runtime) Search(ctx context.Context, expr string, data types.Value) (types.Value, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return types.Null, fmt.Errorf("runtime: rate limit wait: %w", err)
		}
	}

	logger := r.logger
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger = logger.With("search_id", uuid.NewString())
	}

	compiled, err := r.compile(expr)
	if err != nil {
		logger.DebugContext(ctx, "search: compile failed", "expression", expr, "error", err)
		return types.Null, err
	}

	result, err := r.eval.Eval(ctx, compiled, data)
	if err != nil {
		if r.opts.DisableVisitErrors {
			if terr, ok := err.(*types.Error); ok && types.RuntimeSuppressible(terr.Code) {
				logger.DebugContext(ctx, "search: suppressed evaluation error", "expression", expr, "error", err)
				return types.Null, nil
			}
		}
		logger.DebugContext(ctx, "search: evaluation failed", "expression", expr, "error", err)
		return types.Null, err
	}
	logger.DebugContext(ctx, "search: ok", "expression", expr)
	return result, nil
}

// Eval evaluates an already-compiled Expression against data, applying
// the same error-suppression and logging policy as Search but skipping
// the parse cache entirely.
func (r *Runtime) Eval(ctx context.Context, expr *types.Expression, data types.Value) (types.Value, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return types.Null, fmt.Errorf("runtime: rate limit wait: %w", err)
		}
	}
	result, err := r.eval.Eval(ctx, expr, data)
	if err != nil {
		if r.opts.DisableVisitErrors {
			if terr, ok := err.(*types.Error); ok && types.RuntimeSuppressible(terr.Code) {
				r.logger.DebugContext(ctx, "eval: suppressed evaluation error", "expression", expr.Source(), "error", err)
				return types.Null, nil
			}
		}
		r.logger.DebugContext(ctx, "eval: evaluation failed", "expression", expr.Source(), "error", err)
		return types.Null, err
	}
	return result, nil
}

// compile returns a parsed Expression for expr, using and populating the
// parse cache when one is configured.
func (r *Runtime) compile(expr string) (*types.Expression, error) {
	if r.cache == nil {
		return parser.Parse(expr)
	}
	return r.cache.GetOrCompile(expr, func() (*types.Expression, error) {
		return parser.Parse(expr)
	})
}

// Cache returns the Runtime's parse cache, or nil if caching is disabled.
func (r *Runtime) Cache() *cache.Cache { return r.cache }
