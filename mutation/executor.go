// Package mutation runs writes against the API and keeps the query cache
// coherent with them. A mutation is validated locally, guarded against a
// concurrent write of the same record, applied, and only on success are the
// cached reads it affects invalidated.
package mutation

import (
	"context"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/invalidation"
	"github.com/goliatone/go-lide-client/querycache"
	"github.com/goliatone/go-lide-client/transport"
)

// Operation is a single write.
type Operation interface {
	// Name is a short label for logs.
	Name() string
	// Record identifies what the operation writes; two operations with the
	// same record never run at the same time.
	Record() string
	// Validate runs every local check; a failing operation is never sent.
	Validate() error
	// Apply performs the write.
	Apply(ctx context.Context, api *transport.Client) (any, error)
	// Mutation describes the applied write for cache invalidation.
	Mutation(result any) invalidation.Mutation
}

// Executor applies operations.
type Executor struct {
	api      *transport.Client
	store    *querycache.Store
	router   *invalidation.Router
	inflight *xsync.MapOf[string, string]
	logger   zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an executor writing through api and invalidating store.
func New(api *transport.Client, store *querycache.Store, router *invalidation.Router, opts ...Option) *Executor {
	e := &Executor{
		api:      api,
		store:    store,
		router:   router,
		inflight: xsync.NewMapOf[string, string](),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates and applies op. On failure the cache is left untouched
// and the error is returned as is.
func (e *Executor) Execute(ctx context.Context, op Operation) (any, error) {
	if err := op.Validate(); err != nil {
		if _, ok := failure.As(err); !ok {
			err = failure.Validation(err)
		}
		return nil, err
	}

	opID := uuid.NewString()
	record := op.Record()
	if running, loaded := e.inflight.LoadOrStore(record, opID); loaded {
		return nil, failure.Operation(failure.CodeMutationInFlight,
			"another mutation of "+record+" is in progress").
			WithMetadata(map[string]any{"record": record, "op": running})
	}
	defer e.inflight.Delete(record)

	log := e.logger.With().
		Str("op", opID).
		Str("mutation", op.Name()).
		Str("record", record).
		Logger()

	result, err := op.Apply(ctx, e.api)
	if err != nil {
		log.Warn().Err(err).Msg("mutation failed")
		return nil, err
	}

	targets := e.router.TargetsFor(op.Mutation(result))
	stale := e.store.Invalidate(ctx, targets...)

	log.Info().
		Strs("targets", targets).
		Int("invalidated", len(stale)).
		Msg("mutation applied")

	return result, nil
}

// InFlight reports whether a mutation of record is running.
func (e *Executor) InFlight(record string) bool {
	_, ok := e.inflight.Load(record)
	return ok
}

// Run executes op and asserts its result type.
func Run[T any](ctx context.Context, e *Executor, op Operation) (T, error) {
	var zero T
	result, err := e.Execute(ctx, op)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, failure.Operation("UNEXPECTED_RESULT", "mutation "+op.Name()+" returned an unexpected result type")
	}
	return typed, nil
}
