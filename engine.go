package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/plugin"
	"github.com/xraph/steward/provision"
	"github.com/xraph/steward/store"
)

// Engine is the central coordinator: it owns the authorization graph
// operations, the resolution queries, and the account lifecycle state
// machine, and fires plugin hooks on every mutation.
type Engine struct {
	store       store.Store
	provisioner provision.Provisioner
	cache       Cache
	plugins     *plugin.Registry
	logger      *slog.Logger
	config      Config
}

// NewEngine creates a new Steward engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("steward: store is required")
	}
	if e.config.ProvisionTimeout <= 0 {
		e.config.ProvisionTimeout = DefaultConfig().ProvisionTimeout
	}
	if e.config.LifecycleRetries <= 0 {
		e.config.LifecycleRetries = DefaultConfig().LifecycleRetries
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// internalErr catches an unclassified failure at the component boundary:
// the cause is logged with full context and never leaks to the caller.
func (e *Engine) internalErr(ctx context.Context, op string, err error) error {
	e.logger.ErrorContext(ctx, "steward: operation failed",
		slog.String("op", op),
		slog.Any("error", err),
	)
	return fmt.Errorf("%w: %s failed", ErrInternal, op)
}

// storeErr translates a persistence error into the caller-facing taxonomy.
func (e *Engine) storeErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return e.internalErr(ctx, op, err)
	}
}

// audit records an audit entry off the caller's path. Emission is
// fire-and-forget: it is never awaited and its failure is logged only.
func (e *Engine) audit(ctx context.Context, entry *auditlog.Entry) {
	bg := context.WithoutCancel(ctx)
	entry.ID = id.NewAuditLogID()
	entry.CreatedAt = time.Now().UTC()
	go func() {
		if err := e.store.CreateAuditLog(bg, entry); err != nil {
			e.logger.ErrorContext(bg, "steward: audit emission failed",
				slog.String("action", entry.Action),
				slog.String("target_id", entry.TargetID),
				slog.Any("error", err),
			)
		}
	}()
}
