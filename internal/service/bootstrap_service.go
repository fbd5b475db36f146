package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
)

type schemaApplier interface {
	Apply(ctx context.Context) error
}

// Bootstrapper creates the schema once per process. Failed attempts leave it uninitialized so the
// next call retries; concurrent callers wait for the attempt in flight instead of racing it.
type Bootstrapper struct {
	schema  schemaApplier
	logger  *zap.Logger
	metrics *MetricsService

	done atomic.Bool
	mu   sync.Mutex
}

// NewBootstrapper constructs a Bootstrapper.
func NewBootstrapper(schema schemaApplier, logger *zap.Logger, metrics *MetricsService) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{schema: schema, logger: logger, metrics: metrics}
}

// Initialized reports whether the schema has been committed by this process.
func (b *Bootstrapper) Initialized() bool {
	return b.done.Load()
}

// Ensure applies the schema unless a previous call already succeeded.
func (b *Bootstrapper) Ensure(ctx context.Context) error {
	if b.done.Load() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done.Load() {
		return nil
	}

	start := time.Now()
	if err := b.schema.Apply(ctx); err != nil {
		b.metrics.BootstrapRun(false)
		b.logger.Error("database initialization failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrBootstrapFailed.Code, appErrors.ErrBootstrapFailed.Status, appErrors.ErrBootstrapFailed.Message)
	}

	b.done.Store(true)
	b.metrics.BootstrapRun(true)
	b.logger.Info("database initialized", zap.Duration("took", time.Since(start)))
	return nil
}
