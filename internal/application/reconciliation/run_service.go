package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RunService orchestrates one full reconciliation pass for one tenant:
// stale-alert resolution, check execution, persistence, summary generation.
// Auto-resolution and candidate insertion share one transaction, so a failed
// run leaves the tenant's alerts untouched.
type RunService struct {
	runner     WorkspaceRunner
	locker     RunLocker
	pipeline   *reconciliation.Pipeline
	runTimeout time.Duration
	logger     *zap.Logger
}

// NewRunService creates a run orchestrator. A runTimeout of zero disables the
// per-run deadline.
func NewRunService(runner WorkspaceRunner, locker RunLocker, pipeline *reconciliation.Pipeline, runTimeout time.Duration, logger *zap.Logger) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunService{
		runner:     runner,
		locker:     locker,
		pipeline:   pipeline,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Run executes one reconciliation pass for the tenant and returns its summary.
// Re-running against unchanged data converges to the same alert set: stale
// open alerts are resolved at the start and equivalent findings re-raised as
// new rows.
func (s *RunService) Run(ctx context.Context, tc identity.TenantContext) (*reconciliation.RunSummary, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}

	lock, err := s.locker.Acquire(ctx, tc.SchemaName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release run lock",
				zap.String("schema", tc.SchemaName), zap.Error(err))
		}
	}()

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	runID := uuid.New()
	var summary *reconciliation.RunSummary

	err = s.runner.RunInTransaction(ctx, tc, func(ctx context.Context, ws Workspace) error {
		ranAt := time.Now()
		resolved, err := ws.Alerts().ResolveStaleOpen(ctx, runID, ranAt, reconciliation.SystemResolutionNote)
		if err != nil {
			return fmt.Errorf("auto-resolving stale alerts: %w", err)
		}

		candidates, err := s.pipeline.Evaluate(ctx, ws.Reader())
		if err != nil {
			return err
		}

		for _, c := range candidates {
			c.RunID = runID
		}
		if len(candidates) > 0 {
			if err := ws.Alerts().CreateBatch(ctx, candidates); err != nil {
				return fmt.Errorf("persisting alerts: %w", err)
			}
		}

		summary = reconciliation.NewRunSummary(runID, ranAt, candidates)
		s.logger.Info("Reconciliation run completed",
			zap.String("tenant_id", tc.TenantID.String()),
			zap.String("run_id", runID.String()),
			zap.Int64("auto_resolved", resolved),
			zap.Int("alerts", len(candidates)),
		)
		return nil
	})
	if err != nil {
		return nil, s.classifyRunError(tc, err)
	}
	return summary, nil
}

// classifyRunError maps a failed run onto the error taxonomy: deadline expiry
// and context cancellation count as persistence failures since the transaction
// rolled back, check failures and domain errors pass through, everything else
// is a persistence failure too.
func (s *RunService) classifyRunError(tc identity.TenantContext, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.Error("Reconciliation run exceeded its deadline",
			zap.String("tenant_id", tc.TenantID.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", reconciliation.ErrRunPersistence, err)
	}
	if errors.Is(err, reconciliation.ErrCheckFailed) {
		s.logger.Error("Reconciliation run aborted by failing check",
			zap.String("tenant_id", tc.TenantID.String()), zap.Error(err))
		return err
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error("Reconciliation run failed to persist",
		zap.String("tenant_id", tc.TenantID.String()), zap.Error(err))
	return fmt.Errorf("%w: %v", reconciliation.ErrRunPersistence, err)
}
