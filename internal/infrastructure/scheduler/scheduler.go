// Package scheduler drives the daily reconciliation sweep: once per day, at a
// configured time, every active tenant gets one reconciliation pass. A tenant
// failing its pass never blocks the rest of the sweep.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"go.uber.org/zap"
)

// Runner executes one reconciliation pass for one tenant
type Runner interface {
	Run(ctx context.Context, tc identity.TenantContext) (*reconciliation.RunSummary, error)
}

// Config holds scheduler settings
type Config struct {
	Hour   int // hour (0-23) of the daily sweep
	Minute int // minute (0-59) of the daily sweep
}

// ReconciliationScheduler fires a sweep over all active tenants once per day
type ReconciliationScheduler struct {
	runner  Runner
	tenants identity.TenantRepository
	config  Config
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool

	// now is swappable for tests
	now func() time.Time
}

// Status is a point-in-time snapshot of the scheduler for the ops endpoint
type Status struct {
	Running    bool      `json:"running"`
	Hour       int       `json:"hour"`
	Minute     int       `json:"minute"`
	NextFireAt time.Time `json:"next_fire_at"`
}

// NewReconciliationScheduler creates a new scheduler
func NewReconciliationScheduler(runner Runner, tenants identity.TenantRepository, config Config, logger *zap.Logger) *ReconciliationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationScheduler{
		runner:  runner,
		tenants: tenants,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts the daily loop
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("reconciliation scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight sweep
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.logger.Info("reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status reports whether the daily loop is running and when it fires next
func (s *ReconciliationScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:    s.running,
		Hour:       s.config.Hour,
		Minute:     s.config.Minute,
		NextFireAt: s.nextFireTime(s.now()),
	}
}

// TriggerNow runs one sweep immediately, outside the daily cadence
func (s *ReconciliationScheduler) TriggerNow(ctx context.Context) {
	s.sweep(ctx)
}

func (s *ReconciliationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := s.nextFireTime(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

// nextFireTime returns the next daily fire time strictly after now
func (s *ReconciliationScheduler) nextFireTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, s.config.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// sweep runs one pass for every active tenant. Each tenant is its own fault
// boundary: an error or panic is logged and the sweep moves on.
func (s *ReconciliationScheduler) sweep(ctx context.Context) {
	tenants, err := s.tenants.FindActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active tenants for sweep", zap.Error(err))
		return
	}

	s.logger.Info("reconciliation sweep started", zap.Int("tenants", len(tenants)))
	var failed int
	for i := range tenants {
		if ctx.Err() != nil {
			s.logger.Warn("reconciliation sweep interrupted",
				zap.Int("completed", i), zap.Int("tenants", len(tenants)))
			return
		}
		if err := s.runTenant(ctx, tenants[i].Context()); err != nil {
			failed++
		}
	}
	s.logger.Info("reconciliation sweep finished",
		zap.Int("tenants", len(tenants)), zap.Int("failed", failed))
}

func (s *ReconciliationScheduler) runTenant(ctx context.Context, tc identity.TenantContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrRunPanicked
			s.logger.Error("reconciliation run panicked",
				zap.String("tenant_id", tc.TenantID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	summary, err := s.runner.Run(ctx, tc)
	if err != nil {
		if errors.Is(err, reconciliation.ErrRunInProgress) {
			s.logger.Warn("skipping tenant, run already in progress",
				zap.String("tenant_id", tc.TenantID.String()))
			return err
		}
		s.logger.Error("reconciliation run failed",
			zap.String("tenant_id", tc.TenantID.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("tenant reconciled",
		zap.String("tenant_id", tc.TenantID.String()),
		zap.String("run_id", summary.RunID.String()),
		zap.Int("alerts", summary.TotalAlerts),
	)
	return nil
}

// Ensure RunService satisfies Runner
var _ Runner = (*apprecon.RunService)(nil)
