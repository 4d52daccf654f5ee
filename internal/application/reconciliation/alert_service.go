package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertService exposes alert listing and lifecycle actions to the
// admin/reporting layer. Alerts are only ever created by the run orchestrator;
// this service mutates status and resolution fields alone.
type AlertService struct {
	runner WorkspaceRunner
	logger *zap.Logger
}

// NewAlertService creates an AlertService
func NewAlertService(runner WorkspaceRunner, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{runner: runner, logger: logger}
}

// List returns a page of the tenant's alerts matching the filter
func (s *AlertService) List(ctx context.Context, tc identity.TenantContext, filter reconciliation.AlertFilter) (shared.Paginated[reconciliation.Alert], error) {
	var page shared.Paginated[reconciliation.Alert]
	err := s.runner.View(ctx, tc, func(ctx context.Context, ws Workspace) error {
		alerts, err := ws.Alerts().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := ws.Alerts().Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(alerts, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}

// Get returns one alert by id
func (s *AlertService) Get(ctx context.Context, tc identity.TenantContext, id uuid.UUID) (*reconciliation.Alert, error) {
	var alert *reconciliation.Alert
	err := s.runner.View(ctx, tc, func(ctx context.Context, ws Workspace) error {
		found, err := ws.Alerts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		alert = found
		return nil
	})
	return alert, err
}

// UpdateStatus applies a reviewer transition to an alert. Target must be one
// of acknowledged, resolved, or dismissed; the state machine on the aggregate
// guards the rest.
func (s *AlertService) UpdateStatus(ctx context.Context, tc identity.TenantContext, id uuid.UUID, target reconciliation.AlertStatus, note, actor string) (*reconciliation.Alert, error) {
	var alert *reconciliation.Alert
	err := s.runner.RunInTransaction(ctx, tc, func(ctx context.Context, ws Workspace) error {
		found, err := ws.Alerts().FindByID(ctx, id)
		if err != nil {
			return err
		}

		switch target {
		case reconciliation.AlertStatusAcknowledged:
			err = found.Acknowledge()
		case reconciliation.AlertStatusResolved:
			err = found.Resolve(actor, note)
		case reconciliation.AlertStatusDismissed:
			err = found.Dismiss(actor, note)
		default:
			err = shared.ErrInvalidInput
		}
		if err != nil {
			return err
		}

		if err := ws.Alerts().Save(ctx, found); err != nil {
			return err
		}
		alert = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Alert status updated",
		zap.String("tenant_id", tc.TenantID.String()),
		zap.String("alert_id", id.String()),
		zap.String("status", string(target)),
	)
	return alert, nil
}
