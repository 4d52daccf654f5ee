// Package reconciliation implements the tenant-scoped reconciliation core:
// the alert aggregate, the check pipeline that compares operational and
// financial records, and the run summary reported after each pass.
package reconciliation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AlertType is the closed set of mismatch categories the pipeline can detect
type AlertType string

const (
	AlertTypeBatchLotWeight      AlertType = "batch_vs_lot_weight"
	AlertTypeGrowerIntakePayment AlertType = "grower_intake_vs_payment"
	AlertTypeTeamIntakePayment   AlertType = "team_intake_vs_payment"
	AlertTypeExportInvoice       AlertType = "export_vs_invoice"
	AlertTypeContainerPallet     AlertType = "container_vs_pallet_count"
	AlertTypeLabourCost          AlertType = "labour_hours_vs_cost"
	AlertTypeUnpaidBatches       AlertType = "unpaid_batches"
)

// IsValid checks if the alert type belongs to the closed set
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeBatchLotWeight, AlertTypeGrowerIntakePayment, AlertTypeTeamIntakePayment,
		AlertTypeExportInvoice, AlertTypeContainerPallet, AlertTypeLabourCost, AlertTypeUnpaidBatches:
		return true
	}
	return false
}

// Severity ranks an alert by the size of its relative variance
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severity thresholds on variance_pct
var (
	severityCriticalPct = decimal.NewFromInt(20)
	severityHighPct     = decimal.NewFromInt(10)
	severityMediumPct   = decimal.NewFromInt(5)
)

// SeverityForVariancePct derives the severity tier from a percentage variance.
// It is the only place severity is computed.
func SeverityForVariancePct(pct decimal.Decimal) Severity {
	abs := pct.Abs()
	switch {
	case abs.GreaterThanOrEqual(severityCriticalPct):
		return SeverityCritical
	case abs.GreaterThanOrEqual(severityHighPct):
		return SeverityHigh
	case abs.GreaterThanOrEqual(severityMediumPct):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// VariancePct computes |actual-expected| / |expected| * 100. When expected is
// zero and actual is not, the variance is defined as 100%. When both are zero
// there is nothing to report and ok is false.
func VariancePct(expected, actual decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if expected.IsZero() && actual.IsZero() {
		return decimal.Zero, false
	}
	if expected.IsZero() {
		return decimal.NewFromInt(100), true
	}
	diff := actual.Sub(expected).Abs()
	return diff.Div(expected.Abs()).Mul(decimal.NewFromInt(100)), true
}

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "open"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusDismissed    AlertStatus = "dismissed"
)

// IsValid checks if the status is a valid AlertStatus
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusOpen, AlertStatusAcknowledged, AlertStatusResolved, AlertStatusDismissed:
		return true
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions. A recurring
// mismatch is represented by a new alert in a later run, never by reopening.
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusResolved || s == AlertStatusDismissed
}

// EntityRefs maps logical entity kinds (batch_id, grower_id, ...) to
// identifiers. The core only stores it; interpretation is left to the UI.
type EntityRefs map[string]string

// Value implements driver.Valuer, serializing the refs as JSON
func (r EntityRefs) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (r *EntityRefs) Scan(value interface{}) error {
	if value == nil {
		*r = EntityRefs{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported entity_refs column type %T", value)
	}
	return json.Unmarshal(b, r)
}

// SystemResolutionNote is the note stamped by auto-resolution
const SystemResolutionNote = "mismatch no longer detected"

// SystemActor is the resolved_by value for system-driven transitions
const SystemActor = "system"

// Alert is a persisted record of a detected mismatch between an expected and
// an actual quantity within one tenant's namespace. The numeric findings are
// computed once at creation and never mutated; only the status and resolution
// fields change afterwards.
type Alert struct {
	shared.BaseEntity
	AlertType      AlertType       `gorm:"type:varchar(40);not null;index" json:"alert_type"`
	Severity       Severity        `gorm:"type:varchar(10);not null;index" json:"severity"`
	Title          string          `gorm:"type:varchar(255);not null" json:"title"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	ExpectedValue  decimal.Decimal `gorm:"type:numeric(16,3);not null" json:"expected_value"`
	ActualValue    decimal.Decimal `gorm:"type:numeric(16,3);not null" json:"actual_value"`
	Variance       decimal.Decimal `gorm:"type:numeric(16,3);not null" json:"variance"`
	VariancePct    decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"variance_pct"`
	Unit           string          `gorm:"type:varchar(10)" json:"unit"`
	EntityRefs     EntityRefs      `gorm:"type:jsonb" json:"entity_refs"`
	PeriodStart    *time.Time      `json:"period_start,omitempty"`
	PeriodEnd      *time.Time      `json:"period_end,omitempty"`
	Status         AlertStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy     string          `gorm:"type:varchar(100)" json:"resolved_by,omitempty"`
	ResolutionNote string          `gorm:"type:text" json:"resolution_note,omitempty"`
	RunID          uuid.UUID       `gorm:"type:uuid;index" json:"run_id"`
	IsDeleted      bool            `gorm:"not null;default:false;index" json:"-"`
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "reconciliation_alerts"
}

// NewAlert builds an open, unpersisted alert candidate. Variance, variance_pct
// and severity are derived from expected/actual here and nowhere else. RunID
// stays unset until the orchestrator stamps the candidate into a run.
func NewAlert(alertType AlertType, title, description string, expected, actual decimal.Decimal, unit string, refs EntityRefs) *Alert {
	pct, _ := VariancePct(expected, actual)
	return &Alert{
		BaseEntity:    shared.NewBaseEntity(),
		AlertType:     alertType,
		Severity:      SeverityForVariancePct(pct),
		Title:         title,
		Description:   description,
		ExpectedValue: expected,
		ActualValue:   actual,
		Variance:      actual.Sub(expected),
		VariancePct:   pct,
		Unit:          unit,
		EntityRefs:    refs,
		Status:        AlertStatusOpen,
	}
}

// WithPeriod sets the optional time window the comparison covers
func (a *Alert) WithPeriod(start, end *time.Time) *Alert {
	a.PeriodStart = start
	a.PeriodEnd = end
	return a
}

// CanTransitionTo reports whether the state machine allows moving to target
func (a *Alert) CanTransitionTo(target AlertStatus) bool {
	if a.Status.IsTerminal() {
		return false
	}
	switch target {
	case AlertStatusAcknowledged:
		return a.Status == AlertStatusOpen
	case AlertStatusResolved, AlertStatusDismissed:
		return a.Status == AlertStatusOpen || a.Status == AlertStatusAcknowledged
	default:
		return false
	}
}

// Acknowledge marks the alert as seen by a reviewer
func (a *Alert) Acknowledge() error {
	if !a.CanTransitionTo(AlertStatusAcknowledged) {
		return shared.ErrInvalidState
	}
	a.Status = AlertStatusAcknowledged
	a.UpdatedAt = time.Now()
	return nil
}

// Resolve transitions the alert into the resolved terminal state
func (a *Alert) Resolve(by, note string) error {
	return a.close(AlertStatusResolved, by, note)
}

// Dismiss transitions the alert into the dismissed terminal state
func (a *Alert) Dismiss(by, note string) error {
	return a.close(AlertStatusDismissed, by, note)
}

func (a *Alert) close(target AlertStatus, by, note string) error {
	if !a.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	a.Status = target
	a.ResolvedAt = &now
	a.ResolvedBy = by
	a.ResolutionNote = note
	a.UpdatedAt = now
	return nil
}
