package persistence

import (
	"context"

	"github.com/packhouse/backend/internal/domain/dispatch"
	"github.com/packhouse/backend/internal/domain/intake"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"gorm.io/gorm"
)

// GormReconciliationReader implements the read-only aggregate view the check
// pipeline evaluates. Queries carry no tenant predicate; the connection they
// run on is already scoped to the tenant's schema.
type GormReconciliationReader struct {
	db *gorm.DB
}

// NewGormReconciliationReader creates a new GormReconciliationReader
func NewGormReconciliationReader(db *gorm.DB) *GormReconciliationReader {
	return &GormReconciliationReader{db: db}
}

// BatchLotWeights returns, per completed batch, the net intake weight and the
// summed weight of its lots. Batches still packing are not compared.
func (r *GormReconciliationReader) BatchLotWeights(ctx context.Context) ([]reconciliation.BatchLotWeight, error) {
	var rows []reconciliation.BatchLotWeight
	err := r.db.WithContext(ctx).
		Table("batches b").
		Select("b.id AS batch_id, b.batch_number, b.net_weight_kg, COALESCE(SUM(l.weight_kg), 0) AS lot_weight_kg").
		Joins("LEFT JOIN lots l ON l.batch_id = b.id").
		Where("b.status = ?", intake.BatchStatusCompleted).
		Group("b.id, b.batch_number, b.net_weight_kg").
		Scan(&rows).Error
	return rows, err
}

// GrowerIntakePayments returns, per grower, the completed intake weight and
// the weight covered by non-cancelled payments.
func (r *GormReconciliationReader) GrowerIntakePayments(ctx context.Context) ([]reconciliation.PartyIntakePayment, error) {
	intakeAgg := r.db.
		Table("batches").
		Select("grower_id, COUNT(*) AS batch_count, COALESCE(SUM(net_weight_kg), 0) AS intake_kg").
		Where("status = ? AND grower_id IS NOT NULL", intake.BatchStatusCompleted).
		Group("grower_id")
	paidAgg := r.db.
		Table("grower_payments").
		Select("grower_id, COALESCE(SUM(total_kg), 0) AS paid_kg").
		Where("status <> ?", intake.PaymentStatusCancelled).
		Group("grower_id")

	var rows []reconciliation.PartyIntakePayment
	err := r.db.WithContext(ctx).
		Table("growers g").
		Select("g.id AS party_id, g.name AS party_name, COALESCE(bi.batch_count, 0) AS batch_count, "+
			"COALESCE(bi.intake_kg, 0) AS intake_kg, COALESCE(p.paid_kg, 0) AS paid_kg").
		Joins("LEFT JOIN (?) bi ON bi.grower_id = g.id", intakeAgg).
		Joins("LEFT JOIN (?) p ON p.grower_id = g.id", paidAgg).
		Scan(&rows).Error
	return rows, err
}

// HarvestTeamIntakePayments is the harvest-team analogue of
// GrowerIntakePayments.
func (r *GormReconciliationReader) HarvestTeamIntakePayments(ctx context.Context) ([]reconciliation.PartyIntakePayment, error) {
	intakeAgg := r.db.
		Table("batches").
		Select("harvest_team_id, COUNT(*) AS batch_count, COALESCE(SUM(net_weight_kg), 0) AS intake_kg").
		Where("status = ? AND harvest_team_id IS NOT NULL", intake.BatchStatusCompleted).
		Group("harvest_team_id")
	paidAgg := r.db.
		Table("harvest_team_payments").
		Select("harvest_team_id, COALESCE(SUM(total_kg), 0) AS paid_kg").
		Where("status <> ?", intake.PaymentStatusCancelled).
		Group("harvest_team_id")

	var rows []reconciliation.PartyIntakePayment
	err := r.db.WithContext(ctx).
		Table("harvest_teams t").
		Select("t.id AS party_id, t.name AS party_name, COALESCE(bi.batch_count, 0) AS batch_count, "+
			"COALESCE(bi.intake_kg, 0) AS intake_kg, COALESCE(p.paid_kg, 0) AS paid_kg").
		Joins("LEFT JOIN (?) bi ON bi.harvest_team_id = t.id", intakeAgg).
		Joins("LEFT JOIN (?) p ON p.harvest_team_id = t.id", paidAgg).
		Scan(&rows).Error
	return rows, err
}

// ExportContainerWeights returns, per export past the draft stage, the
// declared header weight and the summed weight of its containers.
func (r *GormReconciliationReader) ExportContainerWeights(ctx context.Context) ([]reconciliation.ExportContainerWeight, error) {
	var rows []reconciliation.ExportContainerWeight
	err := r.db.WithContext(ctx).
		Table("exports e").
		Select("e.id AS export_id, e.export_number, e.total_weight_kg AS header_weight_kg, "+
			"COALESCE(SUM(c.weight_kg), 0) AS container_weight_kg").
		Joins("LEFT JOIN containers c ON c.export_id = e.id").
		Where("e.status NOT IN ?", []dispatch.ExportStatus{dispatch.ExportStatusDraft, dispatch.ExportStatusCancelled}).
		Group("e.id, e.export_number, e.total_weight_kg").
		Scan(&rows).Error
	return rows, err
}

// ExportInvoiceValues returns, per export past the draft stage, the declared
// header value and the summed totals of its invoices.
func (r *GormReconciliationReader) ExportInvoiceValues(ctx context.Context) ([]reconciliation.ExportInvoiceValue, error) {
	var rows []reconciliation.ExportInvoiceValue
	err := r.db.WithContext(ctx).
		Table("exports e").
		Select("e.id AS export_id, e.export_number, e.currency, e.total_value AS header_value, "+
			"COALESCE(SUM(i.total_amount), 0) AS invoice_total, COUNT(i.id) AS invoice_count").
		Joins("LEFT JOIN export_invoices i ON i.export_id = e.id").
		Where("e.status NOT IN ?", []dispatch.ExportStatus{dispatch.ExportStatusDraft, dispatch.ExportStatusCancelled}).
		Group("e.id, e.export_number, e.currency, e.total_value").
		Scan(&rows).Error
	return rows, err
}

// ContainerPalletCounts returns, per container, the declared pallet count and
// the number of pallets actually linked.
func (r *GormReconciliationReader) ContainerPalletCounts(ctx context.Context) ([]reconciliation.ContainerPalletCount, error) {
	var rows []reconciliation.ContainerPalletCount
	err := r.db.WithContext(ctx).
		Table("containers c").
		Select("c.id AS container_id, c.container_number, c.pallet_count AS declared_count, COUNT(p.id) AS linked_count").
		Joins("LEFT JOIN pallets p ON p.container_id = c.id").
		Group("c.id, c.container_number, c.pallet_count").
		Scan(&rows).Error
	return rows, err
}

// LabourCostRecords returns every labour record with its cost inputs
func (r *GormReconciliationReader) LabourCostRecords(ctx context.Context) ([]reconciliation.LabourCostRecord, error) {
	var rows []reconciliation.LabourCostRecord
	err := r.db.WithContext(ctx).
		Table("labour_records").
		Select("id AS record_id, work_date, activity, hours, hourly_rate, headcount, total_cost").
		Scan(&rows).Error
	return rows, err
}

// UnpaidGrowers returns growers with completed batches but no non-cancelled
// payment on record at all.
func (r *GormReconciliationReader) UnpaidGrowers(ctx context.Context) ([]reconciliation.UnpaidGrower, error) {
	var rows []reconciliation.UnpaidGrower
	err := r.db.WithContext(ctx).
		Table("growers g").
		Select("g.id AS grower_id, g.name AS grower_name, COUNT(b.id) AS completed_batches, "+
			"COALESCE(SUM(b.net_weight_kg), 0) AS delivered_kg").
		Joins("JOIN batches b ON b.grower_id = g.id AND b.status = ?", intake.BatchStatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM grower_payments gp WHERE gp.grower_id = g.id AND gp.status <> ?)",
			intake.PaymentStatusCancelled).
		Group("g.id, g.name").
		Scan(&rows).Error
	return rows, err
}

// Ensure GormReconciliationReader implements Reader
var _ reconciliation.Reader = (*GormReconciliationReader)(nil)
