package reconciliation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Tolerances. A check only emits a candidate once the variance strictly
// exceeds its tolerance; sub-tolerance deltas are not reported at all.
var (
	// weightTolerancePct is the relative tolerance for weight comparisons
	weightTolerancePct = decimal.NewFromInt(2)
	// amountTolerance is the absolute tolerance for currency comparisons
	amountTolerance = decimal.NewFromInt(50)
)

func fmtPct(pct decimal.Decimal) string {
	return pct.Round(2).String()
}

// BatchLotWeightCheck compares each batch's net intake weight against the
// summed weight of the lots packed from it.
type BatchLotWeightCheck struct{}

// Type returns the alert type this check produces
func (BatchLotWeightCheck) Type() AlertType { return AlertTypeBatchLotWeight }

// Evaluate emits a candidate per batch whose packed weight deviates more than
// the weight tolerance from its intake weight.
func (c BatchLotWeightCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.BatchLotWeights(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		pct, ok := VariancePct(row.NetWeightKg, row.LotWeightKg)
		if !ok || pct.LessThanOrEqual(weightTolerancePct) {
			continue
		}
		title := fmt.Sprintf("Batch %s packed weight mismatch", row.BatchNumber)
		desc := fmt.Sprintf("Batch %s recorded %s kg net intake but its lots total %s kg (variance %s kg, %s%%)",
			row.BatchNumber, row.NetWeightKg, row.LotWeightKg, row.LotWeightKg.Sub(row.NetWeightKg), fmtPct(pct))
		alerts = append(alerts, NewAlert(c.Type(), title, desc, row.NetWeightKg, row.LotWeightKg, "kg",
			EntityRefs{"batch_id": row.BatchID.String()}))
	}
	return alerts, nil
}

// GrowerPaymentCheck compares, per grower, the weight received against the
// weight the grower's payments claim to cover.
type GrowerPaymentCheck struct{}

// Type returns the alert type this check produces
func (GrowerPaymentCheck) Type() AlertType { return AlertTypeGrowerIntakePayment }

// Evaluate emits a candidate per grower whose paid weight deviates more than
// the weight tolerance from the delivered weight.
func (c GrowerPaymentCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.GrowerIntakePayments(ctx)
	if err != nil {
		return nil, err
	}
	return partyPaymentAlerts(c.Type(), "Grower", "grower_id", rows), nil
}

// TeamPaymentCheck is the harvest-team analogue of GrowerPaymentCheck
type TeamPaymentCheck struct{}

// Type returns the alert type this check produces
func (TeamPaymentCheck) Type() AlertType { return AlertTypeTeamIntakePayment }

// Evaluate emits a candidate per harvest team whose paid weight deviates more
// than the weight tolerance from the delivered weight.
func (c TeamPaymentCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.HarvestTeamIntakePayments(ctx)
	if err != nil {
		return nil, err
	}
	return partyPaymentAlerts(c.Type(), "Harvest team", "harvest_team_id", rows), nil
}

func partyPaymentAlerts(alertType AlertType, partyKind, refKey string, rows []PartyIntakePayment) []*Alert {
	var alerts []*Alert
	for _, row := range rows {
		pct, ok := VariancePct(row.IntakeKg, row.PaidKg)
		if !ok || pct.LessThanOrEqual(weightTolerancePct) {
			continue
		}
		title := fmt.Sprintf("%s %s payment weight mismatch", partyKind, row.PartyName)
		desc := fmt.Sprintf("%s %s delivered %s kg across %d batches but payments cover %s kg (variance %s kg, %s%%)",
			partyKind, row.PartyName, row.IntakeKg, row.BatchCount, row.PaidKg, row.PaidKg.Sub(row.IntakeKg), fmtPct(pct))
		alerts = append(alerts, NewAlert(alertType, title, desc, row.IntakeKg, row.PaidKg, "kg",
			EntityRefs{refKey: row.PartyID.String()}))
	}
	return alerts
}

// ExportWeightCheck compares each export's declared header weight against the
// summed weight of the containers loaded for it.
type ExportWeightCheck struct{}

// Type returns the alert type this check produces
func (ExportWeightCheck) Type() AlertType { return AlertTypeExportInvoice }

// Evaluate emits a candidate per export whose loaded weight deviates more than
// the weight tolerance from the declared weight.
func (c ExportWeightCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.ExportContainerWeights(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		pct, ok := VariancePct(row.HeaderWeightKg, row.ContainerWeightKg)
		if !ok || pct.LessThanOrEqual(weightTolerancePct) {
			continue
		}
		title := fmt.Sprintf("Export %s container weight mismatch", row.ExportNumber)
		desc := fmt.Sprintf("Export %s declares %s kg but its containers total %s kg (variance %s kg, %s%%)",
			row.ExportNumber, row.HeaderWeightKg, row.ContainerWeightKg,
			row.ContainerWeightKg.Sub(row.HeaderWeightKg), fmtPct(pct))
		alerts = append(alerts, NewAlert(c.Type(), title, desc, row.HeaderWeightKg, row.ContainerWeightKg, "kg",
			EntityRefs{"export_id": row.ExportID.String()}))
	}
	return alerts, nil
}

// ExportValueCheck compares each export's declared header value against the
// summed totals of the invoices linked to it, with an absolute tolerance.
type ExportValueCheck struct{}

// Type returns the alert type this check produces
func (ExportValueCheck) Type() AlertType { return AlertTypeExportInvoice }

// Evaluate emits a candidate per export whose invoiced value deviates more
// than the absolute amount tolerance from the declared value.
func (c ExportValueCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.ExportInvoiceValues(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		if row.HeaderValue.IsZero() && row.InvoiceTotal.IsZero() {
			continue
		}
		variance := row.InvoiceTotal.Sub(row.HeaderValue)
		if variance.Abs().LessThanOrEqual(amountTolerance) {
			continue
		}
		pct, _ := VariancePct(row.HeaderValue, row.InvoiceTotal)
		title := fmt.Sprintf("Export %s invoiced value mismatch", row.ExportNumber)
		desc := fmt.Sprintf("Export %s declares a value of %s %s but its %d invoices total %s %s (variance %s %s, %s%%)",
			row.ExportNumber, row.HeaderValue, row.Currency, row.InvoiceCount,
			row.InvoiceTotal, row.Currency, variance, row.Currency, fmtPct(pct))
		alerts = append(alerts, NewAlert(c.Type(), title, desc, row.HeaderValue, row.InvoiceTotal, row.Currency,
			EntityRefs{"export_id": row.ExportID.String()}))
	}
	return alerts, nil
}

// ContainerPalletCheck compares each container's declared pallet count against
// the pallets actually linked to it. The tolerance is exact: any non-zero
// delta alerts.
type ContainerPalletCheck struct{}

// Type returns the alert type this check produces
func (ContainerPalletCheck) Type() AlertType { return AlertTypeContainerPallet }

// Evaluate emits a candidate per container whose linked pallet count differs
// from the declared count.
func (c ContainerPalletCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.ContainerPalletCounts(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		if row.DeclaredCount == row.LinkedCount {
			continue
		}
		declared := decimal.NewFromInt(int64(row.DeclaredCount))
		linked := decimal.NewFromInt(int64(row.LinkedCount))
		pct, ok := VariancePct(declared, linked)
		if !ok {
			continue
		}
		title := fmt.Sprintf("Container %s pallet count mismatch", row.ContainerNumber)
		desc := fmt.Sprintf("Container %s declares %d pallets but %d are linked (variance %d, %s%%)",
			row.ContainerNumber, row.DeclaredCount, row.LinkedCount, row.LinkedCount-row.DeclaredCount, fmtPct(pct))
		alerts = append(alerts, NewAlert(c.Type(), title, desc, declared, linked, "pallets",
			EntityRefs{"container_id": row.ContainerID.String()}))
	}
	return alerts, nil
}

// LabourCostCheck recomputes hours x rate x headcount per labour record and
// compares it against the booked total cost with an absolute tolerance. A cost
// booked with zero hours or rate cannot be verified and always alerts.
type LabourCostCheck struct{}

// Type returns the alert type this check produces
func (LabourCostCheck) Type() AlertType { return AlertTypeLabourCost }

// Evaluate emits a candidate per labour record whose booked cost deviates more
// than the amount tolerance from the computed cost, or whose cost cannot be
// recomputed at all.
func (c LabourCostCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.LabourCostRecords(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		expected := row.Hours.Mul(row.HourlyRate).Mul(decimal.NewFromInt(int64(row.Headcount)))
		day := row.WorkDate.Format("2006-01-02")
		refs := EntityRefs{"labour_record_id": row.RecordID.String()}

		if expected.IsZero() {
			if row.TotalCost.IsZero() {
				continue
			}
			title := fmt.Sprintf("Labour cost cannot be verified for %s", day)
			desc := fmt.Sprintf("Labour record for %s books a cost of %s with zero hours or rate (hours %s, rate %s, headcount %d)",
				day, row.TotalCost, row.Hours, row.HourlyRate, row.Headcount)
			alerts = append(alerts, NewAlert(c.Type(), title, desc, expected, row.TotalCost, "", refs))
			continue
		}

		variance := row.TotalCost.Sub(expected)
		if variance.Abs().LessThanOrEqual(amountTolerance) {
			continue
		}
		pct, _ := VariancePct(expected, row.TotalCost)
		title := fmt.Sprintf("Labour cost mismatch for %s", day)
		desc := fmt.Sprintf("Labour record for %s books %s but %s hours at %s with headcount %d computes to %s (variance %s, %s%%)",
			day, row.TotalCost, row.Hours, row.HourlyRate, row.Headcount, expected, variance, fmtPct(pct))
		alerts = append(alerts, NewAlert(c.Type(), title, desc, expected, row.TotalCost, "", refs))
	}
	return alerts, nil
}

// UnpaidBatchesCheck flags growers with completed batches but no non-cancelled
// payment on record at all. This is a presence check: expected is the paid
// weight (zero), actual the delivered weight.
type UnpaidBatchesCheck struct{}

// Type returns the alert type this check produces
func (UnpaidBatchesCheck) Type() AlertType { return AlertTypeUnpaidBatches }

// Evaluate emits one candidate per grower without any payment
func (c UnpaidBatchesCheck) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	rows, err := r.UnpaidGrowers(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []*Alert
	for _, row := range rows {
		if row.DeliveredKg.IsZero() {
			continue
		}
		title := fmt.Sprintf("Grower %s has unpaid batches", row.GrowerName)
		desc := fmt.Sprintf("Grower %s has %d completed batches totalling %s kg with no payment on record",
			row.GrowerName, row.CompletedBatches, row.DeliveredKg)
		alerts = append(alerts, NewAlert(c.Type(), title, desc, decimal.Zero, row.DeliveredKg, "kg",
			EntityRefs{"grower_id": row.GrowerID.String()}))
	}
	return alerts, nil
}
