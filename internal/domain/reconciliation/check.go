package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reader is the read-only view of one tenant's operational data the checks
// aggregate over. Implementations run against a connection already scoped to
// the tenant's schema, so queries carry no tenant filtering of their own.
type Reader interface {
	// BatchLotWeights returns, per completed batch, the net intake weight and
	// the summed weight of the lots packed from it.
	BatchLotWeights(ctx context.Context) ([]BatchLotWeight, error)

	// GrowerIntakePayments returns, per grower, the weight received from that
	// grower and the weight its non-cancelled payments claim to cover.
	GrowerIntakePayments(ctx context.Context) ([]PartyIntakePayment, error)

	// HarvestTeamIntakePayments is the harvest-team analogue of
	// GrowerIntakePayments.
	HarvestTeamIntakePayments(ctx context.Context) ([]PartyIntakePayment, error)

	// ExportContainerWeights returns, per export, the declared header weight
	// and the summed weight of the containers loaded for it.
	ExportContainerWeights(ctx context.Context) ([]ExportContainerWeight, error)

	// ExportInvoiceValues returns, per export, the declared header value and
	// the summed totals of the invoices linked to it.
	ExportInvoiceValues(ctx context.Context) ([]ExportInvoiceValue, error)

	// ContainerPalletCounts returns, per container, the declared pallet count
	// and the number of pallets actually linked.
	ContainerPalletCounts(ctx context.Context) ([]ContainerPalletCount, error)

	// LabourCostRecords returns every labour record with its inputs and the
	// total cost booked for it.
	LabourCostRecords(ctx context.Context) ([]LabourCostRecord, error)

	// UnpaidGrowers returns growers with completed batches but no
	// non-cancelled payment at all.
	UnpaidGrowers(ctx context.Context) ([]UnpaidGrower, error)
}

// BatchLotWeight is one batch-vs-lots aggregate row
type BatchLotWeight struct {
	BatchID     uuid.UUID
	BatchNumber string
	NetWeightKg decimal.Decimal
	LotWeightKg decimal.Decimal
}

// PartyIntakePayment is one grower or harvest-team intake-vs-payment row
type PartyIntakePayment struct {
	PartyID    uuid.UUID
	PartyName  string
	BatchCount int
	IntakeKg   decimal.Decimal
	PaidKg     decimal.Decimal
}

// ExportContainerWeight is one export weight aggregate row
type ExportContainerWeight struct {
	ExportID          uuid.UUID
	ExportNumber      string
	HeaderWeightKg    decimal.Decimal
	ContainerWeightKg decimal.Decimal
}

// ExportInvoiceValue is one export value aggregate row
type ExportInvoiceValue struct {
	ExportID     uuid.UUID
	ExportNumber string
	Currency     string
	HeaderValue  decimal.Decimal
	InvoiceTotal decimal.Decimal
	InvoiceCount int
}

// ContainerPalletCount is one container-vs-pallet aggregate row
type ContainerPalletCount struct {
	ContainerID     uuid.UUID
	ContainerNumber string
	DeclaredCount   int
	LinkedCount     int
}

// LabourCostRecord is one labour record with its cost inputs
type LabourCostRecord struct {
	RecordID   uuid.UUID
	WorkDate   time.Time
	Activity   string
	Hours      decimal.Decimal
	HourlyRate decimal.Decimal
	Headcount  int
	TotalCost  decimal.Decimal
}

// UnpaidGrower is one grower with deliveries but no payment on record
type UnpaidGrower struct {
	GrowerID         uuid.UUID
	GrowerName       string
	CompletedBatches int
	DeliveredKg      decimal.Decimal
}

// Check is one stateless reconciliation rule. Evaluate is pure and read-only
// over the tenant's scoped data; candidates come back with RunID unset. Checks
// are independent of each other, so the pipeline may run them in any order.
type Check interface {
	Type() AlertType
	Evaluate(ctx context.Context, r Reader) ([]*Alert, error)
}
