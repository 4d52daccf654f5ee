// Package dispatch holds the outbound side of the packhouse domain: export
// shipments, the containers loaded for them, the pallets inside those
// containers, and the invoices raised against each export.
package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExportStatus represents the shipping status of an export
type ExportStatus string

const (
	ExportStatusDraft     ExportStatus = "draft"
	ExportStatusLoading   ExportStatus = "loading"
	ExportStatusShipped   ExportStatus = "shipped"
	ExportStatusCancelled ExportStatus = "cancelled"
)

// Export is one outbound shipment. The header carries the declared totals;
// reconciliation compares them against the containers and invoices linked in.
type Export struct {
	shared.BaseEntity
	ExportNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Destination   string          `gorm:"type:varchar(100)"`
	TotalWeightKg decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status        ExportStatus    `gorm:"type:varchar(20);not null;default:'draft'"`
	ShippedAt     *time.Time
}

// TableName returns the table name for GORM
func (Export) TableName() string {
	return "exports"
}

// ExportInvoice is an invoice raised against an export shipment
type ExportInvoice struct {
	shared.BaseEntity
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ExportID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	IssuedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExportInvoice) TableName() string {
	return "export_invoices"
}

// Container is a shipping container loaded for an export. PalletCount is the
// declared count on the header; the pallets table holds what was actually
// linked in.
type Container struct {
	shared.BaseEntity
	ContainerNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ExportID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	WeightKg        decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	PalletCount     int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Container) TableName() string {
	return "containers"
}

// Pallet is a packed pallet, optionally loaded into a container
type Pallet struct {
	shared.BaseEntity
	PalletNumber string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	ContainerID  *uuid.UUID `gorm:"type:uuid;index"`
	WeightKg     decimal.Decimal `gorm:"type:numeric(14,3);not null"`
}

// TableName returns the table name for GORM
func (Pallet) TableName() string {
	return "pallets"
}
