package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Grower is a fruit supplier delivering to the packhouse
type Grower struct {
	shared.BaseEntity
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(200);not null"`
	Region string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Grower) TableName() string {
	return "growers"
}

// PaymentStatus represents the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// GrowerPayment settles a grower for fruit delivered over a period. TotalKg is
// the weight the payment claims to cover; reconciliation compares it against
// the weight actually received from that grower.
type GrowerPayment struct {
	shared.BaseEntity
	PaymentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	GrowerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalKg       decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
}

// TableName returns the table name for GORM
func (GrowerPayment) TableName() string {
	return "grower_payments"
}
