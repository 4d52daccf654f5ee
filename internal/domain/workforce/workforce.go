// Package workforce holds harvest teams, their payments, and the labour
// records the packhouse keeps for packing-floor shifts.
package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/intake"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// HarvestTeam is a picking crew delivering fruit on behalf of growers
type HarvestTeam struct {
	shared.BaseEntity
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (HarvestTeam) TableName() string {
	return "harvest_teams"
}

// HarvestTeamPayment settles a harvest team for fruit it routed into the
// packhouse over a period.
type HarvestTeamPayment struct {
	shared.BaseEntity
	PaymentNumber string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	HarvestTeamID uuid.UUID            `gorm:"type:uuid;not null;index"`
	TotalKg       decimal.Decimal      `gorm:"type:numeric(14,3);not null"`
	Amount        decimal.Decimal      `gorm:"type:numeric(14,2);not null"`
	Status        intake.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
}

// TableName returns the table name for GORM
func (HarvestTeamPayment) TableName() string {
	return "harvest_team_payments"
}

// LabourRecord captures one packing-floor shift: who worked, for how long, at
// what rate, and the total cost booked for it.
type LabourRecord struct {
	shared.BaseEntity
	WorkDate   time.Time       `gorm:"not null;index"`
	Activity   string          `gorm:"type:varchar(100)"`
	Hours      decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	HourlyRate decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Headcount  int             `gorm:"not null"`
	TotalCost  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

// TableName returns the table name for GORM
func (LabourRecord) TableName() string {
	return "labour_records"
}
