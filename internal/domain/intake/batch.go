// Package intake holds the fruit-intake side of the packhouse domain: growers
// delivering fruit, the batches received at the door, the lots packed out of
// them, and the grower payments settling those deliveries.
package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatchSource indicates who routed the fruit into the packhouse
type BatchSource string

const (
	BatchSourceGrower      BatchSource = "grower"
	BatchSourceHarvestTeam BatchSource = "harvest_team"
)

// BatchStatus represents the processing status of an intake batch
type BatchStatus string

const (
	BatchStatusReceived  BatchStatus = "received"
	BatchStatusPacking   BatchStatus = "packing"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusCancelled BatchStatus = "cancelled"
)

// Batch is one delivery of fruit received at the packhouse door. Weights are
// recorded at the weighbridge; lots packed from the batch reference it.
type Batch struct {
	shared.BaseEntity
	BatchNumber   string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Source        BatchSource `gorm:"type:varchar(20);not null"`
	GrowerID      *uuid.UUID  `gorm:"type:uuid;index"`
	HarvestTeamID *uuid.UUID  `gorm:"type:uuid;index"`
	Variety       string      `gorm:"type:varchar(100)"`
	GrossWeightKg decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	NetWeightKg   decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	ReceivedAt    time.Time       `gorm:"not null;index"`
	Status        BatchStatus     `gorm:"type:varchar(20);not null;default:'received'"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "batches"
}

// Lot is a packed unit of fruit produced from a batch
type Lot struct {
	shared.BaseEntity
	LotNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BatchID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Grade     string          `gorm:"type:varchar(20)"`
	WeightKg  decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	PackedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}
