package models

import (
	"fiber-mes/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material is the stock ledger row. CurrentQty never goes below zero; it is
// only mutated through the conditional update in the stock repository.
type Material struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	Code         string            `json:"code" gorm:"unique;not null"`
	Name         string            `json:"name" gorm:"not null"`
	Unit         string            `json:"unit"`
	CurrentQty   decimal.Decimal   `json:"current_qty" gorm:"type:decimal(18,4);default:0"`
	MinThreshold decimal.Decimal   `json:"min_threshold" gorm:"type:decimal(18,4);default:0"`
	Remarks      string            `json:"remarks"`
	CreatedBy    int               `json:"created_by"`
	UpdatedBy    int               `json:"updated_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `json:"-" gorm:"index"`
}

// StockMovement is the audit trail of every ledger mutation: intake, manual
// adjustment and batch deduction.
type StockMovement struct {
	ID         uint               `json:"id" gorm:"primaryKey"`
	MaterialID types.SnowflakeID  `json:"material_id" gorm:"index"`
	Quantity   decimal.Decimal    `json:"quantity" gorm:"type:decimal(18,4)"`
	Direction  string             `json:"direction"` // in | out
	Reason     string             `json:"reason"`
	BatchID    *types.SnowflakeID `json:"batch_id"`
	CreatedBy  int                `json:"created_by"`
	CreatedAt  time.Time          `json:"created_at"`
}
