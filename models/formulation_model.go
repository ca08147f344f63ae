package models

import (
	"fiber-mes/types"
	"time"

	"github.com/shopspring/decimal"
)

type Formulation struct {
	ID          types.SnowflakeID    `json:"ID" gorm:"primaryKey"`
	Name        string               `json:"name" gorm:"unique;not null"`
	ProductName string               `json:"product_name"`
	Remarks     string               `json:"remarks"`
	CreatedBy   int                  `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Versions    []FormulationVersion `json:"versions,omitempty" gorm:"foreignKey:FormulationID"`
}

// FormulationVersion is immutable once Locked is set; only a locked version
// can back a production batch.
type FormulationVersion struct {
	ID            types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	FormulationID types.SnowflakeID `json:"formulation_id" gorm:"index:idx_formulation_version,unique"`
	VersionNumber int               `json:"version_number" gorm:"index:idx_formulation_version,unique"`
	Locked        bool              `json:"locked" gorm:"default:false"`
	LockedAt      *time.Time        `json:"locked_at"`
	LockedBy      int               `json:"locked_by"`
	CreatedBy     int               `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	Ingredients   []Ingredient      `json:"ingredients" gorm:"foreignKey:FormulationVersionID"`
}

type Ingredient struct {
	ID                   uint              `json:"id" gorm:"primaryKey"`
	FormulationVersionID types.SnowflakeID `json:"formulation_version_id" gorm:"index"`
	MaterialID           types.SnowflakeID `json:"material_id"`
	MaterialName         string            `json:"material_name"`
	Percentage           decimal.Decimal   `json:"percentage" gorm:"type:decimal(9,4)"`
	Unit                 string            `json:"unit"`
	Notes                string            `json:"notes"`
	Position             int               `json:"position"`
}

// PercentageSum adds up the composition of all ingredients in declared order.
func (v *FormulationVersion) PercentageSum() decimal.Decimal {
	sum := decimal.Zero
	for _, ing := range v.Ingredients {
		sum = sum.Add(ing.Percentage)
	}
	return sum
}
