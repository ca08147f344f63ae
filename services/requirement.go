package services

import (
	"fmt"

	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Requirement is the absolute quantity of one material needed for a batch,
// derived from its percentage composition.
type Requirement struct {
	MaterialID   types.SnowflakeID `json:"material_id"`
	MaterialName string            `json:"material_name"`
	Quantity     decimal.Decimal   `json:"quantity"`
	Unit         string            `json:"unit"`
}

// Shortage reports one material whose available quantity is below its
// requirement.
type Shortage struct {
	MaterialID   types.SnowflakeID `json:"material_id"`
	MaterialName string            `json:"material_name"`
	Required     decimal.Decimal   `json:"required"`
	Available    decimal.Decimal   `json:"available"`
	Unit         string            `json:"unit"`
}

type AvailabilityResult struct {
	Available bool       `json:"available"`
	Shortages []Shortage `json:"shortages"`
}

// CalculateRequirements translates a locked formulation version into absolute
// material quantities for the given batch size. Pure, no I/O.
func CalculateRequirements(version *models.FormulationVersion, batchSize decimal.Decimal) ([]Requirement, error) {
	if version == nil {
		return nil, fmt.Errorf("%w: formulation version is required", ErrInvalidInput)
	}
	if !batchSize.IsPositive() {
		return nil, fmt.Errorf("%w: batch size must be positive, got %s", ErrInvalidInput, batchSize)
	}
	if !version.Locked {
		return nil, ErrVersionNotLocked
	}

	requirements := make([]Requirement, 0, len(version.Ingredients))
	for _, ing := range version.Ingredients {
		if ing.Percentage.IsNegative() {
			return nil, fmt.Errorf("%w: ingredient %s has negative composition", ErrInvalidInput, ing.MaterialName)
		}
		requirements = append(requirements, Requirement{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Quantity:     ing.Percentage.Div(oneHundred).Mul(batchSize),
			Unit:         ing.Unit,
		})
	}
	return requirements, nil
}

// CheckAvailability compares requirements against a ledger snapshot. A
// material missing from the snapshot counts as zero available.
func CheckAvailability(requirements []Requirement, levels map[types.SnowflakeID]models.Material) AvailabilityResult {
	result := AvailabilityResult{Available: true, Shortages: []Shortage{}}

	for _, req := range requirements {
		available := decimal.Zero
		name := req.MaterialName
		if mat, ok := levels[req.MaterialID]; ok {
			available = mat.CurrentQty
			if name == "" {
				name = mat.Name
			}
		}
		if available.LessThan(req.Quantity) {
			result.Available = false
			result.Shortages = append(result.Shortages, Shortage{
				MaterialID:   req.MaterialID,
				MaterialName: name,
				Required:     req.Quantity,
				Available:    available,
				Unit:         req.Unit,
			})
		}
	}
	return result
}
