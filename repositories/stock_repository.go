package repositories

import (
	"errors"
	"fmt"

	"fiber-mes/models"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db}
}

// Levels returns the current ledger rows for the given materials. Implements
// services.StockLedger.
func (r *StockRepository) Levels(ids []types.SnowflakeID) (map[types.SnowflakeID]models.Material, error) {
	var materials []models.Material
	if err := r.db.Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, err
	}

	levels := make(map[types.SnowflakeID]models.Material, len(materials))
	for _, m := range materials {
		levels[m.ID] = m
	}
	return levels, nil
}

func (r *StockRepository) Get(id types.SnowflakeID) (*models.Material, error) {
	var material models.Material
	if err := r.db.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

func (r *StockRepository) List() ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.Order("code").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// LowStock lists materials at or under their configured threshold.
func (r *StockRepository) LowStock() ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.Where("min_threshold > 0 AND current_qty <= min_threshold").Order("code").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *StockRepository) Create(material *models.Material) error {
	return r.db.Create(material).Error
}

// Adjust applies a signed quantity delta to one material and records the
// movement. Decrements are conditional so the ledger can never go negative.
func (r *StockRepository) Adjust(id types.SnowflakeID, delta decimal.Decimal, reason string, userID int) (*models.Material, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: adjustment delta must be non-zero", services.ErrInvalidInput)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var query *gorm.DB
		if delta.IsNegative() {
			query = tx.Model(&models.Material{}).
				Where("id = ? AND current_qty >= ?", id, delta.Neg()).
				Updates(map[string]interface{}{
					"current_qty": gorm.Expr("current_qty - ?", delta.Neg()),
					"updated_by":  userID,
				})
		} else {
			query = tx.Model(&models.Material{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"current_qty": gorm.Expr("current_qty + ?", delta),
					"updated_by":  userID,
				})
		}
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected == 0 {
			var material models.Material
			if err := tx.First(&material, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return services.ErrNotFound
				}
				return err
			}
			return fmt.Errorf("%w: adjustment would drive %s below zero (current %s, delta %s)",
				services.ErrInvalidInput, material.Code, material.CurrentQty, delta)
		}

		direction := "in"
		qty := delta
		if delta.IsNegative() {
			direction = "out"
			qty = delta.Neg()
		}
		movement := models.StockMovement{
			MaterialID: id,
			Quantity:   qty,
			Direction:  direction,
			Reason:     reason,
			CreatedBy:  userID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}

	return r.Get(id)
}

func (r *StockRepository) Movements(id types.SnowflakeID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.Where("material_id = ?", id).Order("id DESC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
