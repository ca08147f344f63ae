package repositories

import (
	"errors"
	"time"

	"fiber-mes/models"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db}
}

// CreateWithDeduction persists the batch, its material rows and the stock
// decrement in one transaction. Every decrement re-validates sufficiency with
// a conditional update, so two concurrent creations can never both pass the
// availability check and drive a material negative: the loser rolls back
// whole and surfaces the shortage.
func (r *BatchRepository) CreateWithDeduction(batch *models.Batch) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return services.ErrDuplicateBatchCode
			}
			return err
		}

		for _, m := range batch.Materials {
			res := tx.Model(&models.Material{}).
				Where("id = ? AND current_qty >= ?", m.MaterialID, m.QuantityUsed).
				Update("current_qty", gorm.Expr("current_qty - ?", m.QuantityUsed))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				shortage := services.Shortage{
					MaterialID:   m.MaterialID,
					MaterialName: m.MaterialName,
					Required:     m.QuantityUsed,
					Available:    decimal.Zero,
					Unit:         m.Unit,
				}
				var material models.Material
				if err := tx.First(&material, "id = ?", m.MaterialID).Error; err == nil {
					shortage.Available = material.CurrentQty
				}
				return &services.InsufficientMaterialsError{Shortages: []services.Shortage{shortage}}
			}

			movement := models.StockMovement{
				MaterialID: m.MaterialID,
				Quantity:   m.QuantityUsed,
				Direction:  "out",
				Reason:     "batch " + batch.BatchCode,
				BatchID:    &batch.ID,
				CreatedBy:  batch.CreatedBy,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BatchRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Workers").
		Preload("Materials").
		Preload("Photos").
		Preload("QualityChecks").
		Preload("FormulationVersion").
		Preload("FormulationVersion.Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		})
}

func (r *BatchRepository) Get(id types.SnowflakeID) (*models.Batch, error) {
	var batch models.Batch
	if err := r.preloaded().First(&batch, "batches.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

func (r *BatchRepository) GetByCode(code string) (*models.Batch, error) {
	var batch models.Batch
	if err := r.preloaded().First(&batch, "batch_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// UpdateStatus applies the transition under the batch's optimistic lock.
// Exactly one of two concurrent updates wins; the other sees
// ErrConcurrentModification instead of silently overwriting.
func (r *BatchRepository) UpdateStatus(id types.SnowflakeID, expectedLockVersion int, status models.BatchStatus, endTime *time.Time, notes string, updatedBy int) (*models.Batch, error) {
	updates := map[string]interface{}{
		"status":       status,
		"lock_version": gorm.Expr("lock_version + 1"),
		"updated_by":   updatedBy,
	}
	if endTime != nil {
		updates["end_time"] = endTime
	}
	if notes != "" {
		updates["notes"] = notes
	}

	res := r.db.Model(&models.Batch{}).
		Where("id = ? AND lock_version = ?", id, expectedLockVersion).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Batch{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, services.ErrNotFound
		}
		return nil, services.ErrConcurrentModification
	}

	return r.Get(id)
}

type BatchFilters struct {
	Status       string
	ProductName  string
	SupervisorID int
	DateFrom     *time.Time
	DateTo       *time.Time
}

func (r *BatchRepository) List(filters BatchFilters) ([]models.Batch, error) {
	query := r.preloaded()
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ProductName != "" {
		query = query.Where("product_name LIKE ?", "%"+filters.ProductName+"%")
	}
	if filters.SupervisorID != 0 {
		query = query.Where("supervisor_id = ?", filters.SupervisorID)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", filters.DateTo)
	}

	var batches []models.Batch
	if err := query.Order("start_time DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *BatchRepository) AppendPhoto(photo *models.BatchPhoto) error {
	var count int64
	if err := r.db.Model(&models.Batch{}).Where("id = ?", photo.BatchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return services.ErrNotFound
	}
	return r.db.Create(photo).Error
}

func (r *BatchRepository) AppendQualityCheck(check *models.QualityCheck) error {
	var count int64
	if err := r.db.Model(&models.Batch{}).Where("id = ?", check.BatchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return services.ErrNotFound
	}
	return r.db.Create(check).Error
}

type BatchStats struct {
	TotalBatches int             `json:"total_batches"`
	Completed    int             `json:"completed"`
	InProgress   int             `json:"in_progress"`
	TotalOutput  decimal.Decimal `json:"total_output"`
	AvgBatchSize decimal.Decimal `json:"avg_batch_size"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StatsOverview aggregates the batch table for the dashboard.
func (r *BatchRepository) StatsOverview(dateFrom, dateTo *time.Time) (*BatchStats, []StatusCount, error) {
	where := "1 = 1"
	args := []interface{}{}
	if dateFrom != nil {
		where += " AND start_time >= ?"
		args = append(args, dateFrom)
	}
	if dateTo != nil {
		where += " AND start_time <= ?"
		args = append(args, dateTo)
	}

	sql := `SELECT COUNT(*) AS total_batches,
		SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed,
		SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END) AS in_progress,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN batch_size ELSE 0 END), 0) AS total_output,
		COALESCE(AVG(batch_size), 0) AS avg_batch_size
		FROM batches WHERE ` + where

	var stats BatchStats
	if err := r.db.Raw(sql, args...).Scan(&stats).Error; err != nil {
		return nil, nil, err
	}

	var distribution []StatusCount
	distSQL := `SELECT status, COUNT(*) AS count FROM batches WHERE ` + where + ` GROUP BY status`
	if err := r.db.Raw(distSQL, args...).Scan(&distribution).Error; err != nil {
		return nil, nil, err
	}

	return &stats, distribution, nil
}
