package repositories

import (
	"errors"
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/models"
	"fiber-mes/services"
	"fiber-mes/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db}
}

func (r *WorkerRepository) Create(worker *models.Worker) error {
	if worker.ID == 0 {
		worker.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return r.db.Create(worker).Error
}

func (r *WorkerRepository) Get(id types.SnowflakeID) (*models.Worker, error) {
	var worker models.Worker
	if err := r.db.First(&worker, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) List() ([]models.Worker, error) {
	var workers []models.Worker
	if err := r.db.Order("name").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *WorkerRepository) Update(worker *models.Worker) error {
	return r.db.Save(worker).Error
}

// completedBatches returns the completed batches the worker was assigned to,
// associations included.
func (r *WorkerRepository) completedBatches(workerID types.SnowflakeID) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.
		Joins("JOIN batch_workers bw ON bw.batch_id = batches.id").
		Where("bw.worker_id = ? AND batches.status = ?", workerID, models.BatchCompleted).
		Preload("Workers").
		Order("batches.start_time").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// History gathers the efficiency engine's input for one worker. Implements
// services.WorkerSource.
func (r *WorkerRepository) History(workerID types.SnowflakeID) (services.WorkerHistory, error) {
	worker, err := r.Get(workerID)
	if err != nil {
		return services.WorkerHistory{}, err
	}

	batches, err := r.completedBatches(workerID)
	if err != nil {
		return services.WorkerHistory{}, err
	}

	var feedback []models.WorkerFeedback
	if err := r.db.Where("worker_id = ?", workerID).Order("id").Find(&feedback).Error; err != nil {
		return services.WorkerHistory{}, err
	}

	return services.WorkerHistory{
		Worker:           *worker,
		CompletedBatches: batches,
		Feedback:         feedback,
	}, nil
}

// SaveEfficiency upserts the derived record; it is rebuilt in full every
// time, so last writer wins.
func (r *WorkerRepository) SaveEfficiency(rec *models.WorkerEfficiency) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "worker_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

// Efficiency serves the cached record, if one has been calculated.
func (r *WorkerRepository) Efficiency(workerID types.SnowflakeID) (*models.WorkerEfficiency, error) {
	var rec models.WorkerEfficiency
	if err := r.db.First(&rec, "worker_id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// AddFeedback appends one supervisor feedback entry after verifying the
// worker and batch both resolve.
func (r *WorkerRepository) AddFeedback(feedback *models.WorkerFeedback) error {
	if _, err := r.Get(feedback.WorkerID); err != nil {
		return err
	}

	var count int64
	if err := r.db.Model(&models.Batch{}).Where("id = ?", feedback.BatchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return services.ErrNotFound
	}

	return r.db.Create(feedback).Error
}

// MonthlyReport collects the report payload for one worker and one calendar
// month: batches completed in the month plus the feedback written in it.
func (r *WorkerRepository) MonthlyReport(workerID types.SnowflakeID, month time.Time) (*services.MonthlyReportData, error) {
	worker, err := r.Get(workerID)
	if err != nil {
		return nil, err
	}

	efficiency, err := r.Efficiency(workerID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			return nil, err
		}
		efficiency = &models.WorkerEfficiency{WorkerID: workerID}
	}

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var batches []models.Batch
	err = r.db.
		Joins("JOIN batch_workers bw ON bw.batch_id = batches.id").
		Where("bw.worker_id = ? AND batches.status = ? AND batches.end_time >= ? AND batches.end_time < ?",
			workerID, models.BatchCompleted, monthStart, monthEnd).
		Order("batches.end_time").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}

	var feedback []models.WorkerFeedback
	err = r.db.
		Where("worker_id = ? AND created_at >= ? AND created_at < ?", workerID, monthStart, monthEnd).
		Order("id").
		Find(&feedback).Error
	if err != nil {
		return nil, err
	}

	return &services.MonthlyReportData{
		Worker:     *worker,
		Efficiency: *efficiency,
		Month:      monthStart,
		Batches:    batches,
		Feedback:   feedback,
	}, nil
}
