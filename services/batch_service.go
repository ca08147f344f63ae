package services

import (
	"errors"
	"fmt"
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// codeRetries bounds regeneration attempts when the persistence layer
// reports a batch code collision.
const codeRetries = 3

// FormulationSource resolves locked formulation versions, ingredients
// preloaded. Returns ErrNotFound when the id does not resolve.
type FormulationSource interface {
	Version(id types.SnowflakeID) (*models.FormulationVersion, error)
}

// StockLedger reads current material levels for the availability pre-check.
// The authoritative re-validation happens inside BatchStore.CreateWithDeduction.
type StockLedger interface {
	Levels(ids []types.SnowflakeID) (map[types.SnowflakeID]models.Material, error)
}

// BatchStore owns batch persistence. CreateWithDeduction must persist the
// batch, its material rows and the stock decrement as one atomic unit,
// re-validating sufficiency under the transaction; on any shortage nothing is
// written and an InsufficientMaterialsError is returned.
type BatchStore interface {
	CreateWithDeduction(batch *models.Batch) error
	Get(id types.SnowflakeID) (*models.Batch, error)
	GetByCode(code string) (*models.Batch, error)
	UpdateStatus(id types.SnowflakeID, expectedLockVersion int, status models.BatchStatus, endTime *time.Time, notes string, updatedBy int) (*models.Batch, error)
}

// WorkerSource feeds the efficiency engine and stores its output.
type WorkerSource interface {
	History(workerID types.SnowflakeID) (WorkerHistory, error)
	SaveEfficiency(rec *models.WorkerEfficiency) error
}

// LowStockNotifier is called best-effort after a successful deduction.
type LowStockNotifier interface {
	NotifyLowStock(materials []models.Material)
}

type CreateBatchInput struct {
	ProductName          string
	FormulationVersionID types.SnowflakeID
	BatchSize            decimal.Decimal
	Unit                 string
	WorkerIDs            []types.SnowflakeID
	Shift                string
	StartTime            time.Time
	Notes                string
	SupervisorID         int
}

// BatchService drives the batch production workflow: requirement calculation,
// availability check, atomic creation with stock deduction, status
// transitions and the efficiency recomputation they trigger.
type BatchService struct {
	Formulations FormulationSource
	Stock        StockLedger
	Batches      BatchStore
	Workers      WorkerSource
	Notifier     LowStockNotifier
	Params       EfficiencyParams
	Log          *logrus.Logger
}

func NewBatchService(formulations FormulationSource, stock StockLedger, batches BatchStore, workers WorkerSource) *BatchService {
	return &BatchService{
		Formulations: formulations,
		Stock:        stock,
		Batches:      batches,
		Workers:      workers,
		Params:       DefaultEfficiencyParams(),
	}
}

// Create runs the full batch creation contract. All failures are recoverable:
// no batch row, no material rows and no decrement survive a failed call.
func (s *BatchService) Create(input CreateBatchInput) (*models.Batch, error) {
	if input.ProductName == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if !input.BatchSize.IsPositive() {
		return nil, fmt.Errorf("%w: batch size must be positive", ErrInvalidInput)
	}

	version, err := s.Formulations.Version(input.FormulationVersionID)
	if err != nil {
		return nil, err
	}
	if !version.Locked {
		return nil, ErrVersionNotLocked
	}

	requirements, err := CalculateRequirements(version, input.BatchSize)
	if err != nil {
		return nil, err
	}

	materialIDs := make([]types.SnowflakeID, 0, len(requirements))
	for _, req := range requirements {
		materialIDs = append(materialIDs, req.MaterialID)
	}

	levels, err := s.Stock.Levels(materialIDs)
	if err != nil {
		return nil, err
	}
	if avail := CheckAvailability(requirements, levels); !avail.Available {
		return nil, &InsufficientMaterialsError{Shortages: avail.Shortages}
	}

	startTime := input.StartTime
	if startTime.IsZero() {
		startTime = time.Now()
	}

	batch := &models.Batch{
		ID:                   types.SnowflakeID(idgen.GenerateID()),
		ProductName:          input.ProductName,
		FormulationVersionID: version.ID,
		BatchSize:            input.BatchSize,
		Unit:                 input.Unit,
		Shift:                input.Shift,
		Status:               models.BatchPlanned,
		StartTime:            startTime,
		Notes:                input.Notes,
		SupervisorID:         input.SupervisorID,
		CreatedBy:            input.SupervisorID,
		UpdatedBy:            input.SupervisorID,
	}
	for _, workerID := range input.WorkerIDs {
		batch.Workers = append(batch.Workers, models.BatchWorker{WorkerID: workerID})
	}
	for _, req := range requirements {
		batch.Materials = append(batch.Materials, models.BatchMaterial{
			MaterialID:   req.MaterialID,
			MaterialName: req.MaterialName,
			QuantityUsed: req.Quantity,
			Unit:         req.Unit,
		})
	}

	// The store re-validates sufficiency inside its transaction; the unique
	// index on batch_code is the uniqueness authority, so regenerate and
	// retry on collision.
	for attempt := 0; attempt < codeRetries; attempt++ {
		batch.BatchCode = GenerateBatchCode(input.ProductName, startTime)

		payload := TracePayload{
			BatchCode:                batch.BatchCode,
			ProductName:              input.ProductName,
			FormulationVersionNumber: version.VersionNumber,
			FormulationVersionID:     version.ID,
			BatchSize:                input.BatchSize,
			Unit:                     input.Unit,
			StartTime:                startTime,
		}
		if batch.TracePayload, err = payload.Encode(); err != nil {
			return nil, err
		}

		err = s.Batches.CreateWithDeduction(batch)
		if err == nil {
			s.checkThresholds(materialIDs)
			return batch, nil
		}
		if !errors.Is(err, ErrDuplicateBatchCode) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique batch code after %d attempts: %w", codeRetries, err)
}

// UpdateStatus validates the transition against the state machine and applies
// it under the batch's optimistic lock. Completion triggers an efficiency
// recomputation for every assigned worker.
func (s *BatchService) UpdateStatus(id types.SnowflakeID, newStatus models.BatchStatus, endTime *time.Time, notes string, updatedBy int) (*models.Batch, error) {
	batch, err := s.Batches.Get(id)
	if err != nil {
		return nil, err
	}

	if !batch.Status.CanTransitionTo(newStatus) {
		return nil, &InvalidTransitionError{From: batch.Status, To: newStatus}
	}

	if newStatus == models.BatchCompleted && endTime == nil {
		now := time.Now()
		endTime = &now
	}

	updated, err := s.Batches.UpdateStatus(id, batch.LockVersion, newStatus, endTime, notes, updatedBy)
	if err != nil {
		return nil, err
	}

	if newStatus == models.BatchCompleted {
		now := time.Now()
		for _, workerID := range updated.WorkerIDs() {
			if _, err := s.RecomputeWorker(workerID, now); err != nil {
				s.logError("UpdateStatus", fmt.Sprintf("recompute worker %s", workerID), err)
			}
		}
	}

	return updated, nil
}

// RecomputeWorker rebuilds one worker's efficiency record from history and
// upserts it. Last writer wins; the computation is deterministic for a given
// history snapshot.
func (s *BatchService) RecomputeWorker(workerID types.SnowflakeID, now time.Time) (*models.WorkerEfficiency, error) {
	history, err := s.Workers.History(workerID)
	if err != nil {
		return nil, err
	}

	rec := ComputeEfficiency(history, s.Params, now)
	if err := s.Workers.SaveEfficiency(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Resolve looks a batch up by trace code, the QR lookup path.
func (s *BatchService) Resolve(code string) (*models.Batch, error) {
	return s.Batches.GetByCode(code)
}

// checkThresholds re-reads the touched materials and alerts on any that fell
// to or under their threshold. Never fails the batch.
func (s *BatchService) checkThresholds(materialIDs []types.SnowflakeID) {
	if s.Notifier == nil {
		return
	}

	levels, err := s.Stock.Levels(materialIDs)
	if err != nil {
		s.logError("checkThresholds", "read levels", err)
		return
	}

	var low []models.Material
	for _, id := range materialIDs {
		mat, ok := levels[id]
		if !ok {
			continue
		}
		if mat.MinThreshold.IsPositive() && mat.CurrentQty.LessThanOrEqual(mat.MinThreshold) {
			low = append(low, mat)
		}
	}
	if len(low) > 0 {
		s.Notifier.NotifyLowStock(low)
	}
}

func (s *BatchService) logError(funcName, context string, err error) {
	if s.Log == nil {
		return
	}
	s.Log.WithFields(logrus.Fields{
		"module":   "batch_service",
		"funcName": funcName,
		"context":  context,
	}).Error(err.Error())
}
