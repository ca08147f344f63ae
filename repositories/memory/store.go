// Package memory provides an in-memory implementation of the batch service's
// store interfaces, used by tests and useful as a reference for the
// transactional contract the GORM repositories must honour.
package memory

import (
	"sync"
	"time"

	"fiber-mes/models"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
)

// Store keeps every table behind one mutex so that batch creation observes
// the same check-then-deduct atomicity the SQL transaction provides.
type Store struct {
	mu           sync.Mutex
	materials    map[types.SnowflakeID]models.Material
	versions     map[types.SnowflakeID]models.FormulationVersion
	batches      map[types.SnowflakeID]models.Batch
	byCode       map[string]types.SnowflakeID
	workers      map[types.SnowflakeID]models.Worker
	feedback     []models.WorkerFeedback
	efficiencies map[types.SnowflakeID]models.WorkerEfficiency
}

func NewStore() *Store {
	return &Store{
		materials:    make(map[types.SnowflakeID]models.Material),
		versions:     make(map[types.SnowflakeID]models.FormulationVersion),
		batches:      make(map[types.SnowflakeID]models.Batch),
		byCode:       make(map[string]types.SnowflakeID),
		workers:      make(map[types.SnowflakeID]models.Worker),
		efficiencies: make(map[types.SnowflakeID]models.WorkerEfficiency),
	}
}

func (s *Store) AddMaterial(m models.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ID] = m
}

func (s *Store) Material(id types.SnowflakeID) (models.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	return m, ok
}

func (s *Store) AddVersion(v models.FormulationVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.ID] = v
}

func (s *Store) AddWorker(w models.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.ID] = w
}

func (s *Store) AddFeedback(fb models.WorkerFeedback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, fb)
}

// Levels implements services.StockLedger.
func (s *Store) Levels(ids []types.SnowflakeID) (map[types.SnowflakeID]models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make(map[types.SnowflakeID]models.Material, len(ids))
	for _, id := range ids {
		if m, ok := s.materials[id]; ok {
			levels[id] = m
		}
	}
	return levels, nil
}

// Version implements services.FormulationSource.
func (s *Store) Version(id types.SnowflakeID) (*models.FormulationVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &v, nil
}

// CreateWithDeduction implements services.BatchStore. All checks and all
// writes happen under one lock: either the batch and every decrement land, or
// nothing does.
func (s *Store) CreateWithDeduction(batch *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[batch.BatchCode]; exists {
		return services.ErrDuplicateBatchCode
	}

	var shortages []services.Shortage
	for _, m := range batch.Materials {
		available := decimal.Zero
		if mat, ok := s.materials[m.MaterialID]; ok {
			available = mat.CurrentQty
		}
		if available.LessThan(m.QuantityUsed) {
			shortages = append(shortages, services.Shortage{
				MaterialID:   m.MaterialID,
				MaterialName: m.MaterialName,
				Required:     m.QuantityUsed,
				Available:    available,
				Unit:         m.Unit,
			})
		}
	}
	if len(shortages) > 0 {
		return &services.InsufficientMaterialsError{Shortages: shortages}
	}

	for _, m := range batch.Materials {
		mat := s.materials[m.MaterialID]
		mat.CurrentQty = mat.CurrentQty.Sub(m.QuantityUsed)
		s.materials[m.MaterialID] = mat
	}

	for i := range batch.Materials {
		batch.Materials[i].BatchID = batch.ID
	}
	for i := range batch.Workers {
		batch.Workers[i].BatchID = batch.ID
	}

	s.batches[batch.ID] = *batch
	s.byCode[batch.BatchCode] = batch.ID
	return nil
}

// Get implements services.BatchStore.
func (s *Store) Get(id types.SnowflakeID) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &b, nil
}

// GetByCode implements services.BatchStore.
func (s *Store) GetByCode(code string) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, services.ErrNotFound
	}
	b := s.batches[id]
	return &b, nil
}

// UpdateStatus implements services.BatchStore with the same optimistic-lock
// semantics as the SQL store.
func (s *Store) UpdateStatus(id types.SnowflakeID, expectedLockVersion int, status models.BatchStatus, endTime *time.Time, notes string, updatedBy int) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	if b.LockVersion != expectedLockVersion {
		return nil, services.ErrConcurrentModification
	}

	b.Status = status
	b.LockVersion++
	b.UpdatedBy = updatedBy
	if endTime != nil {
		b.EndTime = endTime
	}
	if notes != "" {
		b.Notes = notes
	}
	s.batches[id] = b
	return &b, nil
}

// History implements services.WorkerSource.
func (s *Store) History(workerID types.SnowflakeID) (services.WorkerHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	worker, ok := s.workers[workerID]
	if !ok {
		return services.WorkerHistory{}, services.ErrNotFound
	}

	history := services.WorkerHistory{Worker: worker}
	for _, b := range s.batches {
		if b.Status != models.BatchCompleted {
			continue
		}
		for _, bw := range b.Workers {
			if bw.WorkerID == workerID {
				history.CompletedBatches = append(history.CompletedBatches, b)
				break
			}
		}
	}
	for _, fb := range s.feedback {
		if fb.WorkerID == workerID {
			history.Feedback = append(history.Feedback, fb)
		}
	}
	return history, nil
}

// SaveEfficiency implements services.WorkerSource.
func (s *Store) SaveEfficiency(rec *models.WorkerEfficiency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.efficiencies[rec.WorkerID] = *rec
	return nil
}

func (s *Store) Efficiency(workerID types.SnowflakeID) (models.WorkerEfficiency, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.efficiencies[workerID]
	return rec, ok
}
