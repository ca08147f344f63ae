package models

import (
	"fiber-mes/types"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BatchStatus string

const (
	BatchPlanned      BatchStatus = "planned"
	BatchInProgress   BatchStatus = "in_progress"
	BatchQualityCheck BatchStatus = "quality_check"
	BatchCompleted    BatchStatus = "completed"
	BatchCancelled    BatchStatus = "cancelled"
)

// batchTransitions is the only source of truth for legal status moves.
// Cancelled is reachable from every non-terminal state.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchPlanned:      {BatchInProgress, BatchCancelled},
	BatchInProgress:   {BatchQualityCheck, BatchCancelled},
	BatchQualityCheck: {BatchCompleted, BatchCancelled},
	BatchCompleted:    {},
	BatchCancelled:    {},
}

func ParseBatchStatus(s string) (BatchStatus, error) {
	status := BatchStatus(s)
	if _, ok := batchTransitions[status]; !ok {
		return "", fmt.Errorf("unknown batch status %q", s)
	}
	return status, nil
}

func (s BatchStatus) IsTerminal() bool {
	return len(batchTransitions[s]) == 0
}

func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	for _, allowed := range batchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Batch is one production run. Created atomically together with its material
// rows and the stock deduction; historical record, never deleted.
type Batch struct {
	ID                   types.SnowflakeID  `json:"ID" gorm:"primaryKey"`
	BatchCode            string             `json:"batch_code" gorm:"unique;not null"`
	ProductName          string             `json:"product_name" gorm:"not null"`
	FormulationVersionID types.SnowflakeID  `json:"formulation_version_id"`
	FormulationVersion   FormulationVersion `json:"formulation_version,omitempty" gorm:"foreignKey:FormulationVersionID"`
	BatchSize            decimal.Decimal    `json:"batch_size" gorm:"type:decimal(18,4)"`
	Unit                 string             `json:"unit"`
	Shift                string             `json:"shift"`
	Status               BatchStatus        `json:"status" gorm:"type:varchar(20);default:'planned'"`
	LockVersion          int                `json:"lock_version" gorm:"default:0"`
	TracePayload         string             `json:"trace_payload"`
	StartTime            time.Time          `json:"start_time"`
	EndTime              *time.Time         `json:"end_time"`
	Notes                string             `json:"notes"`
	SupervisorID         int                `json:"supervisor_id"`
	Workers              []BatchWorker      `json:"workers" gorm:"foreignKey:BatchID"`
	Materials            []BatchMaterial    `json:"materials" gorm:"foreignKey:BatchID"`
	Photos               []BatchPhoto       `json:"photos" gorm:"foreignKey:BatchID"`
	QualityChecks        []QualityCheck     `json:"quality_checks" gorm:"foreignKey:BatchID"`
	CreatedBy            int                `json:"created_by"`
	UpdatedBy            int                `json:"updated_by"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type BatchWorker struct {
	ID       uint              `json:"id" gorm:"primaryKey"`
	BatchID  types.SnowflakeID `json:"batch_id" gorm:"index:idx_batch_worker,unique"`
	WorkerID types.SnowflakeID `json:"worker_id" gorm:"index:idx_batch_worker,unique"`
}

// BatchMaterial records what was actually deducted for a batch. Immutable
// once written; doubles as the costing audit trail.
type BatchMaterial struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	BatchID      types.SnowflakeID `json:"batch_id" gorm:"index"`
	MaterialID   types.SnowflakeID `json:"material_id"`
	MaterialName string            `json:"material_name"`
	QuantityUsed decimal.Decimal   `json:"quantity_used" gorm:"type:decimal(18,4)"`
	Unit         string            `json:"unit"`
}

type BatchPhoto struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	BatchID   types.SnowflakeID `json:"batch_id" gorm:"index"`
	PhotoType string            `json:"photo_type"`
	URL       string            `json:"url"`
	Notes     string            `json:"notes"`
	CreatedBy int               `json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
}

type QualityCheck struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	BatchID   types.SnowflakeID `json:"batch_id" gorm:"index"`
	CheckType string            `json:"check_type"`
	Result    string            `json:"result"`
	Notes     string            `json:"notes"`
	CheckedBy int               `json:"checked_by"`
	CreatedAt time.Time         `json:"created_at"`
}

// WorkerIDs returns the assigned worker ids in insertion order.
func (b *Batch) WorkerIDs() []types.SnowflakeID {
	ids := make([]types.SnowflakeID, 0, len(b.Workers))
	for _, w := range b.Workers {
		ids = append(ids, w.WorkerID)
	}
	return ids
}
