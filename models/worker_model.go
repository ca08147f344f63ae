package models

import (
	"fiber-mes/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Feedback tags as supervisors enter them.
const (
	FeedbackExcellent        = "Excellent"
	FeedbackGood             = "Good"
	FeedbackNeedsImprovement = "Needs Improvement"
	FeedbackLate             = "Late"
)

type Worker struct {
	ID                     types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	Name                   string            `json:"name" gorm:"not null"`
	EmployeeCode           string            `json:"employee_code" gorm:"unique"`
	Shift                  string            `json:"shift"`
	StandardOutputPerShift decimal.Decimal   `json:"standard_output_per_shift" gorm:"type:decimal(18,4);default:0"`
	CreatedBy              int               `json:"created_by"`
	UpdatedBy              int               `json:"updated_by"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	DeletedAt              gorm.DeletedAt    `json:"-" gorm:"index"`
}

// WorkerFeedback is append only.
type WorkerFeedback struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	WorkerID     types.SnowflakeID `json:"worker_id" gorm:"index"`
	BatchID      types.SnowflakeID `json:"batch_id"`
	Tag          string            `json:"tag" gorm:"not null"`
	Comment      string            `json:"comment"`
	SupervisorID int               `json:"supervisor_id"`
	CreatedAt    time.Time         `json:"created_at"`
}

// WorkerEfficiency is a derived snapshot, rebuilt in full from batch and
// feedback history on every recalculation. Safe to drop and recompute.
type WorkerEfficiency struct {
	WorkerID               types.SnowflakeID `json:"worker_id" gorm:"primaryKey"`
	StandardOutputPerShift decimal.Decimal   `json:"standard_output_per_shift" gorm:"type:decimal(18,4)"`
	OutputEfficiency       float64           `json:"output_efficiency"`
	PunctualityScore       float64           `json:"punctuality_score"`
	FeedbackScore          float64           `json:"feedback_score"`
	CompositeScore         float64           `json:"composite_score"`
	EfficiencyRating       int               `json:"efficiency_rating"`
	TotalBatchesCompleted  int               `json:"total_batches_completed"`
	OnTimeBatches          int               `json:"on_time_batches"`
	ExcellentCount         int               `json:"excellent_count"`
	GoodCount              int               `json:"good_count"`
	NeedsImprovementCount  int               `json:"needs_improvement_count"`
	LateCount              int               `json:"late_count"`
	LastCalculated         time.Time         `json:"last_calculated"`
}
