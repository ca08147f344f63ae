package services

import (
	"time"

	"fiber-mes/models"
)

// DefaultOnTimeThreshold is the fixed duration under which a completed batch
// counts as on time. It is deliberately not derived from batch size or
// formulation; override it through EfficiencyParams where that matters.
const DefaultOnTimeThreshold = 12 * time.Hour

type EfficiencyParams struct {
	OnTimeThreshold   time.Duration
	OutputWeight      float64
	PunctualityWeight float64
	FeedbackWeight    float64
}

func DefaultEfficiencyParams() EfficiencyParams {
	return EfficiencyParams{
		OnTimeThreshold:   DefaultOnTimeThreshold,
		OutputWeight:      0.4,
		PunctualityWeight: 0.4,
		FeedbackWeight:    0.2,
	}
}

// WorkerHistory is everything the scoring engine reads: the worker record,
// the completed batches the worker was assigned to, and the full feedback
// trail.
type WorkerHistory struct {
	Worker           models.Worker
	CompletedBatches []models.Batch
	Feedback         []models.WorkerFeedback
}

// ComputeEfficiency rebuilds the worker's efficiency record from scratch.
// Pure: the same history, params and evaluation time always produce the same
// record, so recomputation is idempotent.
func ComputeEfficiency(h WorkerHistory, p EfficiencyParams, now time.Time) models.WorkerEfficiency {
	rec := models.WorkerEfficiency{
		WorkerID:               h.Worker.ID,
		StandardOutputPerShift: h.Worker.StandardOutputPerShift,
		LastCalculated:         now,
	}

	rec.TotalBatchesCompleted = len(h.CompletedBatches)

	// Output efficiency: average completed batch size against the configured
	// standard output. Zero standard output is a defined degenerate input
	// (many workers have none configured yet), never an error.
	if rec.TotalBatchesCompleted > 0 && h.Worker.StandardOutputPerShift.IsPositive() {
		totalSize := 0.0
		for _, b := range h.CompletedBatches {
			totalSize += b.BatchSize.InexactFloat64()
		}
		avgSize := totalSize / float64(rec.TotalBatchesCompleted)
		std := h.Worker.StandardOutputPerShift.InexactFloat64()
		rec.OutputEfficiency = clamp(avgSize/std*100, 0, 100)
	}

	// Punctuality: share of completed batches finished within the threshold.
	// A completed batch without an end time has unknown duration and does not
	// count as on time.
	if rec.TotalBatchesCompleted > 0 {
		for _, b := range h.CompletedBatches {
			if b.EndTime != nil && b.EndTime.Sub(b.StartTime) <= p.OnTimeThreshold {
				rec.OnTimeBatches++
			}
		}
		rec.PunctualityScore = clamp(float64(rec.OnTimeBatches)/float64(rec.TotalBatchesCompleted)*100, 0, 100)
	}

	// Feedback: neutral 50 with no entries, otherwise positive minus negative
	// scaled around the midpoint.
	positive, negative := 0, 0
	for _, fb := range h.Feedback {
		switch fb.Tag {
		case models.FeedbackExcellent:
			rec.ExcellentCount++
			positive++
		case models.FeedbackGood:
			rec.GoodCount++
			positive++
		case models.FeedbackNeedsImprovement:
			rec.NeedsImprovementCount++
			negative++
		case models.FeedbackLate:
			rec.LateCount++
			negative++
		}
	}
	total := positive + negative
	if total == 0 {
		rec.FeedbackScore = 50
	} else {
		rec.FeedbackScore = clamp(float64(positive-negative)/float64(total)*50+50, 0, 100)
	}

	rec.CompositeScore = p.OutputWeight*rec.OutputEfficiency +
		p.PunctualityWeight*rec.PunctualityScore +
		p.FeedbackWeight*rec.FeedbackScore
	rec.EfficiencyRating = StarRating(rec.CompositeScore)

	return rec
}

// StarRating buckets a composite score into 1-5 stars. The boundaries are
// inclusive on the lower bucket: exactly 60 is still 3 stars.
func StarRating(score float64) int {
	switch {
	case score <= 20:
		return 1
	case score <= 40:
		return 2
	case score <= 60:
		return 3
	case score <= 80:
		return 4
	default:
		return 5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
