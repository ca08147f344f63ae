package services

import (
	"reflect"
	"testing"
	"time"

	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
)

func TestStarRatingBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{0, 1},
		{20, 1},
		{20.0001, 2},
		{40, 2},
		{40.0001, 3},
		{60, 3},
		{60.0001, 4},
		{80, 4},
		{80.0001, 5},
		{100, 5},
	}
	for _, c := range cases {
		if got := StarRating(c.score); got != c.want {
			t.Errorf("StarRating(%v) = %d, want %d", c.score, got, c.want)
		}
	}
}

func completedBatch(size float64, start time.Time, duration time.Duration) models.Batch {
	end := start.Add(duration)
	return models.Batch{
		BatchSize: decimal.NewFromFloat(size),
		Status:    models.BatchCompleted,
		StartTime: start,
		EndTime:   &end,
	}
}

func TestComputeEfficiencyNoFeedbackIsNeutral(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker: models.Worker{
			ID:                     1,
			StandardOutputPerShift: decimal.NewFromInt(100),
		},
		CompletedBatches: []models.Batch{completedBatch(100, start, 8*time.Hour)},
	}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.FeedbackScore != 50 {
		t.Errorf("feedback score with no entries = %v, want 50", rec.FeedbackScore)
	}
}

func TestComputeEfficiencyCompositeAtExactBoundary(t *testing.T) {
	// Output 100, punctuality 50, feedback 0: composite lands exactly on 60.
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker: models.Worker{
			ID:                     7,
			StandardOutputPerShift: decimal.NewFromInt(100),
		},
		CompletedBatches: []models.Batch{
			completedBatch(100, start, 8*time.Hour),
			completedBatch(100, start, 20*time.Hour),
		},
		Feedback: []models.WorkerFeedback{
			{WorkerID: 7, Tag: models.FeedbackLate},
			{WorkerID: 7, Tag: models.FeedbackNeedsImprovement},
		},
	}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.OutputEfficiency != 100 {
		t.Fatalf("output efficiency = %v, want 100", rec.OutputEfficiency)
	}
	if rec.PunctualityScore != 50 {
		t.Fatalf("punctuality score = %v, want 50", rec.PunctualityScore)
	}
	if rec.FeedbackScore != 0 {
		t.Fatalf("feedback score = %v, want 0", rec.FeedbackScore)
	}
	if rec.CompositeScore != 60 {
		t.Fatalf("composite score = %v, want 60", rec.CompositeScore)
	}
	if rec.EfficiencyRating != 3 {
		t.Errorf("rating at composite 60 = %d, want 3", rec.EfficiencyRating)
	}
}

func TestComputeEfficiencyIdempotent(t *testing.T) {
	start := time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker: models.Worker{
			ID:                     3,
			StandardOutputPerShift: decimal.NewFromInt(80),
		},
		CompletedBatches: []models.Batch{
			completedBatch(60, start, 10*time.Hour),
			completedBatch(90, start.Add(24*time.Hour), 14*time.Hour),
		},
		Feedback: []models.WorkerFeedback{
			{WorkerID: 3, Tag: models.FeedbackExcellent},
			{WorkerID: 3, Tag: models.FeedbackLate},
		},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := ComputeEfficiency(h, DefaultEfficiencyParams(), now)
	second := ComputeEfficiency(h, DefaultEfficiencyParams(), now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputation diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestComputeEfficiencyPunctualityThreshold(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker: models.Worker{ID: 5, StandardOutputPerShift: decimal.NewFromInt(100)},
		CompletedBatches: []models.Batch{
			completedBatch(100, start, 11*time.Hour),
			completedBatch(100, start, 12*time.Hour), // exactly at threshold counts
			completedBatch(100, start, 13*time.Hour),
		},
	}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.OnTimeBatches != 2 {
		t.Errorf("on-time batches = %d, want 2", rec.OnTimeBatches)
	}

	params := DefaultEfficiencyParams()
	params.OnTimeThreshold = 14 * time.Hour
	rec = ComputeEfficiency(h, params, time.Now())
	if rec.OnTimeBatches != 3 {
		t.Errorf("on-time batches with raised threshold = %d, want 3", rec.OnTimeBatches)
	}
}

func TestComputeEfficiencyMissingEndTimeNotOnTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker: models.Worker{ID: 9, StandardOutputPerShift: decimal.NewFromInt(100)},
		CompletedBatches: []models.Batch{
			{BatchSize: decimal.NewFromInt(100), Status: models.BatchCompleted, StartTime: start},
		},
	}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.OnTimeBatches != 0 {
		t.Errorf("batch without end time counted on time")
	}
}

func TestComputeEfficiencyZeroStandardOutput(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h := WorkerHistory{
		Worker:           models.Worker{ID: 11},
		CompletedBatches: []models.Batch{completedBatch(100, start, 8*time.Hour)},
	}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.OutputEfficiency != 0 {
		t.Errorf("output efficiency with zero standard = %v, want 0", rec.OutputEfficiency)
	}
	if rec.CompositeScore != 50 {
		// punctuality 100, feedback 50: 0.4*0 + 0.4*100 + 0.2*50
		t.Errorf("composite score = %v, want 50", rec.CompositeScore)
	}
}

func TestComputeEfficiencyNoHistory(t *testing.T) {
	h := WorkerHistory{Worker: models.Worker{ID: types.SnowflakeID(13)}}

	rec := ComputeEfficiency(h, DefaultEfficiencyParams(), time.Now())
	if rec.OutputEfficiency != 0 || rec.PunctualityScore != 0 {
		t.Errorf("scores without history = %v/%v, want 0/0", rec.OutputEfficiency, rec.PunctualityScore)
	}
	if rec.FeedbackScore != 50 {
		t.Errorf("feedback score = %v, want 50", rec.FeedbackScore)
	}
	if rec.EfficiencyRating != 1 {
		// composite 10 falls in the first bucket
		t.Errorf("rating = %d, want 1", rec.EfficiencyRating)
	}
}
