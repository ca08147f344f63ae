package services_test

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/models"
	"fiber-mes/repositories/memory"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	idgen.Init()
	os.Exit(m.Run())
}

// newFixture wires a service against a fresh in-memory store with one
// material, one locked single-ingredient formulation version and one worker.
func newFixture(t *testing.T, stock int64) (*services.BatchService, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.AddMaterial(models.Material{
		ID:         1,
		Code:       "FLR-001",
		Name:       "flour",
		Unit:       "kg",
		CurrentQty: decimal.NewFromInt(stock),
	})
	store.AddVersion(models.FormulationVersion{
		ID:            10,
		FormulationID: 100,
		VersionNumber: 1,
		Locked:        true,
		Ingredients: []models.Ingredient{
			{MaterialID: 1, MaterialName: "flour", Percentage: decimal.NewFromInt(100), Unit: "kg"},
		},
	})
	store.AddWorker(models.Worker{
		ID:                     20,
		Name:                   "Ana",
		EmployeeCode:           "W-020",
		StandardOutputPerShift: decimal.NewFromInt(100),
	})

	return services.NewBatchService(store, store, store, store), store
}

func createInput(size int64) services.CreateBatchInput {
	return services.CreateBatchInput{
		ProductName:          "Chocolate Cake",
		FormulationVersionID: 10,
		BatchSize:            decimal.NewFromInt(size),
		Unit:                 "kg",
		WorkerIDs:            []types.SnowflakeID{20},
		Shift:                "morning",
		StartTime:            time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestCreateBatchDeductsStock(t *testing.T) {
	svc, store := newFixture(t, 100)

	batch, err := svc.Create(createInput(60))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if batch.BatchCode == "" {
		t.Error("batch code not assigned")
	}
	if batch.Status != models.BatchPlanned {
		t.Errorf("status = %s, want planned", batch.Status)
	}
	if len(batch.Materials) != 1 || !batch.Materials[0].QuantityUsed.Equal(decimal.NewFromInt(60)) {
		t.Errorf("unexpected material rows: %+v", batch.Materials)
	}

	mat, _ := store.Material(1)
	if !mat.CurrentQty.Equal(decimal.NewFromInt(40)) {
		t.Errorf("stock after deduction = %s, want 40", mat.CurrentQty)
	}

	payload, err := services.DecodeTracePayload(batch.TracePayload)
	if err != nil {
		t.Fatalf("decode trace payload: %v", err)
	}
	if payload.BatchCode != batch.BatchCode {
		t.Errorf("trace payload code = %s, want %s", payload.BatchCode, batch.BatchCode)
	}
}

func TestCreateBatchInsufficientStockChangesNothing(t *testing.T) {
	svc, store := newFixture(t, 10)

	_, err := svc.Create(createInput(15))
	var insufficient *services.InsufficientMaterialsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientMaterialsError", err)
	}
	if len(insufficient.Shortages) != 1 {
		t.Fatalf("got %d shortages, want 1", len(insufficient.Shortages))
	}
	s := insufficient.Shortages[0]
	if !s.Required.Equal(decimal.NewFromInt(15)) || !s.Available.Equal(decimal.NewFromInt(10)) {
		t.Errorf("shortage = %+v, want required 15 available 10", s)
	}

	mat, _ := store.Material(1)
	if !mat.CurrentQty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("stock after failed create = %s, want untouched 10", mat.CurrentQty)
	}
}

func TestCreateBatchUnlockedVersionRejected(t *testing.T) {
	svc, store := newFixture(t, 100)
	store.AddVersion(models.FormulationVersion{
		ID:            11,
		FormulationID: 100,
		VersionNumber: 2,
		Locked:        false,
		Ingredients: []models.Ingredient{
			{MaterialID: 1, MaterialName: "flour", Percentage: decimal.NewFromInt(100), Unit: "kg"},
		},
	})

	input := createInput(10)
	input.FormulationVersionID = 11
	if _, err := svc.Create(input); !errors.Is(err, services.ErrVersionNotLocked) {
		t.Errorf("got %v, want ErrVersionNotLocked", err)
	}
}

func TestCreateBatchConcurrentOnlyOneWins(t *testing.T) {
	// Stock 10, two concurrent batches each needing 6: exactly one may land.
	svc, store := newFixture(t, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(createInput(6))
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *services.InsufficientMaterialsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected error kind: %v", err)
		}
		failed++
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("succeeded=%d failed=%d, want exactly one of each", succeeded, failed)
	}

	mat, _ := store.Material(1)
	if !mat.CurrentQty.Equal(decimal.NewFromInt(4)) {
		t.Errorf("final stock = %s, want 4", mat.CurrentQty)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	svc, _ := newFixture(t, 100)

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateStatus(batch.ID, models.BatchCompleted, nil, "", 1)
	var invalid *services.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != models.BatchPlanned || invalid.To != models.BatchCompleted {
		t.Errorf("transition error = %+v", invalid)
	}
}

func TestUpdateStatusWalkAndRecompute(t *testing.T) {
	svc, store := newFixture(t, 100)

	batch, err := svc.Create(createInput(80))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	steps := []models.BatchStatus{models.BatchInProgress, models.BatchQualityCheck, models.BatchCompleted}
	for _, status := range steps {
		if batch, err = svc.UpdateStatus(batch.ID, status, nil, "", 1); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
	if batch.EndTime == nil {
		t.Error("completion did not default the end time")
	}

	rec, ok := store.Efficiency(20)
	if !ok {
		t.Fatal("completion did not recompute the worker's efficiency")
	}
	if rec.TotalBatchesCompleted != 1 {
		t.Errorf("completed batches = %d, want 1", rec.TotalBatchesCompleted)
	}
	if rec.OutputEfficiency != 80 {
		t.Errorf("output efficiency = %v, want 80", rec.OutputEfficiency)
	}
}

func TestUpdateStatusStaleLockVersionLoses(t *testing.T) {
	svc, store := newFixture(t, 100)

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	staleVersion := batch.LockVersion

	if _, err = svc.UpdateStatus(batch.ID, models.BatchInProgress, nil, "", 1); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// A writer still holding the pre-transition lock version must lose, not
	// silently overwrite.
	_, err = store.UpdateStatus(batch.ID, staleVersion, models.BatchCancelled, nil, "", 2)
	if !errors.Is(err, services.ErrConcurrentModification) {
		t.Fatalf("stale lock version: got %v, want ErrConcurrentModification", err)
	}

	current, err := store.Get(batch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != models.BatchInProgress {
		t.Errorf("status = %s, want in_progress preserved", current.Status)
	}
}

func TestUpdateStatusConcurrentOnlyOneWins(t *testing.T) {
	svc, store := newFixture(t, 100)

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two writers race the same observed lock version; exactly one may land.
	targets := []models.BatchStatus{models.BatchInProgress, models.BatchCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, status := range targets {
		wg.Add(1)
		go func(i int, status models.BatchStatus) {
			defer wg.Done()
			_, errs[i] = store.UpdateStatus(batch.ID, batch.LockVersion, status, nil, "", 1)
		}(i, status)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, services.ErrConcurrentModification):
			lost++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("won=%d lost=%d, want exactly one of each", won, lost)
	}

	current, err := store.Get(batch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.LockVersion != batch.LockVersion+1 {
		t.Errorf("lock version = %d, want single increment to %d", current.LockVersion, batch.LockVersion+1)
	}
}

func TestUpdateStatusTerminalStatesFrozen(t *testing.T) {
	svc, _ := newFixture(t, 100)

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err = svc.UpdateStatus(batch.ID, models.BatchCancelled, nil, "spill", 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = svc.UpdateStatus(batch.ID, models.BatchInProgress, nil, "", 1)
	var invalid *services.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Errorf("reviving a cancelled batch: got %v, want InvalidTransitionError", err)
	}
}

func TestResolveByCode(t *testing.T) {
	svc, _ := newFixture(t, 100)

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.Resolve(batch.BatchCode)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if found.ID != batch.ID {
		t.Errorf("resolved batch %s, want %s", found.ID, batch.ID)
	}

	if _, err := svc.Resolve("NOPE-000-000000"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown code: got %v, want ErrNotFound", err)
	}
}

// collidingStore reports a code collision a fixed number of times before
// delegating, to exercise the regeneration retry.
type collidingStore struct {
	*memory.Store
	remaining int
}

func (c *collidingStore) CreateWithDeduction(batch *models.Batch) error {
	if c.remaining > 0 {
		c.remaining--
		return services.ErrDuplicateBatchCode
	}
	return c.Store.CreateWithDeduction(batch)
}

func TestCreateBatchRetriesOnCodeCollision(t *testing.T) {
	svc, store := newFixture(t, 100)
	svc.Batches = &collidingStore{Store: store, remaining: 2}

	batch, err := svc.Create(createInput(10))
	if err != nil {
		t.Fatalf("create after collisions: %v", err)
	}
	if batch.BatchCode == "" {
		t.Error("batch code not assigned")
	}
}

func TestCreateBatchGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, store := newFixture(t, 100)
	svc.Batches = &collidingStore{Store: store, remaining: 100}

	if _, err := svc.Create(createInput(10)); err == nil {
		t.Fatal("expected an error after exhausting code retries")
	}

	mat, _ := store.Material(1)
	if !mat.CurrentQty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stock after failed create = %s, want untouched 100", mat.CurrentQty)
	}
}

func TestRecomputeWorkerWithFeedback(t *testing.T) {
	svc, store := newFixture(t, 1000)

	batch, err := svc.Create(createInput(100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, status := range []models.BatchStatus{models.BatchInProgress, models.BatchQualityCheck, models.BatchCompleted} {
		if batch, err = svc.UpdateStatus(batch.ID, status, nil, "", 1); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	store.AddFeedback(models.WorkerFeedback{WorkerID: 20, BatchID: batch.ID, Tag: models.FeedbackExcellent})
	store.AddFeedback(models.WorkerFeedback{WorkerID: 20, BatchID: batch.ID, Tag: models.FeedbackGood})

	rec, err := svc.RecomputeWorker(20, time.Now())
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if rec.FeedbackScore != 100 {
		t.Errorf("feedback score = %v, want 100", rec.FeedbackScore)
	}
	if rec.ExcellentCount != 1 || rec.GoodCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", rec.ExcellentCount, rec.GoodCount)
	}
}
