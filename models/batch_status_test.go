package models

import "testing"

func TestBatchStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to BatchStatus }{
		{BatchPlanned, BatchInProgress},
		{BatchPlanned, BatchCancelled},
		{BatchInProgress, BatchQualityCheck},
		{BatchInProgress, BatchCancelled},
		{BatchQualityCheck, BatchCompleted},
		{BatchQualityCheck, BatchCancelled},
	}
	for _, c := range allowed {
		if !c.from.CanTransitionTo(c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	forbidden := []struct{ from, to BatchStatus }{
		{BatchPlanned, BatchQualityCheck},
		{BatchPlanned, BatchCompleted},
		{BatchInProgress, BatchCompleted},
		{BatchInProgress, BatchPlanned},
		{BatchQualityCheck, BatchInProgress},
		{BatchCompleted, BatchInProgress},
		{BatchCompleted, BatchCancelled},
		{BatchCancelled, BatchPlanned},
		{BatchCancelled, BatchCompleted},
	}
	for _, c := range forbidden {
		if c.from.CanTransitionTo(c.to) {
			t.Errorf("%s -> %s should be rejected", c.from, c.to)
		}
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	if !BatchCompleted.IsTerminal() || !BatchCancelled.IsTerminal() {
		t.Error("completed and cancelled must be terminal")
	}
	for _, s := range []BatchStatus{BatchPlanned, BatchInProgress, BatchQualityCheck} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestParseBatchStatus(t *testing.T) {
	for _, s := range []string{"planned", "in_progress", "quality_check", "completed", "cancelled"} {
		if _, err := ParseBatchStatus(s); err != nil {
			t.Errorf("ParseBatchStatus(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "Planned", "done", "in progress"} {
		if _, err := ParseBatchStatus(s); err == nil {
			t.Errorf("ParseBatchStatus(%q) should fail", s)
		}
	}
}

func TestWorkerIDsOrder(t *testing.T) {
	b := Batch{Workers: []BatchWorker{{WorkerID: 3}, {WorkerID: 1}, {WorkerID: 2}}}
	ids := b.WorkerIDs()
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("WorkerIDs() = %v, want insertion order [3 1 2]", ids)
	}
}
