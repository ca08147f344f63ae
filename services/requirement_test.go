package services

import (
	"errors"
	"testing"

	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
)

func lockedVersion(percentages ...float64) *models.FormulationVersion {
	v := &models.FormulationVersion{ID: 1, VersionNumber: 1, Locked: true}
	for i, p := range percentages {
		v.Ingredients = append(v.Ingredients, models.Ingredient{
			MaterialID:   types.SnowflakeID(i + 1),
			MaterialName: "material",
			Percentage:   decimal.NewFromFloat(p),
			Unit:         "kg",
			Position:     i,
		})
	}
	return v
}

func TestCalculateRequirementsProportional(t *testing.T) {
	version := lockedVersion(60, 30, 10)
	batchSize := decimal.NewFromInt(500)

	reqs, err := CalculateRequirements(version, batchSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("got %d requirements, want 3", len(reqs))
	}

	want := []string{"300", "150", "50"}
	for i, req := range reqs {
		if req.Quantity.String() != want[i] {
			t.Errorf("requirement %d = %s, want %s", i, req.Quantity, want[i])
		}
	}
}

func TestCalculateRequirementsFractional(t *testing.T) {
	version := lockedVersion(33.5)
	reqs, err := CalculateRequirements(version, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reqs[0].Quantity.Equal(decimal.NewFromInt(67)) {
		t.Errorf("requirement = %s, want 67", reqs[0].Quantity)
	}
}

func TestCalculateRequirementsRejectsBadInput(t *testing.T) {
	version := lockedVersion(100)

	if _, err := CalculateRequirements(nil, decimal.NewFromInt(10)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil version: got %v, want ErrInvalidInput", err)
	}
	if _, err := CalculateRequirements(version, decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero batch size: got %v, want ErrInvalidInput", err)
	}
	if _, err := CalculateRequirements(version, decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative batch size: got %v, want ErrInvalidInput", err)
	}

	unlocked := lockedVersion(100)
	unlocked.Locked = false
	if _, err := CalculateRequirements(unlocked, decimal.NewFromInt(10)); !errors.Is(err, ErrVersionNotLocked) {
		t.Errorf("unlocked version: got %v, want ErrVersionNotLocked", err)
	}
}

func TestCheckAvailabilityReportsShortages(t *testing.T) {
	reqs := []Requirement{
		{MaterialID: 1, MaterialName: "flour", Quantity: decimal.NewFromInt(300), Unit: "kg"},
		{MaterialID: 2, MaterialName: "sugar", Quantity: decimal.NewFromInt(150), Unit: "kg"},
	}
	levels := map[types.SnowflakeID]models.Material{
		1: {ID: 1, Name: "flour", CurrentQty: decimal.NewFromInt(1000)},
		2: {ID: 2, Name: "sugar", CurrentQty: decimal.NewFromInt(100)},
	}

	result := CheckAvailability(reqs, levels)
	if result.Available {
		t.Fatal("expected availability check to fail")
	}
	if len(result.Shortages) != 1 {
		t.Fatalf("got %d shortages, want 1", len(result.Shortages))
	}
	s := result.Shortages[0]
	if s.MaterialID != 2 || !s.Available.Equal(decimal.NewFromInt(100)) || !s.Required.Equal(decimal.NewFromInt(150)) {
		t.Errorf("unexpected shortage: %+v", s)
	}
}

func TestCheckAvailabilityMissingMaterialIsZero(t *testing.T) {
	reqs := []Requirement{
		{MaterialID: 99, MaterialName: "salt", Quantity: decimal.NewFromInt(10), Unit: "kg"},
	}

	result := CheckAvailability(reqs, map[types.SnowflakeID]models.Material{})
	if result.Available {
		t.Fatal("missing material should count as zero available")
	}
	if !result.Shortages[0].Available.IsZero() {
		t.Errorf("available = %s, want 0", result.Shortages[0].Available)
	}
}

func TestCheckAvailabilityExactMatchPasses(t *testing.T) {
	reqs := []Requirement{
		{MaterialID: 1, Quantity: decimal.NewFromInt(100), Unit: "kg"},
	}
	levels := map[types.SnowflakeID]models.Material{
		1: {ID: 1, CurrentQty: decimal.NewFromInt(100)},
	}

	if result := CheckAvailability(reqs, levels); !result.Available {
		t.Errorf("exact stock should satisfy the requirement: %+v", result.Shortages)
	}
}
