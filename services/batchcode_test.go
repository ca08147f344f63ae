package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGenerateBatchCodeFormat(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

	code := GenerateBatchCode("Chocolate Cake", now)
	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		t.Fatalf("code %q: want 3 dash-separated parts", code)
	}
	if parts[0] != "CHO" {
		t.Errorf("prefix = %q, want CHO", parts[0])
	}
	if len(parts[2]) != 6 {
		t.Errorf("suffix %q: want 6 characters", parts[2])
	}
	if code != strings.ToUpper(code) {
		t.Errorf("code %q is not uppercase", code)
	}
}

func TestCodePrefixPadding(t *testing.T) {
	cases := map[string]string{
		"Chocolate": "CHO",
		"ab":        "ABX",
		"x":         "XXX",
		"":          "XXX",
		"42 Gel":    "GEL",
		"a b c d":   "ABC",
	}
	for name, want := range cases {
		if got := codePrefix(name); got != want {
			t.Errorf("codePrefix(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestGenerateBatchCodeUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		code := GenerateBatchCode("Chocolate Cake", now)
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code after %d generations: %s", i, code)
		}
		seen[code] = struct{}{}
	}
}

func TestTracePayloadRoundTrip(t *testing.T) {
	payload := TracePayload{
		BatchCode:                "CHO-ABC123-XYZ789",
		ProductName:              "Chocolate Cake",
		FormulationVersionNumber: 3,
		FormulationVersionID:     42,
		BatchSize:                decimal.NewFromInt(500),
		Unit:                     "kg",
		StartTime:                time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
	}

	raw, err := payload.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeTracePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.BatchCode != payload.BatchCode ||
		decoded.FormulationVersionID != payload.FormulationVersionID ||
		!decoded.BatchSize.Equal(payload.BatchSize) ||
		!decoded.StartTime.Equal(payload.StartTime) {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
