package trust

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func signalByID(t *testing.T, signals []Signal, id string) Signal {
	t.Helper()
	for _, s := range signals {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("signal %q not emitted", id)
	return Signal{}
}

func hasSignal(signals []Signal, id string) bool {
	for _, s := range signals {
		if s.ID == id {
			return true
		}
	}
	return false
}

func TestNormalizeMappingRules(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	in := AssetInputs{
		OpticalMatch:    ptr(0.98),
		SerialMatch:     ptr(true),
		CustodyEvents:   ptr(8),
		CustodyGaps:     ptr(false),
		ConditionRating: "B",
		MarketVolume:    ptr(50_000.0),
		TamperEvents:    2,
		GeoMismatch:     true,
	}
	signals := Normalize(in, now)

	optical := signalByID(t, signals, SignalOpticalMatch)
	if optical.Value != 0.98 || optical.Confidence != 0.95 {
		t.Fatalf("optical: got value=%v confidence=%v", optical.Value, optical.Confidence)
	}

	custody := signalByID(t, signals, SignalCustodyIntegrity)
	if custody.Value != 1.0 || custody.Confidence != 1.0 {
		t.Fatalf("custody: got value=%v confidence=%v", custody.Value, custody.Confidence)
	}

	depth := signalByID(t, signals, SignalMarketDepth)
	if depth.Value != 0.7 || depth.Confidence != 0.8 {
		t.Fatalf("market depth: got value=%v confidence=%v", depth.Value, depth.Confidence)
	}

	tamper := signalByID(t, signals, SignalTamperDetected)
	if tamper.Value != 1.0 || tamper.Confidence != 1.0 {
		t.Fatalf("tamper: got value=%v confidence=%v", tamper.Value, tamper.Confidence)
	}

	geo := signalByID(t, signals, SignalGeoMismatch)
	if geo.Value != 1.0 || geo.Confidence != 0.9 {
		t.Fatalf("geo: got value=%v confidence=%v", geo.Value, geo.Confidence)
	}

	condition := signalByID(t, signals, SignalConditionReport)
	if condition.Value != 0.85 || condition.Confidence != 0.9 {
		t.Fatalf("condition: got value=%v confidence=%v", condition.Value, condition.Confidence)
	}

	for _, sig := range signals {
		if !sig.Timestamp.Equal(now) {
			t.Fatalf("signal %s timestamp not stamped with evaluation time", sig.ID)
		}
	}
}

func TestNormalizeMarketDepthBands(t *testing.T) {
	cases := []struct {
		volume float64
		want   float64
	}{
		{150_000, 1.0},
		{100_001, 1.0},
		{100_000, 0.7},
		{10_001, 0.7},
		{10_000, 0.4},
		{1_001, 0.4},
		{1_000, 0.0},
		{0, 0.0},
	}
	for _, tc := range cases {
		got := marketDepth(tc.volume)
		if got != tc.want {
			t.Fatalf("volume %v: expected %v, got %v", tc.volume, tc.want, got)
		}
	}
}

func TestNormalizeConditionScale(t *testing.T) {
	cases := map[string]float64{"A": 1.0, "B": 0.85, "C": 0.70, "D": 0.50, "F": 0.0}
	for rating, want := range cases {
		signals := Normalize(AssetInputs{ConditionRating: rating}, time.Now())
		got := signalByID(t, signals, SignalConditionReport).Value
		if got != want {
			t.Fatalf("rating %s: expected %v, got %v", rating, want, got)
		}
	}
}

func TestNormalizeFraudSignalsOnlyWhenActive(t *testing.T) {
	signals := Normalize(AssetInputs{}, time.Now())
	if hasSignal(signals, SignalTamperDetected) {
		t.Fatalf("tamper signal emitted with zero tamper events")
	}
	if hasSignal(signals, SignalGeoMismatch) {
		t.Fatalf("geo signal emitted without mismatch flag")
	}
}

// Absent optional fields normalize to their worst case so the engine degrades
// instead of failing.
func TestNormalizeWorstCaseDefaults(t *testing.T) {
	signals := Normalize(AssetInputs{}, time.Now())

	if got := signalByID(t, signals, SignalOpticalMatch).Value; got != 0.0 {
		t.Fatalf("missing optical match: expected 0, got %v", got)
	}
	if got := signalByID(t, signals, SignalCustodyIntegrity).Value; got != 0.0 {
		t.Fatalf("unknown custody: expected 0, got %v", got)
	}
	if got := signalByID(t, signals, SignalMarketDepth).Value; got != 0.0 {
		t.Fatalf("missing volume: expected 0, got %v", got)
	}
	if got := signalByID(t, signals, SignalConditionReport).Value; got != 0.0 {
		t.Fatalf("missing condition behaves like grade F: expected 0, got %v", got)
	}
}

func TestNormalizeClampsOpticalMatch(t *testing.T) {
	signals := Normalize(AssetInputs{OpticalMatch: ptr(1.7)}, time.Now())
	if got := signalByID(t, signals, SignalOpticalMatch).Value; got != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", got)
	}
}
