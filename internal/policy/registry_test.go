package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"insurer", "lender", "marketplace"} {
		p, ok := r.Get(id)
		if !ok {
			t.Fatalf("expected built-in policy %q", id)
		}
		if p.Weights.Total() <= 0 {
			t.Fatalf("policy %q has non-positive weight total", id)
		}
		if p.Decay.ExpireDays < p.Decay.ReviewDays {
			t.Fatalf("policy %q expires before review window ends", id)
		}
	}
}

func TestIDsSorted(t *testing.T) {
	r := NewRegistry()
	ids := r.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
	if len(r.All()) != len(ids) {
		t.Fatalf("All and IDs disagree on policy count")
	}
}

func TestLoadFileOverlay(t *testing.T) {
	doc := `
policies:
  - id: auction-house
    version: "2026-04"
    weights:
      identity: 1
      provenance: 1
      condition: 2
      liquidity: 1
      fraud_safety: 1
    thresholds:
      identity: 0.5
      provenance: 0.5
      condition: 0.6
      liquidity: 0.1
      core_confidence: 0.7
      max_fraud_risk: 0.5
    disclosure: FULL
    decay:
      review_days: 60
      expire_days: 180
      locker_extension_days: 30
  - id: insurer
    version: "2026-04-custom"
    weights:
      identity: 2
      provenance: 1
      condition: 1
      liquidity: 1
      fraud_safety: 2
    thresholds:
      identity: 0.9
      provenance: 0.8
      condition: 0.5
      liquidity: 0.1
      core_confidence: 0.8
      max_fraud_risk: 0.2
    disclosure: SUMMARY
    decay:
      review_days: 45
      expire_days: 180
      locker_extension_days: 30
`
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("load policy file: %v", err)
	}

	if _, ok := r.Get("auction-house"); !ok {
		t.Fatalf("expected file policy to be registered")
	}
	insurer, _ := r.Get("insurer")
	if insurer.Version != "2026-04-custom" {
		t.Fatalf("expected file policy to replace built-in, got version %q", insurer.Version)
	}
}

func TestLoadFileRejectsBadPolicies(t *testing.T) {
	cases := map[string]string{
		"missing id": `
policies:
  - version: "1"
    weights: {identity: 1, provenance: 1, condition: 1, liquidity: 1, fraud_safety: 1}
`,
		"zero weights": `
policies:
  - id: broken
    weights: {identity: 0, provenance: 0, condition: 0, liquidity: 0, fraud_safety: 0}
`,
		"expire before review": `
policies:
  - id: broken
    weights: {identity: 1, provenance: 1, condition: 1, liquidity: 1, fraud_safety: 1}
    decay: {review_days: 100, expire_days: 50}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "policies.yaml")
			if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
				t.Fatal(err)
			}
			if err := NewRegistry().LoadFile(path); err == nil {
				t.Fatalf("expected load to fail")
			}
		})
	}
}
