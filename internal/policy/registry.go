package policy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry maps policy ids to immutable policies. It is built once at startup
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry returns a registry preloaded with the built-in policies.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	for _, p := range builtins() {
		r.policies[p.ID] = p
	}
	return r
}

// LoadFile overlays policies from a YAML file on top of the built-ins.
// A file policy with a built-in id replaces the built-in entirely.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy file: %w", err)
	}
	var doc struct {
		Policies []Policy `yaml:"policies"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse policy file: %w", err)
	}
	for _, p := range doc.Policies {
		if p.ID == "" {
			return fmt.Errorf("policy file: policy without id")
		}
		if p.Weights.Total() <= 0 {
			return fmt.Errorf("policy %q: weights must sum to a positive total", p.ID)
		}
		if p.Decay.ExpireDays < p.Decay.ReviewDays {
			return fmt.Errorf("policy %q: expire_days must be >= review_days", p.ID)
		}
		r.policies[p.ID] = p
	}
	return nil
}

// Get returns the policy for an id.
func (r *Registry) Get(id string) (Policy, bool) {
	p, ok := r.policies[id]
	return p, ok
}

// IDs returns all registered policy ids, sorted for deterministic iteration.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all registered policies in id order.
func (r *Registry) All() []Policy {
	ids := r.IDs()
	out := make([]Policy, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.policies[id])
	}
	return out
}

// builtins are the stock consumer policies. Insurers weigh identity and fraud
// safety and barely care about liquidity; lenders need liquid collateral, so
// liquidity carries double weight against a high confidence floor; marketplaces
// weigh everything evenly and disclose fully.
func builtins() []Policy {
	return []Policy{
		{
			ID:      "insurer",
			Version: "2026-03",
			Weights: Weights{
				Identity:    1.5,
				Provenance:  1.25,
				Condition:   1.0,
				Liquidity:   0.25,
				FraudSafety: 1.5,
			},
			Thresholds: Thresholds{
				Identity:       0.80,
				Provenance:     0.70,
				Condition:      0.50,
				Liquidity:      0.10,
				CoreConfidence: 0.75,
				MaxFraudRisk:   0.25,
			},
			Disclosure: DisclosureSummary,
			Decay: Decay{
				ReviewDays:          90,
				ExpireDays:          270,
				LockerExtensionDays: 60,
			},
		},
		{
			ID:      "lender",
			Version: "2026-03",
			Weights: Weights{
				Identity:    1.0,
				Provenance:  1.0,
				Condition:   0.5,
				Liquidity:   2.0,
				FraudSafety: 1.0,
			},
			Thresholds: Thresholds{
				Identity:       0.70,
				Provenance:     0.60,
				Condition:      0.40,
				Liquidity:      0.60,
				CoreConfidence: 0.80,
				MaxFraudRisk:   0.35,
			},
			Disclosure: DisclosureNone,
			Decay: Decay{
				ReviewDays:          120,
				ExpireDays:          365,
				LockerExtensionDays: 90,
			},
		},
		{
			ID:      "marketplace",
			Version: "2026-03",
			Weights: Weights{
				Identity:    1.0,
				Provenance:  1.0,
				Condition:   1.0,
				Liquidity:   1.0,
				FraudSafety: 1.0,
			},
			Thresholds: Thresholds{
				Identity:       0.60,
				Provenance:     0.50,
				Condition:      0.30,
				Liquidity:      0.20,
				CoreConfidence: 0.65,
				MaxFraudRisk:   0.60,
			},
			Disclosure: DisclosureFull,
			Decay: Decay{
				ReviewDays:          180,
				ExpireDays:          365,
				LockerExtensionDays: 120,
			},
		},
	}
}
