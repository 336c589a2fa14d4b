// Package policy defines the consumer risk-appetite configuration applied by
// the trust evaluator. A policy is pure data: the evaluation algorithm never
// varies per policy, only weights, thresholds, disclosure, and decay windows do.
package policy

// Disclosure controls how much of the decision rationale a consumer surfaces
// downstream. It also softens decay: FULL-disclosure policies degrade stale
// verdicts to a disclosed state instead of forcing manual review.
type Disclosure string

const (
	DisclosureNone    Disclosure = "NONE"
	DisclosureSummary Disclosure = "SUMMARY"
	DisclosureFull    Disclosure = "FULL"
)

// Weights are the per-bucket multipliers used for the composite confidence.
// They need not sum to 1; the evaluator normalizes by the total.
type Weights struct {
	Identity    float64 `json:"identity" yaml:"identity"`
	Provenance  float64 `json:"provenance" yaml:"provenance"`
	Condition   float64 `json:"condition" yaml:"condition"`
	Liquidity   float64 `json:"liquidity" yaml:"liquidity"`
	FraudSafety float64 `json:"fraud_safety" yaml:"fraud_safety"`
}

// Total returns the sum of all weights, the normalization denominator.
func (w Weights) Total() float64 {
	return w.Identity + w.Provenance + w.Condition + w.Liquidity + w.FraudSafety
}

// Thresholds hold the gate and band floors. Identity, provenance, and fraud
// are hard gates; core confidence only applies once the gates pass. Condition
// and liquidity floors are part of the policy schema for reporting but are not
// decision gates in the current model.
type Thresholds struct {
	Identity       float64 `json:"identity" yaml:"identity"`
	Provenance     float64 `json:"provenance" yaml:"provenance"`
	Condition      float64 `json:"condition" yaml:"condition"`
	Liquidity      float64 `json:"liquidity" yaml:"liquidity"`
	CoreConfidence float64 `json:"core_confidence" yaml:"core_confidence"`
	MaxFraudRisk   float64 `json:"max_fraud_risk" yaml:"max_fraud_risk"`
}

// Decay configures the staleness windows, in days since the asset's last
// physical verification. LockerExtensionDays extends both windows when custody
// is hardware-attested by a lockable enclosure.
type Decay struct {
	ReviewDays          int `json:"review_days" yaml:"review_days"`
	ExpireDays          int `json:"expire_days" yaml:"expire_days"`
	LockerExtensionDays int `json:"locker_extension_days" yaml:"locker_extension_days"`
}

// Policy is a named, versioned trust configuration. Policies are immutable
// once registered; changing one means registering a new version.
type Policy struct {
	ID         string     `json:"id" yaml:"id"`
	Version    string     `json:"version" yaml:"version"`
	Weights    Weights    `json:"weights" yaml:"weights"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
	Disclosure Disclosure `json:"disclosure" yaml:"disclosure"`
	Decay      Decay      `json:"decay" yaml:"decay"`
}
