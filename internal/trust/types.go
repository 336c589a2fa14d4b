// Package trust implements the asset-trust decision core: signal
// normalization, bucket scoring, policy evaluation, and verdict decay.
// Everything in this package is pure domain logic - no I/O, no side effects.
package trust

import (
	"time"

	id "veracity/pkg/domain"
)

// ScoreModelVersion stamps every decision so replays can tell which scoring
// model produced them.
const ScoreModelVersion = "score-model/v2"

// SignalSource identifies where an observation came from.
type SignalSource string

const (
	SourceApp               SignalSource = "app"
	SourceLockableEnclosure SignalSource = "lockable-enclosure"
	SourceTag               SignalSource = "tag"
	SourceHuman             SignalSource = "human"
	SourcePartnerAPI        SignalSource = "partner-api"
)

// Signal is a normalized [0,1] observation with a confidence and provenance
// source. Signals exist only within one evaluation call and are never
// persisted directly.
type Signal struct {
	ID           string       `json:"id"`
	Value        float64      `json:"value"`
	Confidence   float64      `json:"confidence"`
	Source       SignalSource `json:"source"`
	Timestamp    time.Time    `json:"timestamp"`
	EvidenceRefs []string     `json:"evidence_refs,omitempty"`
}

// AssetInputs are the raw observational facts about an asset. All fields are
// optional; absent values normalize to their worst case so the engine degrades
// instead of failing.
type AssetInputs struct {
	OpticalMatch    *float64   `json:"optical_match,omitempty"`
	SerialMatch     *bool      `json:"serial_match,omitempty"`
	CustodyEvents   *int       `json:"custody_events,omitempty"`
	CustodyGaps     *bool      `json:"custody_gaps,omitempty"`
	ConditionRating string     `json:"condition_rating,omitempty"`
	MarketVolume    *float64   `json:"market_volume,omitempty"`
	TamperEvents    int        `json:"tamper_events,omitempty"`
	GeoMismatch     bool       `json:"geo_mismatch,omitempty"`
	LockerAttested  bool       `json:"locker_attested,omitempty"`
	LastVerifiedAt  *time.Time `json:"last_verified_at,omitempty"`
}

// Bucket is one of the five scoring dimensions.
type Bucket string

const (
	BucketIdentity   Bucket = "identity"
	BucketProvenance Bucket = "provenance"
	BucketCondition  Bucket = "condition"
	BucketLiquidity  Bucket = "liquidity"
	BucketFraud      Bucket = "fraud"
)

// FactorContribution records one scoring rule that fired, for explainability.
// Contribution is signed: fraud factors pull negative.
type FactorContribution struct {
	FactorID     string   `json:"factor_id"`
	Title        string   `json:"title"`
	Bucket       Bucket   `json:"bucket"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
	SignalsUsed  []string `json:"signals_used"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

// BucketScores are the raw per-bucket results before policy weighting.
// FraudRisk is a risk sum in [0,1]; the evaluator weights its complement.
type BucketScores struct {
	Identity   float64
	Provenance float64
	Condition  float64
	Liquidity  float64
	FraudRisk  float64
}

// Scores is the score record returned to callers, including the composite.
type Scores struct {
	Identity       float64 `json:"identity"`
	Provenance     float64 `json:"provenance"`
	Condition      float64 `json:"condition"`
	Liquidity      float64 `json:"liquidity"`
	FraudRisk      float64 `json:"fraud_risk"`
	CoreConfidence float64 `json:"core_confidence"`
}

// Decision is the verdict enum.
type Decision string

const (
	DecisionVerified               Decision = "VERIFIED"
	DecisionVerifiedWithDisclosure Decision = "VERIFIED_WITH_DISCLOSURE"
	DecisionReviewRequired         Decision = "REVIEW_REQUIRED"
	DecisionRejected               Decision = "REJECTED"
	DecisionRevoked                Decision = "REVOKED"
	DecisionExpired                Decision = "EXPIRED"
)

// Terminal reports whether the decision is a terminal state that decay can
// never degrade further.
func (d Decision) Terminal() bool {
	switch d {
	case DecisionRejected, DecisionRevoked, DecisionExpired:
		return true
	}
	return false
}

// ConfidenceBand coarsely grades the composite confidence.
type ConfidenceBand string

const (
	BandLow    ConfidenceBand = "LOW"
	BandMedium ConfidenceBand = "MEDIUM"
	BandHigh   ConfidenceBand = "HIGH"
)

// RequiredAction tells the caller what must happen next.
type RequiredAction struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Audit carries the versioning needed to reproduce a decision later.
type Audit struct {
	ScoreModelVersion string    `json:"score_model_version"`
	PolicyVersion     string    `json:"policy_version"`
	ComputedAt        time.Time `json:"computed_at"`
	LedgerEventID     string    `json:"ledger_event_id,omitempty"`
}

// DecisionResponse is the full evaluation result. It is never mutated after
// creation; a new evaluation produces a new response.
type DecisionResponse struct {
	AssetID         id.AssetID           `json:"asset_id"`
	PolicyID        string               `json:"policy_id"`
	Scores          Scores               `json:"scores"`
	Decision        Decision             `json:"decision"`
	ConfidenceBand  ConfidenceBand       `json:"confidence_band"`
	TopFactors      []FactorContribution `json:"top_factors"`
	RequiredActions []RequiredAction     `json:"required_actions"`
	Audit           Audit                `json:"audit"`
}
