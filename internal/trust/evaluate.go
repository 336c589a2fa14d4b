package trust

import (
	"sort"
	"time"

	"veracity/internal/policy"
	id "veracity/pkg/domain"
)

// Confidence band boundary between MEDIUM and HIGH for verified assets. The
// lower boundary is the policy's own core confidence threshold.
const highBandFloor = 0.85

// Evaluate runs the full scoring pipeline and applies a policy's gates to
// produce a decision. It is deterministic: identical arguments yield identical
// scores, decision, and factor ordering.
//
// Gate precedence is a hard contract. Identity, provenance, and fraud are
// hard gates that override an otherwise-acceptable composite score;
// confidence thresholding only applies once the gates pass.
func Evaluate(assetID id.AssetID, inputs AssetInputs, pol policy.Policy, now time.Time) DecisionResponse {
	signals := Normalize(inputs, now)
	buckets, factors := ScoreBuckets(signals)

	fraudSafety := 1.0 - buckets.FraudRisk
	total := pol.Weights.Total()
	core := 0.0
	if total > 0 {
		core = (buckets.Identity*pol.Weights.Identity +
			buckets.Provenance*pol.Weights.Provenance +
			buckets.Condition*pol.Weights.Condition +
			buckets.Liquidity*pol.Weights.Liquidity +
			fraudSafety*pol.Weights.FraudSafety) / total
	}

	decision, band := decide(buckets, core, pol.Thresholds)

	// Sort by descending |contribution|; factor id breaks ties so the
	// ordering is byte-identical across runs.
	sort.SliceStable(factors, func(i, j int) bool {
		ai, aj := abs(factors[i].Contribution), abs(factors[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return factors[i].FactorID < factors[j].FactorID
	})

	return DecisionResponse{
		AssetID:  assetID,
		PolicyID: pol.ID,
		Scores: Scores{
			Identity:       buckets.Identity,
			Provenance:     buckets.Provenance,
			Condition:      buckets.Condition,
			Liquidity:      buckets.Liquidity,
			FraudRisk:      buckets.FraudRisk,
			CoreConfidence: core,
		},
		Decision:        decision,
		ConfidenceBand:  band,
		TopFactors:      factors,
		RequiredActions: requiredActions(decision),
		Audit: Audit{
			ScoreModelVersion: ScoreModelVersion,
			PolicyVersion:     pol.Version,
			ComputedAt:        now,
		},
	}
}

// decide applies the decision rule in its exact precedence; first match wins.
func decide(b BucketScores, core float64, t policy.Thresholds) (Decision, ConfidenceBand) {
	switch {
	case b.Identity < t.Identity:
		return DecisionRejected, BandLow
	case b.Provenance < t.Provenance:
		return DecisionRejected, BandLow
	case b.FraudRisk > t.MaxFraudRisk:
		return DecisionRejected, BandLow
	case core < t.CoreConfidence:
		return DecisionReviewRequired, BandLow
	case core < highBandFloor:
		return DecisionVerified, BandMedium
	default:
		return DecisionVerified, BandHigh
	}
}

// requiredActions maps a decision to what the caller must do next.
func requiredActions(d Decision) []RequiredAction {
	switch d {
	case DecisionRejected:
		return []RequiredAction{{
			Action: "quarantine_asset",
			Reason: "one or more hard gates failed",
		}}
	case DecisionReviewRequired:
		return []RequiredAction{{
			Action: "schedule_manual_inspection",
			Reason: "composite confidence below policy threshold",
		}}
	default:
		return []RequiredAction{}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
