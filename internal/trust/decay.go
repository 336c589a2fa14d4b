package trust

import (
	"time"

	"veracity/internal/policy"
)

// DecayResult reports how verification age affected a verdict.
type DecayResult struct {
	IsStale          bool     `json:"is_stale"`
	OriginalDecision Decision `json:"original_decision"`
	DecayedDecision  Decision `json:"decayed_decision"`
	Reason           string   `json:"reason,omitempty"`
	EffectiveAgeDays int      `json:"effective_age_days"`
}

// Decay post-processes a verdict against the asset's verification age.
// Terminal decisions pass through unchanged. An asset with no recorded
// verification date is treated as freshly ingested (age zero).
//
// Hardware-attested custody (locker_attested) extends both windows by the
// policy's locker extension days.
func Decay(pol policy.Policy, inputs AssetInputs, current Decision, now time.Time) DecayResult {
	result := DecayResult{
		OriginalDecision: current,
		DecayedDecision:  current,
	}

	if current.Terminal() {
		return result
	}

	ageDays := 0
	if inputs.LastVerifiedAt != nil {
		ageDays = int(now.Sub(*inputs.LastVerifiedAt).Hours() / 24)
		if ageDays < 0 {
			ageDays = 0
		}
	}
	result.EffectiveAgeDays = ageDays

	reviewDays := pol.Decay.ReviewDays
	expireDays := pol.Decay.ExpireDays
	if inputs.LockerAttested {
		reviewDays += pol.Decay.LockerExtensionDays
		expireDays += pol.Decay.LockerExtensionDays
	}

	switch {
	case ageDays > expireDays:
		result.IsStale = true
		result.DecayedDecision = DecisionExpired
		result.Reason = "verification age exceeds expiry window"
	case ageDays > reviewDays:
		result.IsStale = true
		if pol.Disclosure == policy.DisclosureFull {
			// Full-disclosure consumers keep the verdict but must disclose
			// its age; everyone else gets sent back to review.
			result.DecayedDecision = DecisionVerifiedWithDisclosure
			result.Reason = "verification aging, disclosed to consumers"
		} else {
			result.DecayedDecision = DecisionReviewRequired
			result.Reason = "verification aging, manual review required"
		}
	}

	return result
}
