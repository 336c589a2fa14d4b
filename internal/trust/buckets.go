package trust

// Fixed fraud contributions per active fraud signal. The risk sum is capped at
// 1.0; the evaluator weights the safety complement (1 - risk) positively.
const (
	tamperRisk      = 1.0
	geoMismatchRisk = 0.5
)

// bucketRules is the 1:1 signal-to-bucket mapping for the four positive
// buckets. Each bucket derives from exactly one signal with weight 1.0 inside
// the bucket; buckets are additive at the policy level, not internally
// multi-signal.
var bucketRules = []struct {
	signalID string
	bucket   Bucket
	factorID string
	title    string
}{
	{SignalOpticalMatch, BucketIdentity, "identity.optical_match", "Optical fingerprint match"},
	{SignalCustodyIntegrity, BucketProvenance, "provenance.custody_integrity", "Unbroken custody chain"},
	{SignalConditionReport, BucketCondition, "condition.report", "Inspector condition report"},
	{SignalMarketDepth, BucketLiquidity, "liquidity.market_depth", "Recent market depth"},
}

// ScoreBuckets reduces a signal set into the five score buckets, emitting one
// factor contribution per rule that fired.
func ScoreBuckets(signals []Signal) (BucketScores, []FactorContribution) {
	byID := make(map[string]Signal, len(signals))
	for _, s := range signals {
		byID[s.ID] = s
	}

	var scores BucketScores
	factors := make([]FactorContribution, 0, len(bucketRules)+2)

	for _, rule := range bucketRules {
		sig, ok := byID[rule.signalID]
		if !ok {
			continue
		}
		switch rule.bucket {
		case BucketIdentity:
			scores.Identity = sig.Value
		case BucketProvenance:
			scores.Provenance = sig.Value
		case BucketCondition:
			scores.Condition = sig.Value
		case BucketLiquidity:
			scores.Liquidity = sig.Value
		}
		factors = append(factors, FactorContribution{
			FactorID:     rule.factorID,
			Title:        rule.title,
			Bucket:       rule.bucket,
			Weight:       1.0,
			Contribution: sig.Value,
			SignalsUsed:  []string{sig.ID},
			EvidenceRefs: sig.EvidenceRefs,
		})
	}

	if sig, ok := byID[SignalTamperDetected]; ok {
		scores.FraudRisk += tamperRisk
		factors = append(factors, FactorContribution{
			FactorID:     "fraud.tamper_detected",
			Title:        "Tamper event detected",
			Bucket:       BucketFraud,
			Weight:       1.0,
			Contribution: -tamperRisk,
			SignalsUsed:  []string{sig.ID},
			EvidenceRefs: sig.EvidenceRefs,
		})
	}
	if sig, ok := byID[SignalGeoMismatch]; ok {
		scores.FraudRisk += geoMismatchRisk
		factors = append(factors, FactorContribution{
			FactorID:     "fraud.geo_mismatch",
			Title:        "Geolocation mismatch",
			Bucket:       BucketFraud,
			Weight:       1.0,
			Contribution: -geoMismatchRisk,
			SignalsUsed:  []string{sig.ID},
			EvidenceRefs: sig.EvidenceRefs,
		})
	}
	if scores.FraudRisk > 1.0 {
		scores.FraudRisk = 1.0
	}

	return scores, factors
}
