package trust

import (
	"fmt"
	"time"
)

// Signal ids emitted by the normalizer. The scorer keys its bucket mapping on
// these, so they are part of the internal contract.
const (
	SignalOpticalMatch     = "optical_match"
	SignalCustodyIntegrity = "custody_integrity"
	SignalMarketDepth      = "market_depth"
	SignalTamperDetected   = "tamper_detected"
	SignalGeoMismatch      = "geo_mismatch"
	SignalConditionReport  = "condition_report"
)

// conditionValues maps the A-F condition rating to a normalized value.
var conditionValues = map[string]float64{
	"A": 1.0,
	"B": 0.85,
	"C": 0.70,
	"D": 0.50,
	"F": 0.0,
}

// Normalize turns heterogeneous raw inputs into a uniform signal set. The
// timestamp is metadata only; scoring never reads it. Absent optional inputs
// normalize to their worst case: a missing condition rating behaves like grade
// F, an unreported custody record like a gap, an unknown market like zero
// volume.
func Normalize(in AssetInputs, now time.Time) []Signal {
	signals := make([]Signal, 0, 6)

	optical := 0.0
	if in.OpticalMatch != nil {
		optical = clamp01(*in.OpticalMatch)
	}
	opticalSig := Signal{
		ID:         SignalOpticalMatch,
		Value:      optical,
		Confidence: 0.95,
		Source:     SourceApp,
		Timestamp:  now,
	}
	if in.SerialMatch != nil {
		opticalSig.EvidenceRefs = append(opticalSig.EvidenceRefs, fmt.Sprintf("serial-match:%t", *in.SerialMatch))
	}
	signals = append(signals, opticalSig)

	custody := 0.0
	if in.CustodyGaps != nil && !*in.CustodyGaps {
		custody = 1.0
	}
	custodySig := Signal{
		ID:         SignalCustodyIntegrity,
		Value:      custody,
		Confidence: 1.0,
		Source:     SourcePartnerAPI,
		Timestamp:  now,
	}
	if in.CustodyEvents != nil {
		custodySig.EvidenceRefs = append(custodySig.EvidenceRefs, fmt.Sprintf("custody-events:%d", *in.CustodyEvents))
	}
	signals = append(signals, custodySig)

	volume := 0.0
	if in.MarketVolume != nil {
		volume = *in.MarketVolume
	}
	signals = append(signals, Signal{
		ID:           SignalMarketDepth,
		Value:        marketDepth(volume),
		Confidence:   0.8,
		Source:       SourcePartnerAPI,
		Timestamp:    now,
		EvidenceRefs: []string{fmt.Sprintf("market-volume:%.0f", volume)},
	})

	if in.TamperEvents > 0 {
		signals = append(signals, Signal{
			ID:           SignalTamperDetected,
			Value:        1.0,
			Confidence:   1.0,
			Source:       SourceLockableEnclosure,
			Timestamp:    now,
			EvidenceRefs: []string{fmt.Sprintf("tamper-events:%d", in.TamperEvents)},
		})
	}

	if in.GeoMismatch {
		signals = append(signals, Signal{
			ID:         SignalGeoMismatch,
			Value:      1.0,
			Confidence: 0.9,
			Source:     SourceTag,
			Timestamp:  now,
		})
	}

	condition, ok := conditionValues[in.ConditionRating]
	if !ok {
		// Unknown or missing rating scores like grade F.
		condition = 0.0
	}
	signals = append(signals, Signal{
		ID:           SignalConditionReport,
		Value:        condition,
		Confidence:   0.9,
		Source:       SourceHuman,
		Timestamp:    now,
		EvidenceRefs: conditionEvidence(in.ConditionRating),
	})

	return signals
}

// marketDepth maps recent trade volume into liquidity bands.
func marketDepth(volume float64) float64 {
	switch {
	case volume > 100_000:
		return 1.0
	case volume > 10_000:
		return 0.7
	case volume > 1_000:
		return 0.4
	default:
		return 0.0
	}
}

func conditionEvidence(rating string) []string {
	if rating == "" {
		return nil
	}
	return []string{"condition-rating:" + rating}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
