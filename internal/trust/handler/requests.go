package handler

import (
	"strings"

	"veracity/internal/trust"
	id "veracity/pkg/domain"
	dErrors "veracity/pkg/domain-errors"
)

// Asset ids come from external registries; cap them defensively.
const maxAssetIDLen = 128

// SimulateRequest is the HTTP request body for POST /simulate.
type SimulateRequest struct {
	AssetID string            `json:"asset_id"`
	Inputs  trust.AssetInputs `json:"inputs"`

	parsedAssetID id.AssetID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SimulateRequest) Validate() error {
	assetID, err := parseAssetID(r.AssetID)
	if err != nil {
		return err
	}
	r.parsedAssetID = assetID
	return validateInputs(r.Inputs)
}

// ParsedAssetID returns the validated asset id.
func (r *SimulateRequest) ParsedAssetID() id.AssetID {
	return r.parsedAssetID
}

// EvaluateRequest is the HTTP request body for POST /evaluate.
type EvaluateRequest struct {
	AssetID  string            `json:"asset_id"`
	PolicyID string            `json:"policy_id"`
	Inputs   trust.AssetInputs `json:"inputs"`
	ActorID  string            `json:"actor_id"`

	parsedAssetID id.AssetID
}

// Validate validates and parses the request.
func (r *EvaluateRequest) Validate() error {
	assetID, err := parseAssetID(r.AssetID)
	if err != nil {
		return err
	}
	r.parsedAssetID = assetID

	r.PolicyID = strings.TrimSpace(r.PolicyID)
	if r.PolicyID == "" {
		return dErrors.New(dErrors.CodeValidation, "policy_id is required")
	}
	r.ActorID = strings.TrimSpace(r.ActorID)
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeValidation, "actor_id is required")
	}
	return validateInputs(r.Inputs)
}

// ParsedAssetID returns the validated asset id.
func (r *EvaluateRequest) ParsedAssetID() id.AssetID {
	return r.parsedAssetID
}

// RevokeRequest is the HTTP request body for POST /assets/{asset_id}/revoke.
type RevokeRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// Validate validates the request.
func (r *RevokeRequest) Validate() error {
	r.ActorID = strings.TrimSpace(r.ActorID)
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeValidation, "actor_id is required")
	}
	return nil
}

func parseAssetID(raw string) (id.AssetID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "asset_id is required")
	}
	if len(raw) > maxAssetIDLen {
		return "", dErrors.New(dErrors.CodeValidation, "asset_id too long")
	}
	return id.AssetID(raw), nil
}

// validateInputs rejects out-of-range raw values. Absent fields are fine; the
// normalizer defaults them to their worst case.
func validateInputs(in trust.AssetInputs) error {
	if in.OpticalMatch != nil && (*in.OpticalMatch < 0 || *in.OpticalMatch > 1) {
		return dErrors.New(dErrors.CodeValidation, "inputs.optical_match must be in [0,1]")
	}
	if in.MarketVolume != nil && *in.MarketVolume < 0 {
		return dErrors.New(dErrors.CodeValidation, "inputs.market_volume must be >= 0")
	}
	if in.CustodyEvents != nil && *in.CustodyEvents < 0 {
		return dErrors.New(dErrors.CodeValidation, "inputs.custody_events must be >= 0")
	}
	if in.TamperEvents < 0 {
		return dErrors.New(dErrors.CodeValidation, "inputs.tamper_events must be >= 0")
	}
	switch in.ConditionRating {
	case "", "A", "B", "C", "D", "F":
	default:
		return dErrors.New(dErrors.CodeValidation, "inputs.condition_rating must be one of A, B, C, D, F")
	}
	return nil
}
