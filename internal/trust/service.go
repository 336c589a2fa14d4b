package trust

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"veracity/internal/ledger"
	"veracity/internal/policy"
	"veracity/internal/trust/metrics"
	id "veracity/pkg/domain"
	dErrors "veracity/pkg/domain-errors"
	"veracity/pkg/requestcontext"
)

// Recorder is the slice of the ledger the trust service needs. Simulation
// never touches it; only persisting evaluations and revocations do.
type Recorder interface {
	LogEvent(ctx context.Context, eventType ledger.EventType, assetID id.AssetID, actor ledger.Actor, payload any) (*ledger.Event, error)
	GetEvent(ctx context.Context, eventID id.EventID) (*ledger.Event, error)
	AssetHistory(ctx context.Context, assetID id.AssetID) ([]ledger.Event, error)
}

// DecisionPayload is what a decision_recorded event carries. It is sufficient
// on its own to reconstruct the DecisionResponse without recomputation.
type DecisionPayload struct {
	Inputs   AssetInputs       `json:"inputs"`
	PolicyID string            `json:"policy_id"`
	Analysis *DecisionResponse `json:"analysis"`
}

// RevocationPayload is what a verification_revoked event carries.
type RevocationPayload struct {
	Reason string `json:"reason"`
}

// Service orchestrates evaluation, decay, and ledger persistence. Evaluation
// itself stays pure; this layer adds the side effects.
type Service struct {
	registry *policy.Registry
	recorder Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService constructs the trust service.
func NewService(registry *policy.Registry, recorder Recorder, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		recorder: recorder,
		logger:   logger,
		metrics:  m,
	}
}

// Simulate evaluates the inputs under every registered policy concurrently.
// It never writes to the ledger, so the resulting responses carry no ledger
// event id. Safe to call in parallel for the same asset; evaluation is pure.
func (s *Service) Simulate(ctx context.Context, assetID id.AssetID, inputs AssetInputs) (map[string]DecisionResponse, error) {
	if assetID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "asset id is required")
	}

	now := requestcontext.Now(ctx)
	results := make(map[string]DecisionResponse, len(s.registry.IDs()))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, pol := range s.registry.All() {
		g.Go(func() error {
			resp := s.run(assetID, inputs, pol, now)
			mu.Lock()
			results[pol.ID] = resp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.metrics.IncrementSimulations()
	return results, nil
}

// Evaluate runs the inputs under one named policy and persists the result as
// a decision_recorded event. The returned response carries the new event's id
// in its audit block; the stored payload intentionally does not, so replay
// always overwrites it with the event's own id.
func (s *Service) Evaluate(ctx context.Context, assetID id.AssetID, policyID string, inputs AssetInputs, actor ledger.Actor) (*DecisionResponse, error) {
	if assetID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "asset id is required")
	}
	pol, ok := s.registry.Get(policyID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown policy: "+policyID)
	}

	now := requestcontext.Now(ctx)
	resp := s.run(assetID, inputs, pol, now)

	ev, err := s.recorder.LogEvent(ctx, ledger.TypeDecisionRecorded, assetID, actor, DecisionPayload{
		Inputs:   inputs,
		PolicyID: pol.ID,
		Analysis: &resp,
	})
	if err != nil {
		return nil, err
	}

	resp.Audit.LedgerEventID = ev.EventID.String()
	s.logger.InfoContext(ctx, "decision recorded",
		"request_id", requestcontext.RequestID(ctx),
		"asset_id", assetID,
		"policy", pol.ID,
		"decision", resp.Decision,
		"event_id", ev.EventID,
	)
	return &resp, nil
}

// Replay reconstructs a DecisionResponse purely from a stored decision event.
// The audit's ledger_event_id always points back at the record it came from,
// even if the original computation did not yet have an id.
func (s *Service) Replay(ctx context.Context, eventID id.EventID) (*DecisionResponse, error) {
	ev, err := s.recorder.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Type != ledger.TypeDecisionRecorded {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event is not a recorded decision")
	}

	var payload DecisionPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeCorruptRecord, "decision payload unreadable", err)
	}
	if payload.Analysis == nil || payload.PolicyID == "" {
		return nil, dErrors.New(dErrors.CodeCorruptRecord, "decision payload missing analysis or policy_id")
	}

	resp := *payload.Analysis
	resp.Audit.LedgerEventID = ev.EventID.String()
	return &resp, nil
}

// History returns the asset's full event history in storage order.
func (s *Service) History(ctx context.Context, assetID id.AssetID) ([]ledger.Event, error) {
	if assetID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "asset id is required")
	}
	return s.recorder.AssetHistory(ctx, assetID)
}

// Revoke appends a verification_revoked event to the asset's chain.
func (s *Service) Revoke(ctx context.Context, assetID id.AssetID, actor ledger.Actor, reason string) (*ledger.Event, error) {
	if assetID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "asset id is required")
	}
	ev, err := s.recorder.LogEvent(ctx, ledger.TypeVerificationRevoked, assetID, actor, RevocationPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "verification revoked",
		"request_id", requestcontext.RequestID(ctx),
		"asset_id", assetID,
		"event_id", ev.EventID,
	)
	return ev, nil
}

// run executes the pure pipeline: evaluate, then apply decay. A demoted
// verdict replaces the decision and its required actions.
func (s *Service) run(assetID id.AssetID, inputs AssetInputs, pol policy.Policy, now time.Time) DecisionResponse {
	start := time.Now()
	resp := Evaluate(assetID, inputs, pol, now)

	decayed := Decay(pol, inputs, resp.Decision, now)
	if decayed.IsStale {
		resp.Decision = decayed.DecayedDecision
		resp.RequiredActions = requiredActions(resp.Decision)
		s.metrics.IncrementDecayDemotion(pol.ID)
	}

	s.metrics.IncrementOutcome(pol.ID, string(resp.Decision))
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	return resp
}
