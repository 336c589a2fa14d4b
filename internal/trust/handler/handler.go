package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veracity/internal/ledger"
	"veracity/internal/trust"
	id "veracity/pkg/domain"
	dErrors "veracity/pkg/domain-errors"
	"veracity/pkg/platform/httputil"
	"veracity/pkg/requestcontext"
)

// Service defines the interface for trust operations.
type Service interface {
	Simulate(ctx context.Context, assetID id.AssetID, inputs trust.AssetInputs) (map[string]trust.DecisionResponse, error)
	Evaluate(ctx context.Context, assetID id.AssetID, policyID string, inputs trust.AssetInputs, actor ledger.Actor) (*trust.DecisionResponse, error)
	Replay(ctx context.Context, eventID id.EventID) (*trust.DecisionResponse, error)
	History(ctx context.Context, assetID id.AssetID) ([]ledger.Event, error)
	Revoke(ctx context.Context, assetID id.AssetID, actor ledger.Actor, reason string) (*ledger.Event, error)
}

// Handler wires trust endpoints to the trust service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a trust handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts trust endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/simulate", h.HandleSimulate)
	r.Post("/evaluate", h.HandleEvaluate)
	r.Get("/decision/{event_id}", h.HandleGetDecision)
	r.Get("/assets/{asset_id}/history", h.HandleHistory)
	r.Post("/assets/{asset_id}/revoke", h.HandleRevoke)
}

// HandleSimulate handles POST /simulate. Simulation is pure: it runs the
// inputs through every known policy and never writes to the ledger.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SimulateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.Simulate(ctx, req.ParsedAssetID(), req.Inputs)
	if err != nil {
		h.logger.ErrorContext(ctx, "simulation failed",
			"request_id", requestID,
			"asset_id", req.AssetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SimulateResponse{
		AssetID:   req.AssetID,
		Decisions: results,
	})
}

// HandleEvaluate handles POST /evaluate requests, persisting the decision.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := ledger.Actor{Kind: ledger.ActorUser, ID: req.ActorID}
	result, err := h.service.Evaluate(ctx, req.ParsedAssetID(), req.PolicyID, req.Inputs, actor)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"asset_id", req.AssetID,
			"policy", req.PolicyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evaluation persisted",
		"request_id", requestID,
		"asset_id", req.AssetID,
		"policy", req.PolicyID,
		"decision", result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGetDecision handles GET /decision/{event_id}, replaying a recorded
// decision purely from its stored ledger event.
func (h *Handler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	eventID, err := id.ParseEventID(chi.URLParam(r, "event_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event_id must be a UUID"))
		return
	}

	result, err := h.service.Replay(ctx, eventID)
	if err != nil {
		// A corrupt record is an integrity problem with the ledger itself,
		// not a caller mistake. Log it loudly.
		if dErrors.CodeOf(err) == dErrors.CodeCorruptRecord {
			h.logger.ErrorContext(ctx, "ledger record corrupt",
				"request_id", requestID,
				"event_id", eventID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleHistory handles GET /assets/{asset_id}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID := chi.URLParam(r, "asset_id")

	events, err := h.service.History(ctx, id.AssetID(assetID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromHistory(assetID, events))
}

// HandleRevoke handles POST /assets/{asset_id}/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	assetID := chi.URLParam(r, "asset_id")

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := ledger.Actor{Kind: ledger.ActorUser, ID: req.ActorID}
	ev, err := h.service.Revoke(ctx, id.AssetID(assetID), actor, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "revocation failed",
			"request_id", requestID,
			"asset_id", assetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromEvent(*ev))
}
