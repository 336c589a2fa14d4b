package handler

import (
	"encoding/json"
	"time"

	"veracity/internal/ledger"
	"veracity/internal/trust"
)

// SimulateResponse maps policy ids to their decision responses.
type SimulateResponse struct {
	AssetID   string                            `json:"asset_id"`
	Decisions map[string]trust.DecisionResponse `json:"decisions"`
}

// EventResponse is the wire form of a ledger event.
type EventResponse struct {
	EventID     string          `json:"event_id"`
	AssetID     string          `json:"asset_id"`
	Type        string          `json:"type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	ActorKind   string          `json:"actor_kind"`
	ActorID     string          `json:"actor_id"`
	PrevEventID string          `json:"prev_event_id,omitempty"`
	PayloadHash string          `json:"payload_hash"`
	Payload     json.RawMessage `json:"payload"`
}

// HistoryResponse is the wire form of an asset's event history.
type HistoryResponse struct {
	AssetID string          `json:"asset_id"`
	Events  []EventResponse `json:"events"`
}

// FromEvent converts a ledger event to its wire form.
func FromEvent(ev ledger.Event) EventResponse {
	resp := EventResponse{
		EventID:     ev.EventID.String(),
		AssetID:     ev.AssetID.String(),
		Type:        string(ev.Type),
		OccurredAt:  ev.OccurredAt,
		ActorKind:   string(ev.Actor.Kind),
		ActorID:     ev.Actor.ID,
		PayloadHash: ev.PayloadHash,
		Payload:     ev.Payload,
	}
	if ev.PrevEventID != nil {
		resp.PrevEventID = ev.PrevEventID.String()
	}
	return resp
}

// FromHistory converts an event list to its wire form.
func FromHistory(assetID string, events []ledger.Event) HistoryResponse {
	out := HistoryResponse{
		AssetID: assetID,
		Events:  make([]EventResponse, 0, len(events)),
	}
	for _, ev := range events {
		out.Events = append(out.Events, FromEvent(ev))
	}
	return out
}
