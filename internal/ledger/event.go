// Package ledger implements the append-only, hash-stamped, causally-chained
// event record per asset. Events are created once and never updated or
// deleted; eviction under the retention cap is the only permitted removal.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	id "veracity/pkg/domain"
)

// EventType classifies what happened to an asset.
type EventType string

const (
	TypeAssetRegistered     EventType = "asset_registered"
	TypeDecisionRecorded    EventType = "decision_recorded"
	TypeCustodyTransferred  EventType = "custody_transferred"
	TypeVerificationRevoked EventType = "verification_revoked"
)

// ActorKind classifies who caused an event.
type ActorKind string

const (
	ActorUser    ActorKind = "user"
	ActorService ActorKind = "service"
	ActorSystem  ActorKind = "system"
)

// Actor identifies the party responsible for an event.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"`
}

// Event is one immutable record in an asset's chain. PrevEventID is nil only
// for the first event ever logged for the asset; every later event points at
// the event that was the asset's tip at the moment of insertion.
type Event struct {
	EventID     id.EventID      `json:"event_id"`
	AssetID     id.AssetID      `json:"asset_id"`
	Type        EventType       `json:"type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Actor       Actor           `json:"actor"`
	PrevEventID *id.EventID     `json:"prev_event_id,omitempty"`
	PayloadHash string          `json:"payload_hash"`
	Payload     json.RawMessage `json:"payload"`
}

// HashPayload commits to the exact payload bytes with SHA-256. Because the
// hash covers the stored bytes rather than a re-marshaled structure, any
// future re-hash of the payload matches by construction.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// VerifyChain walks a stored history backward from the newest event,
// validating prev links and payload hashes. The history must be in storage
// order for the given asset.
func VerifyChain(history []Event) error {
	if len(history) == 0 {
		return nil
	}
	if history[0].PrevEventID != nil {
		return errors.New("ledger: first event has a predecessor")
	}
	for i, ev := range history {
		if HashPayload(ev.Payload) != ev.PayloadHash {
			return fmt.Errorf("ledger: event %s payload hash mismatch", ev.EventID)
		}
		if i == 0 {
			continue
		}
		if ev.PrevEventID == nil {
			return fmt.Errorf("ledger: event %s breaks the chain, no predecessor", ev.EventID)
		}
		if *ev.PrevEventID != history[i-1].EventID {
			return fmt.Errorf("ledger: event %s points at %s, expected %s",
				ev.EventID, ev.PrevEventID, history[i-1].EventID)
		}
	}
	return nil
}
