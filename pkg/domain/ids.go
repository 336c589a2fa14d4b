// Package domain holds the small identifier types shared across modules.
// Keeping them here lets services and stores agree on types without importing
// each other.
package domain

import "github.com/google/uuid"

// AssetID identifies a physical asset. Assets are keyed by whatever identifier
// the caller's registry uses (serial number, VIN, catalog id), so this stays a
// free-form string rather than a UUID.
type AssetID string

// IsZero reports whether the asset id is unset.
func (a AssetID) IsZero() bool {
	return a == ""
}

func (a AssetID) String() string {
	return string(a)
}

// EventID is the globally unique identifier of a ledger event.
type EventID uuid.UUID

// NewEventID returns a fresh random event id.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// ParseEventID parses the canonical string form of an event id.
func ParseEventID(s string) (EventID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

// IsNil reports whether the event id is the zero UUID.
func (e EventID) IsNil() bool {
	return uuid.UUID(e) == uuid.Nil
}

func (e EventID) String() string {
	return uuid.UUID(e).String()
}

// MarshalText implements encoding.TextMarshaler so event ids serialize as
// their canonical UUID string in JSON payloads.
func (e EventID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EventID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*e = EventID(u)
	return nil
}
