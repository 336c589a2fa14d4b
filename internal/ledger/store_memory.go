package ledger

import (
	"context"
	"sync"

	id "veracity/pkg/domain"
)

// InMemoryStore keeps the ledger in process memory. It holds the same
// compare-and-append contract as the durable stores, so service-level
// concurrency behavior is identical in tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	events  []Event
	byID    map[id.EventID]int
	byAsset map[id.AssetID][]int
}

// NewInMemoryStore creates an empty in-memory ledger store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.EventID]int),
		byAsset: make(map[id.AssetID][]int),
	}
}

// Append inserts the event if its PrevEventID matches the asset's current tip.
func (s *InMemoryStore) Append(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip := s.tipLocked(ev.AssetID)
	if !sameTip(tip, ev.PrevEventID) {
		return ErrTipConflict
	}

	idx := len(s.events)
	s.events = append(s.events, ev)
	s.byID[ev.EventID] = idx
	s.byAsset[ev.AssetID] = append(s.byAsset[ev.AssetID], idx)
	return nil
}

// GetTip returns the asset's most recently appended event, nil if none.
func (s *InMemoryStore) GetTip(_ context.Context, assetID id.AssetID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tip := s.tipLocked(assetID); tip != nil {
		cp := *tip
		return &cp, nil
	}
	return nil, nil
}

// Get returns the event with the given id, nil if absent.
func (s *InMemoryStore) Get(_ context.Context, eventID id.EventID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[eventID]
	if !ok {
		return nil, nil
	}
	cp := s.events[idx]
	return &cp, nil
}

// ListByAsset returns the asset's events in storage order.
func (s *InMemoryStore) ListByAsset(_ context.Context, assetID id.AssetID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byAsset[assetID]
	out := make([]Event, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Count returns the total number of stored events across all assets.
func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// EvictOldest removes the single globally-oldest event, payload included, so
// the retention cap actually bounds memory. Retention is lossy by design; the
// evicted event's successor becomes an orphaned chain head.
func (s *InMemoryStore) EvictOldest(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return nil
	}
	remaining := make([]Event, len(s.events)-1)
	copy(remaining, s.events[1:])
	s.events = remaining
	s.reindexLocked()
	return nil
}

// reindexLocked rebuilds the id and asset indexes after the backing slice
// shifts. Callers must hold s.mu.
func (s *InMemoryStore) reindexLocked() {
	s.byID = make(map[id.EventID]int, len(s.events))
	s.byAsset = make(map[id.AssetID][]int, len(s.byAsset))
	for i, ev := range s.events {
		s.byID[ev.EventID] = i
		s.byAsset[ev.AssetID] = append(s.byAsset[ev.AssetID], i)
	}
}

// tipLocked returns the asset's newest live event. Callers must hold s.mu.
func (s *InMemoryStore) tipLocked(assetID id.AssetID) *Event {
	idxs := s.byAsset[assetID]
	if len(idxs) == 0 {
		return nil
	}
	return &s.events[idxs[len(idxs)-1]]
}

func sameTip(tip *Event, prev *id.EventID) bool {
	if tip == nil {
		return prev == nil
	}
	return prev != nil && *prev == tip.EventID
}
