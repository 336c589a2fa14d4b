package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	id "veracity/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newEvent(assetID id.AssetID, prev *id.EventID) Event {
	payload := json.RawMessage(`{"n":1}`)
	return Event{
		EventID:     id.NewEventID(),
		AssetID:     assetID,
		Type:        TypeAssetRegistered,
		Actor:       Actor{Kind: ActorSystem, ID: "test"},
		PrevEventID: prev,
		PayloadHash: HashPayload(payload),
		Payload:     payload,
	}
}

func (s *InMemoryStoreSuite) TestAppendAndTip() {
	first := s.newEvent("asset-1", nil)
	s.Require().NoError(s.store.Append(s.ctx, first))

	tip, err := s.store.GetTip(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Require().NotNil(tip)
	s.Equal(first.EventID, tip.EventID)

	prev := first.EventID
	second := s.newEvent("asset-1", &prev)
	s.Require().NoError(s.store.Append(s.ctx, second))

	tip, err = s.store.GetTip(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Equal(second.EventID, tip.EventID)
}

func (s *InMemoryStoreSuite) TestAppendRejectsStaleTip() {
	first := s.newEvent("asset-1", nil)
	s.Require().NoError(s.store.Append(s.ctx, first))

	// Another first event for the same asset must conflict.
	s.ErrorIs(s.store.Append(s.ctx, s.newEvent("asset-1", nil)), ErrTipConflict)

	// An event pointing at a non-tip id must conflict too.
	bogus := id.NewEventID()
	s.ErrorIs(s.store.Append(s.ctx, s.newEvent("asset-1", &bogus)), ErrTipConflict)
}

func (s *InMemoryStoreSuite) TestDifferentAssetsIndependent() {
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent("asset-1", nil)))
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent("asset-2", nil)))

	tip, err := s.store.GetTip(s.ctx, "asset-2")
	s.Require().NoError(err)
	s.Require().NotNil(tip)
	s.Equal(id.AssetID("asset-2"), tip.AssetID)
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	ev, err := s.store.Get(s.ctx, id.NewEventID())
	s.Require().NoError(err)
	s.Nil(ev)
}

func (s *InMemoryStoreSuite) TestListByAssetInOrder() {
	var prev *id.EventID
	var want []id.EventID
	for range 4 {
		ev := s.newEvent("asset-1", prev)
		s.Require().NoError(s.store.Append(s.ctx, ev))
		p := ev.EventID
		prev = &p
		want = append(want, ev.EventID)
	}

	history, err := s.store.ListByAsset(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Require().Len(history, 4)
	for i, ev := range history {
		s.Equal(want[i], ev.EventID)
	}
}

func (s *InMemoryStoreSuite) TestEvictOldest() {
	first := s.newEvent("asset-1", nil)
	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent("asset-2", nil)))

	s.Require().NoError(s.store.EvictOldest(s.ctx))

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	gone, err := s.store.Get(s.ctx, first.EventID)
	s.Require().NoError(err)
	s.Nil(gone)

	history, err := s.store.ListByAsset(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *InMemoryStoreSuite) TestEvictOldestOnEmptyStore() {
	s.Require().NoError(s.store.EvictOldest(s.ctx))
}

// Eviction must drop the event data itself, not just index entries, or the
// retention cap never bounds memory.
func (s *InMemoryStoreSuite) TestEvictOldestReleasesBackingStorage() {
	const total = 10
	for i := 0; i < total; i++ {
		assetID := id.AssetID(fmt.Sprintf("asset-%d", i))
		s.Require().NoError(s.store.Append(s.ctx, s.newEvent(assetID, nil)))
	}
	for i := 0; i < total-3; i++ {
		s.Require().NoError(s.store.EvictOldest(s.ctx))
	}

	s.Len(s.store.events, 3)
	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)

	// The survivors are the newest three, still fully readable.
	for i := total - 3; i < total; i++ {
		history, err := s.store.ListByAsset(s.ctx, id.AssetID(fmt.Sprintf("asset-%d", i)))
		s.Require().NoError(err)
		s.Len(history, 1)
	}
}
