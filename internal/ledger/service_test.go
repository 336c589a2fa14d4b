package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "veracity/pkg/domain"
	dErrors "veracity/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store *InMemoryStore
	svc   *Service
	ctx   context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.svc = NewService(s.store, nil, nil, nil, Config{
		AppendRetries: 25,
		AppendTimeout: 5 * time.Second,
	})
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestLogEventChainsPerAsset() {
	const n = 5
	var logged []id.EventID
	for i := 0; i < n; i++ {
		ev, err := s.svc.LogEvent(s.ctx, TypeCustodyTransferred, "asset-1", Actor{Kind: ActorService, ID: "importer"}, map[string]int{"hop": i})
		s.Require().NoError(err)
		logged = append(logged, ev.EventID)
	}

	history, err := s.svc.AssetHistory(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Require().Len(history, n)
	s.Require().NoError(VerifyChain(history))

	// Walking backward from the last event's prev pointer visits exactly the
	// n events in reverse insertion order.
	byID := make(map[id.EventID]Event, n)
	for _, ev := range history {
		byID[ev.EventID] = ev
	}
	cur := history[n-1]
	for i := n - 1; i > 0; i-- {
		s.Equal(logged[i], cur.EventID)
		s.Require().NotNil(cur.PrevEventID)
		cur = byID[*cur.PrevEventID]
	}
	s.Equal(logged[0], cur.EventID)
	s.Nil(cur.PrevEventID)
}

func (s *ServiceSuite) TestConcurrentAppendsSameAsset() {
	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.LogEvent(s.ctx, TypeCustodyTransferred, "asset-1", Actor{Kind: ActorService, ID: "writer"}, map[string]int{"writer": i})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(s.T(), err, "writer %d", i)
	}

	history, err := s.svc.AssetHistory(s.ctx, "asset-1")
	s.Require().NoError(err)
	s.Require().Len(history, writers)
	s.Require().NoError(VerifyChain(history))
}

func (s *ServiceSuite) TestPayloadHashCommitsToPayload() {
	ev, err := s.svc.LogEvent(s.ctx, TypeAssetRegistered, "asset-1", Actor{Kind: ActorSystem, ID: "seed"}, map[string]string{"serial": "XJ-42"})
	s.Require().NoError(err)
	s.Equal(HashPayload(ev.Payload), ev.PayloadHash)

	stored, err := s.svc.GetEvent(s.ctx, ev.EventID)
	s.Require().NoError(err)
	s.Equal(HashPayload(stored.Payload), stored.PayloadHash)
}

func (s *ServiceSuite) TestGetEventNotFound() {
	_, err := s.svc.GetEvent(s.ctx, id.NewEventID())
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestRetentionEvictsGloballyOldest() {
	svc := NewService(s.store, nil, nil, nil, Config{
		MaxEvents:     3,
		AppendRetries: 5,
		AppendTimeout: time.Second,
	})

	first, err := svc.LogEvent(s.ctx, TypeAssetRegistered, "asset-0", Actor{Kind: ActorSystem, ID: "seed"}, nil)
	s.Require().NoError(err)
	for i := 1; i < 5; i++ {
		_, err := svc.LogEvent(s.ctx, TypeAssetRegistered, id.AssetID("asset-"+string(rune('0'+i))), Actor{Kind: ActorSystem, ID: "seed"}, nil)
		s.Require().NoError(err)
	}

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)

	// Retention is lossy: the globally-oldest record is gone.
	_, err = svc.GetEvent(s.ctx, first.EventID)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestRetentionBoundsBackingStorage() {
	svc := NewService(s.store, nil, nil, nil, Config{
		MaxEvents:     3,
		AppendRetries: 5,
		AppendTimeout: time.Second,
	})

	const appends = 100
	for i := 0; i < appends; i++ {
		assetID := id.AssetID(fmt.Sprintf("asset-%d", i))
		_, err := svc.LogEvent(s.ctx, TypeAssetRegistered, assetID, Actor{Kind: ActorSystem, ID: "seed"}, map[string]int{"n": i})
		s.Require().NoError(err)
	}

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Len(s.store.events, 3)
}

// conflictStore always reports a moved tip, simulating a writer that can
// never win the race.
type conflictStore struct {
	*InMemoryStore
}

func (c *conflictStore) Append(context.Context, Event) error {
	return ErrTipConflict
}

func (s *ServiceSuite) TestAppendSurfacesConflictAfterRetries() {
	svc := NewService(&conflictStore{NewInMemoryStore()}, nil, nil, nil, Config{
		AppendRetries: 3,
		AppendTimeout: time.Second,
	})

	_, err := svc.LogEvent(s.ctx, TypeAssetRegistered, "asset-1", Actor{Kind: ActorSystem, ID: "seed"}, nil)
	s.Require().Error(err)
	s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestLogEventRequiresAssetID() {
	_, err := s.svc.LogEvent(s.ctx, TypeAssetRegistered, "", Actor{Kind: ActorSystem, ID: "seed"}, nil)
	s.Require().Error(err)
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, nil, nil, nil, Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.LogEvent(ctx, TypeCustodyTransferred, "asset-1", Actor{Kind: ActorService, ID: "w"}, map[string]int{"hop": i})
		require.NoError(t, err)
	}

	history, err := svc.AssetHistory(ctx, "asset-1")
	require.NoError(t, err)
	require.NoError(t, VerifyChain(history))

	tampered := make([]Event, len(history))
	copy(tampered, history)
	tampered[1].Payload = []byte(`{"hop":99}`)
	require.Error(t, VerifyChain(tampered))

	relinked := make([]Event, len(history))
	copy(relinked, history)
	bogus := id.NewEventID()
	relinked[2].PrevEventID = &bogus
	require.Error(t, VerifyChain(relinked))
}
