package ledger

import (
	"context"
	"errors"

	id "veracity/pkg/domain"
)

// ErrTipConflict is returned by Append when the asset's tip changed between
// the caller reading it and the append landing. The service retries on it.
var ErrTipConflict = errors.New("ledger: asset tip changed during append")

// Store is the swappable storage behind the ledger. Append is a
// compare-and-append: the store must reject the event with ErrTipConflict
// unless its PrevEventID equals the asset's current tip (both nil counts as
// equal). That check and the insert are one atomic operation, which is what
// keeps each asset's history a single chain under concurrent writers.
type Store interface {
	Append(ctx context.Context, ev Event) error
	GetTip(ctx context.Context, assetID id.AssetID) (*Event, error)
	Get(ctx context.Context, eventID id.EventID) (*Event, error)
	ListByAsset(ctx context.Context, assetID id.AssetID) ([]Event, error)
	Count(ctx context.Context) (int, error)
	EvictOldest(ctx context.Context) error
}
