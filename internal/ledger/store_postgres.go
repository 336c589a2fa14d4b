package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "veracity/pkg/domain"
)

// PostgresStore backs the ledger with a transactional, ordered table. The
// per-asset chain invariant is enforced by a guarded insert: the row only
// lands if the asset's current tip still equals the event's prev_event_id,
// so two racing appends cannot both reference the same tip.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a ledger store on an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the ledger table if it does not exist. seq provides the
// global storage order used for history listing and retention eviction.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS ledger_events (
			seq           BIGSERIAL PRIMARY KEY,
			event_id      UUID NOT NULL UNIQUE,
			asset_id      TEXT NOT NULL,
			event_type    TEXT NOT NULL,
			occurred_at   TIMESTAMPTZ NOT NULL,
			actor_kind    TEXT NOT NULL,
			actor_id      TEXT NOT NULL,
			prev_event_id UUID,
			payload_hash  TEXT NOT NULL,
			payload       JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS ledger_events_asset_idx ON ledger_events (asset_id, seq);
		CREATE UNIQUE INDEX IF NOT EXISTS ledger_events_prev_idx
			ON ledger_events (prev_event_id) WHERE prev_event_id IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS ledger_events_chain_head_idx
			ON ledger_events (asset_id) WHERE prev_event_id IS NULL;
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

// Append inserts the event guarded by a tip check in the same statement.
func (s *PostgresStore) Append(ctx context.Context, ev Event) error {
	const query = `
		INSERT INTO ledger_events
			(event_id, asset_id, event_type, occurred_at, actor_kind, actor_id, prev_event_id, payload_hash, payload)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE (
			SELECT event_id FROM ledger_events
			WHERE asset_id = $2
			ORDER BY seq DESC
			LIMIT 1
		) IS NOT DISTINCT FROM $7
	`
	var prev any
	if ev.PrevEventID != nil {
		prev = uuid.UUID(*ev.PrevEventID)
	}
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(ev.EventID),
		ev.AssetID.String(),
		string(ev.Type),
		ev.OccurredAt,
		string(ev.Actor.Kind),
		ev.Actor.ID,
		prev,
		ev.PayloadHash,
		[]byte(ev.Payload),
	)
	if err != nil {
		// The unique indexes on prev_event_id and on the chain head catch
		// the race the guarded SELECT cannot see under READ COMMITTED.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTipConflict
		}
		return fmt.Errorf("insert ledger event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	if affected == 0 {
		return ErrTipConflict
	}
	return nil
}

// GetTip returns the asset's newest event, nil if the asset has none.
func (s *PostgresStore) GetTip(ctx context.Context, assetID id.AssetID) (*Event, error) {
	const query = selectEvent + `WHERE asset_id = $1 ORDER BY seq DESC LIMIT 1`
	return s.queryOne(ctx, query, assetID.String())
}

// Get returns the event with the given id, nil if absent.
func (s *PostgresStore) Get(ctx context.Context, eventID id.EventID) (*Event, error) {
	const query = selectEvent + `WHERE event_id = $1`
	return s.queryOne(ctx, query, uuid.UUID(eventID))
}

// ListByAsset returns the asset's events in storage order.
func (s *PostgresStore) ListByAsset(ctx context.Context, assetID id.AssetID) ([]Event, error) {
	const query = selectEvent + `WHERE asset_id = $1 ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, query, assetID.String())
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// Count returns the total number of stored events.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM ledger_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger events: %w", err)
	}
	return n, nil
}

// EvictOldest deletes the single globally-oldest event.
func (s *PostgresStore) EvictOldest(ctx context.Context) error {
	const query = `
		DELETE FROM ledger_events
		WHERE seq = (SELECT min(seq) FROM ledger_events)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("evict oldest ledger event: %w", err)
	}
	return nil
}

const selectEvent = `
	SELECT event_id, asset_id, event_type, occurred_at, actor_kind, actor_id, prev_event_id, payload_hash, payload
	FROM ledger_events
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*Event, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ev, err
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		ev        Event
		eventID   uuid.UUID
		assetID   string
		evType    string
		actorKind string
		prev      uuid.NullUUID
		payload   []byte
	)
	err := row.Scan(&eventID, &assetID, &evType, &ev.OccurredAt, &actorKind, &ev.Actor.ID, &prev, &ev.PayloadHash, &payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan ledger event: %w", err)
	}
	ev.EventID = id.EventID(eventID)
	ev.AssetID = id.AssetID(assetID)
	ev.Type = EventType(evType)
	ev.Actor.Kind = ActorKind(actorKind)
	if prev.Valid {
		p := id.EventID(prev.UUID)
		ev.PrevEventID = &p
	}
	ev.Payload = payload
	return &ev, nil
}
