package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"veracity/internal/ledger/metrics"
	id "veracity/pkg/domain"
	dErrors "veracity/pkg/domain-errors"
	"veracity/pkg/requestcontext"
)

// Config tunes the append path and retention.
type Config struct {
	// MaxEvents caps the global event count; 0 disables eviction.
	MaxEvents int

	// AppendRetries bounds how many times a tip conflict is retried before
	// the append fails with a conflict error.
	AppendRetries int

	// AppendTimeout bounds one whole LogEvent call so request handlers
	// cannot hang on a contended or slow store.
	AppendTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxEvents:     0,
		AppendRetries: 5,
		AppendTimeout: 2 * time.Second,
	}
}

// Service owns the read-then-append protocol on top of a Store. It is the only
// writer of ledger events; evaluation code stays pure and hands results here.
type Service struct {
	store   Store
	cache   *EventCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config
}

// NewService constructs the ledger service. cache may be nil.
func NewService(store Store, cache *EventCache, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	if cfg.AppendRetries <= 0 {
		cfg.AppendRetries = DefaultConfig().AppendRetries
	}
	if cfg.AppendTimeout <= 0 {
		cfg.AppendTimeout = DefaultConfig().AppendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		cache:   cache,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
	}
}

// LogEvent appends a new event to the asset's chain: it reads the current tip,
// stamps prev_event_id, hashes the payload, and compare-and-appends, retrying
// with backoff when another writer moves the tip first. Existing events are
// never mutated.
func (s *Service) LogEvent(ctx context.Context, eventType EventType, assetID id.AssetID, actor Actor, payload any) (*Event, error) {
	if assetID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "asset id is required")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "marshal event payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AppendTimeout)
	defer cancel()

	start := time.Now()
	defer func() { s.metrics.ObserveAppendLatency(time.Since(start)) }()

	occurredAt := requestcontext.Now(ctx)
	backoff := 2 * time.Millisecond

	for attempt := 0; attempt < s.cfg.AppendRetries; attempt++ {
		tip, err := s.store.GetTip(ctx, assetID)
		if err != nil {
			s.metrics.IncrementAppend(string(eventType), "error")
			return nil, dErrors.Wrap(dErrors.CodeInternal, "read asset tip", err)
		}

		ev := Event{
			EventID:     id.NewEventID(),
			AssetID:     assetID,
			Type:        eventType,
			OccurredAt:  occurredAt,
			Actor:       actor,
			PayloadHash: HashPayload(raw),
			Payload:     raw,
		}
		if tip != nil {
			prev := tip.EventID
			ev.PrevEventID = &prev
		}

		err = s.store.Append(ctx, ev)
		if err == nil {
			s.metrics.IncrementAppend(string(eventType), "ok")
			s.enforceRetention(ctx)
			s.cachePut(ctx, ev)
			return &ev, nil
		}
		if !errors.Is(err, ErrTipConflict) {
			s.metrics.IncrementAppend(string(eventType), "error")
			return nil, dErrors.Wrap(dErrors.CodeInternal, "append event", err)
		}

		s.metrics.IncrementConflict()
		select {
		case <-ctx.Done():
			s.metrics.IncrementAppend(string(eventType), "conflict")
			return nil, dErrors.Wrap(dErrors.CodeConflict, "ledger append timed out under contention", ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < 50*time.Millisecond {
			backoff *= 2
		}
	}

	s.metrics.IncrementAppend(string(eventType), "conflict")
	s.logger.WarnContext(ctx, "ledger append exhausted retries",
		"asset_id", assetID,
		"type", eventType,
		"retries", s.cfg.AppendRetries,
	)
	return nil, dErrors.New(dErrors.CodeConflict, "ledger append lost the race repeatedly, try again")
}

// GetEvent returns the event with the given id, or a not-found error.
func (s *Service) GetEvent(ctx context.Context, eventID id.EventID) (*Event, error) {
	if s.cache != nil {
		if ev, ok := s.cache.Get(ctx, eventID); ok {
			return ev, nil
		}
	}
	ev, err := s.store.Get(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "read event", err)
	}
	if ev == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no such event")
	}
	s.cachePut(ctx, *ev)
	return ev, nil
}

// AssetHistory returns all of the asset's events in storage order.
func (s *Service) AssetHistory(ctx context.Context, assetID id.AssetID) ([]Event, error) {
	history, err := s.store.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list asset history", err)
	}
	return history, nil
}

// enforceRetention evicts the globally-oldest events while over the cap.
// Eviction is lossy by design and favors recent activity; it is not a
// correctness guarantee.
func (s *Service) enforceRetention(ctx context.Context) {
	if s.cfg.MaxEvents <= 0 {
		return
	}
	for {
		count, err := s.store.Count(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "retention count failed", "error", err)
			return
		}
		if count <= s.cfg.MaxEvents {
			return
		}
		if err := s.store.EvictOldest(ctx); err != nil {
			s.logger.WarnContext(ctx, "retention eviction failed", "error", err)
			return
		}
		s.metrics.IncrementEviction()
	}
}

func (s *Service) cachePut(ctx context.Context, ev Event) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, ev); err != nil {
		s.logger.DebugContext(ctx, "event cache put failed", "event_id", ev.EventID, "error", err)
	}
}
