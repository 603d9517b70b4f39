package payment

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const eventKeyPrefix = "webhook:event:"

// ProcessedEventStore tracks gateway event ids seen within a trailing
// window so re-delivered events can be short-circuited before they reach
// the dispatcher. It is a latency optimization, not the correctness
// mechanism: the order state machine's conditional updates absorb any
// duplicate that slips through, so implementations may lose entries on
// restart or expiry without corrupting state.
type ProcessedEventStore interface {
	// ShouldProcess reports whether the event id has not been seen yet.
	// Ids with no stable identity are always processable.
	ShouldProcess(ctx context.Context, eventID string) bool

	// MarkProcessed records the event id for the trailing window.
	MarkProcessed(ctx context.Context, eventID string)

	// Stop releases any background resources.
	Stop()
}

// RedisEventStore keeps the processed set in Redis so all instances
// share one view of the retry window.
type RedisEventStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisEventStore creates a Redis-backed processed event store.
func NewRedisEventStore(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisEventStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisEventStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisEventStore) ShouldProcess(ctx context.Context, eventID string) bool {
	if eventID == "" || eventID == EventIDUnknown {
		return true
	}
	n, err := s.client.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		// A cache miss is safer than dropping a genuine event. The
		// state machine handles the duplicate if this was one.
		s.logger.Warn("idempotency check failed, treating as new",
			zap.String("event_id", eventID),
			zap.Error(err))
		return true
	}
	return n == 0
}

func (s *RedisEventStore) MarkProcessed(ctx context.Context, eventID string) {
	if eventID == "" || eventID == EventIDUnknown {
		return
	}
	if err := s.client.Set(ctx, eventKeyPrefix+eventID, "1", s.ttl).Err(); err != nil {
		s.logger.Warn("failed to record processed event",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

func (s *RedisEventStore) Stop() {}

// MemoryEventStore is a process-local fallback used when Redis is not
// configured. Entries expire via a background sweep.
type MemoryEventStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewMemoryEventStore creates an in-memory processed event store with a
// periodic expiry sweep.
func NewMemoryEventStore(ttl time.Duration) *MemoryEventStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &MemoryEventStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		ticker:  time.NewTicker(10 * time.Minute),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryEventStore) ShouldProcess(_ context.Context, eventID string) bool {
	if eventID == "" || eventID == EventIDUnknown {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.entries[eventID]
	if !ok {
		return true
	}
	return time.Now().After(expiry)
}

func (s *MemoryEventStore) MarkProcessed(_ context.Context, eventID string) {
	if eventID == "" || eventID == EventIDUnknown {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[eventID] = time.Now().Add(s.ttl)
}

// Stop halts the background sweep. Safe to call more than once.
func (s *MemoryEventStore) Stop() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

func (s *MemoryEventStore) sweep() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, expiry := range s.entries {
				if now.After(expiry) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
