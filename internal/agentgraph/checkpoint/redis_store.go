// Package checkpoint implements the C8 Conversation Store: a durable
// checkpointer for AgentState, keyed by ThreadId, backed by Redis. It is
// grounded on the construction idiom of the teacher repo's redis.SSEBus
// (env-driven address, a startup ping), generalized to hold checkpoint
// values plus a per-thread lease instead of a pub/sub channel.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/clinicerr"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

const (
	keyPrefix   = "clinicscribe:checkpoint:"
	leasePrefix = "clinicscribe:lease:"
	leaseTTL    = 30 * time.Second
)

type Store struct {
	log *logger.Logger
	rdb *goredis.Client
}

// New constructs a Store against REDIS_ADDR, pinging it at startup so a
// misconfigured checkpoint store fails at startup, not at first request
// (spec §6).
func New(log *logger.Logger) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("checkpoint: logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("checkpoint: missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", clinicerr.ErrCheckpointUnavailable, err)
	}
	return &Store{log: log.With("service", "checkpoint.Store"), rdb: rdb}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

// Load returns the last committed AgentState for threadID, or a fresh state
// with an empty user query if none exists yet.
func (s *Store) Load(ctx context.Context, threadID string) (domain.AgentState, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+threadID).Bytes()
	if err == goredis.Nil {
		return domain.NewAgentState(""), nil
	}
	if err != nil {
		return domain.AgentState{}, fmt.Errorf("%w: %v", clinicerr.ErrCheckpointUnavailable, err)
	}
	var state domain.AgentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.AgentState{}, fmt.Errorf("checkpoint: decode state for %q: %w", threadID, err)
	}
	return state, nil
}

// Save atomically snapshots state for threadID (spec §4.8).
func (s *Store) Save(ctx context.Context, threadID string, state domain.AgentState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: encode state for %q: %w", threadID, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+threadID, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", clinicerr.ErrCheckpointUnavailable, err)
	}
	return nil
}

// WithLease runs fn while holding threadID's lease, enforcing at-most-one
// in-flight invocation per thread (spec §4.8, property P6).
func (s *Store) WithLease(ctx context.Context, threadID string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	key := leasePrefix + threadID

	acquired, err := s.rdb.SetNX(ctx, key, token, leaseTTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", clinicerr.ErrCheckpointUnavailable, err)
	}
	if !acquired {
		return fmt.Errorf("checkpoint: thread %q already has an invocation in flight", threadID)
	}
	defer s.releaseLease(context.Background(), key, token)

	return fn(ctx)
}

// releaseLease clears the lease only if it still holds our token, so a
// long-running caller never releases a lease another invocation acquired
// after ours expired.
func (s *Store) releaseLease(ctx context.Context, key, token string) {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`
	if err := s.rdb.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		s.log.Warn("checkpoint: release lease failed", "key", key, "error", err.Error())
	}
}
