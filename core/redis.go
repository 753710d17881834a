package core

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DispatchStatsPrefix prefixes the per-variant hash of outcome counters.
const DispatchStatsPrefix = "gateway:dispatch:"

// DispatchStatsKey returns the Redis key for a dispatcher variant.
func DispatchStatsKey(variant string) string {
	return DispatchStatsPrefix + variant
}

// RedisClientRaw is the subset of go-redis used for dispatch stats.
type RedisClientRaw interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// statsQueueSize bounds the observations waiting for Redis; overflow is dropped.
const statsQueueSize = 256

type dispatchEvent struct {
	variant, outcome string
}

// RedisStats keeps dispatch outcome counters shared by every web instance. Writes happen on a
// single background goroutine so a slow Redis never delays a dispatch; call Close to flush.
type RedisStats struct {
	redis   RedisClientRaw
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan dispatchEvent
	done   chan struct{}
}

func NewRedisStats(client RedisClientRaw) *RedisStats {
	s := &RedisStats{
		redis:   client,
		timeout: 500 * time.Millisecond,
		events:  make(chan dispatchEvent, statsQueueSize),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// ObserveDispatch queues an outcome increment. It never blocks: when the queue is full or the
// stats are closed the observation is dropped.
func (s *RedisStats) ObserveDispatch(variant, method, outcome string, _ time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.events <- dispatchEvent{variant: variant, outcome: outcome}:
	default:
		log.Debug().Str("variant", variant).Str("outcome", outcome).Msg("dispatch stats queue full, dropping")
	}
}

// Close stops accepting observations and waits until queued ones are written.
func (s *RedisStats) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *RedisStats) loop() {
	defer close(s.done)
	for ev := range s.events {
		s.record(ev)
	}
}

func (s *RedisStats) record(ev dispatchEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.redis.HIncrBy(ctx, DispatchStatsKey(ev.variant), ev.outcome, 1).Err(); err != nil {
		log.Debug().Err(err).Str("variant", ev.variant).Str("outcome", ev.outcome).Msg("dispatch stats update failed")
	}
}

// DispatchCounts maps outcome -> count for one variant.
type DispatchCounts map[string]int64

// Variant returns the counters recorded for one variant.
func (s *RedisStats) Variant(ctx context.Context, variant string) (DispatchCounts, error) {
	raw, err := s.redis.HGetAll(ctx, DispatchStatsKey(variant)).Result()
	if err != nil {
		return nil, err
	}
	out := make(DispatchCounts, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out, nil
}

// Overview returns counters for both variants.
func (s *RedisStats) Overview(ctx context.Context) (map[string]DispatchCounts, error) {
	res := make(map[string]DispatchCounts, 2)
	for _, v := range []string{VariantServer, VariantClient} {
		c, err := s.Variant(ctx, v)
		if err != nil {
			return nil, err
		}
		res[v] = c
	}
	return res, nil
}
