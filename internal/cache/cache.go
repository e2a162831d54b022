// Package cache holds the computed dashboard summary between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"classroom/internal/gradebook"
)

// DefaultKey is the Redis key the summary is stored under.
const DefaultKey = "classroom:dashboard"

// Summary caches a single dashboard summary.
//
// Every Invalidate advances a generation. A writer reads Generation before it
// loads the data the summary is computed from and passes it to Set; Set drops
// the summary when an Invalidate ran in between, so a slow refresh never
// overwrites a newer invalidation.
type Summary interface {
	Get(ctx context.Context) (gradebook.Summary, bool, error)
	Generation(ctx context.Context) (uint64, error)
	Set(ctx context.Context, gen uint64, s gradebook.Summary) (stored bool, err error)
	Invalidate(ctx context.Context) error
}

// Memory keeps the summary in process.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	value   gradebook.Summary
	expires time.Time
	ok      bool
	gen     uint64
}

// NewMemory creates an in-process cache. A ttl <= 0 keeps entries until invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now}
}

func (m *Memory) Get(context.Context) (gradebook.Summary, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return gradebook.Summary{}, false, nil
	}
	if m.ttl > 0 && !m.now().Before(m.expires) {
		m.ok = false
		return gradebook.Summary{}, false, nil
	}
	return m.value, true, nil
}

func (m *Memory) Generation(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *Memory) Set(_ context.Context, gen uint64, s gradebook.Summary) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false, nil
	}
	m.value, m.ok = s, true
	m.expires = m.now().Add(m.ttl)
	return true, nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok = false
	m.gen++
	return nil
}

// Redis stores the summary as JSON so every API replica and the worker share it.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed cache. A ttl <= 0 stores without expiry.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context) (gradebook.Summary, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return gradebook.Summary{}, false, nil
	}
	if err != nil {
		return gradebook.Summary{}, false, fmt.Errorf("cache get: %w", err)
	}
	var s gradebook.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		return gradebook.Summary{}, false, nil
	}
	return s, true, nil
}

func (r *Redis) genKey() string { return r.key + ":gen" }

func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.genKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Set stores s under WATCH on the generation key. A concurrent Invalidate
// either changes the generation before the check or aborts the transaction.
func (r *Redis) Set(ctx context.Context, gen uint64, s gradebook.Summary) (bool, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	stored := false
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, r.genKey()).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, raw, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, r.genKey())
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored, nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.genKey())
		pipe.Del(ctx, r.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
