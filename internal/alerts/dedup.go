// FilePath: internal/alerts/dedup.go
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSuppressionTTL is the window during which repeat alerts for the
// same reading are swallowed.
const DefaultSuppressionTTL = 1800 * time.Second

// AlertKey builds the suppression key for one IoT reading. Keyed by the
// reading id, not the farm: a fresh reading in the same severity state
// is eligible for a fresh notification, while repeated polls against
// the same unread reading stay silent.
func AlertKey(readingID string) string {
	return fmt.Sprintf("alert_iot_%s", readingID)
}

// Deduplicator decides whether an alert key may fire. Acquire returns
// true exactly once per key per TTL window.
type Deduplicator interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisDeduplicator backs the suppression window with Redis so it
// survives restarts and is shared between instances.
type RedisDeduplicator struct {
	client *redis.Client
}

func NewRedisDeduplicator(client *redis.Client) *RedisDeduplicator {
	return &RedisDeduplicator{client: client}
}

func (d *RedisDeduplicator) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// MemoryDeduplicator is the in-process fallback used when Redis is not
// configured and in tests. Suppression state is lost on restart.
type MemoryDeduplicator struct {
	mu   sync.Mutex
	max  int
	seen map[string]time.Time
}

func NewMemoryDeduplicator(max int) *MemoryDeduplicator {
	if max <= 0 {
		max = 10000
	}
	return &MemoryDeduplicator{max: max, seen: make(map[string]time.Time, max)}
}

func (d *MemoryDeduplicator) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return true, nil
	}

	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)

	if len(d.seen) > d.max {
		for k, v := range d.seen {
			if now.After(v) {
				delete(d.seen, k)
			}
			if len(d.seen) <= d.max {
				break
			}
		}
	}
	return true, nil
}
