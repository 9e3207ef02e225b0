// FilePath: internal/telegram/tokens.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// LinkTokenTTL is how long a deep-link token stays redeemable.
const LinkTokenTTL = 15 * time.Minute

// TokenStore holds short-lived deep-link tokens mapping to user ids. A
// token is redeemable exactly once.
type TokenStore interface {
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Redeem(ctx context.Context, token string) (int64, bool, error)
}

// NewLinkToken mints an opaque token for the /start deep link.
func NewLinkToken() string {
	return nuts.NID("tgl", 16)
}

// DeepLink builds the t.me URL a user opens to bind their chat.
func DeepLink(botUsername, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, token)
}

// RedisTokenStore keeps tokens in Redis so any instance can redeem them.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(token string) string {
	return "tg_link_" + token
}

func (s *RedisTokenStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(token), userID, ttl).Err()
}

func (s *RedisTokenStore) Redeem(ctx context.Context, token string) (int64, bool, error) {
	raw, err := s.client.GetDel(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return userID, true, nil
}

// MemoryTokenStore is the single-instance fallback used when Redis is
// not configured and in tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

type memoryToken struct {
	userID  int64
	expires time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]memoryToken{}}
}

func (s *MemoryTokenStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryToken{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Redeem(ctx context.Context, token string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return 0, false, nil
	}
	delete(s.tokens, token)
	if time.Now().After(entry.expires) {
		return 0, false, nil
	}
	return entry.userID, true, nil
}
