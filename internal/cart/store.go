package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/redisx"
)

// RedisStore keeps one cart per session. A cart lives as long as the
// session key does; every save refreshes the TTL.
type RedisStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Redis: rdb, TTL: redisx.TTLCart}
}

type snapshot struct {
	Items []Item `json:"items"`
}

// Load returns the session's cart, or an empty cart when none is stored.
func (s *RedisStore) Load(ctx context.Context, session string) (*Cart, error) {
	raw, err := s.Redis.Get(ctx, redisx.CartKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", session, err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", session, err)
	}
	return New(snap.Items...), nil
}

// Save stores c, or deletes the key when c is empty.
func (s *RedisStore) Save(ctx context.Context, session string, c *Cart) error {
	key := redisx.CartKey(session)
	if c.IsEmpty() {
		if err := s.Redis.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete cart %s: %w", session, err)
		}
		return nil
	}
	b, err := json.Marshal(snapshot{Items: c.Items()})
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", session, err)
	}
	if err := s.Redis.Set(ctx, key, b, s.TTL).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", session, err)
	}
	return nil
}

// LockCheckout makes sure a session runs one checkout at a time, so a
// double submit cannot place the same items twice. Call unlock when the
// checkout is over.
func (s *RedisStore) LockCheckout(ctx context.Context, session string) (unlock func(), err error) {
	key := redisx.CheckoutKey(session)
	ok, err := redisx.MarkOnce(ctx, s.Redis, key, redisx.TTLCheckout)
	if err != nil {
		return nil, fmt.Errorf("lock checkout %s: %w", session, err)
	}
	if !ok {
		return nil, apperr.Conflictf("a checkout is already in progress for this session")
	}
	return func() { _ = redisx.Unmark(context.WithoutCancel(ctx), s.Redis, key) }, nil
}
