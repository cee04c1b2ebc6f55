package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmtolibas/cafeline-backend/pkg/redis"
)

// Store persists session carts.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a cart store on the shared Redis client. The TTL
// refreshes on every save so active carts outlive idle ones.
func NewRedisStore(client *redis.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &cart, nil
}

func (s *redisStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
