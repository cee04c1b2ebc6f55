package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmtolibas/cafeline-backend/pkg/redis"
)

// PossessionStore tracks which order codes an anonymous session placed. The
// list is the only thing that authorizes a guest to read an order, so it
// lives alongside the cart in Redis with the same TTL.
type PossessionStore interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID, orderCode string) error
}

type redisPossessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPossessionStore builds a possession store on the shared Redis client.
func NewPossessionStore(client *redis.Client, ttl time.Duration) (PossessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("possession ttl must be positive")
	}
	return &redisPossessionStore{client: client, ttl: ttl}, nil
}

func (s *redisPossessionStore) List(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := s.client.Get(ctx, s.client.MyOrdersKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading order possession list: %w", err)
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, fmt.Errorf("decoding order possession list: %w", err)
	}
	return codes, nil
}

func (s *redisPossessionStore) Add(ctx context.Context, sessionID, orderCode string) error {
	codes, err := s.List(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if code == orderCode {
			return nil
		}
	}
	codes = append(codes, orderCode)
	payload, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("encoding order possession list: %w", err)
	}
	if err := s.client.Set(ctx, s.client.MyOrdersKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving order possession list: %w", err)
	}
	return nil
}
