package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusbite/campusbite-backend/pkg/redis"
)

// redisPersister stores one JSON snapshot per customer under the cart key,
// with a TTL so abandoned carts age out on their own.
type redisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister builds the redis-backed snapshot store.
func NewRedisPersister(client *redis.Client, ttl time.Duration) (Persister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisPersister{client: client, ttl: ttl}, nil
}

func (p *redisPersister) Save(ctx context.Context, customerID uuid.UUID, cart Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return p.client.Set(ctx, p.client.CartKey(customerID.String()), payload, p.ttl)
}

func (p *redisPersister) Delete(ctx context.Context, customerID uuid.UUID) error {
	return p.client.Del(ctx, p.client.CartKey(customerID.String()))
}

func (p *redisPersister) Load(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	raw, err := p.client.Get(ctx, p.client.CartKey(customerID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &cart, nil
}
