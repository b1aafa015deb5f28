package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/campusbite/campusbite-backend/pkg/logger"
)

// numberPrefix leads every order number, e.g. CB-20250831-0042.
const numberPrefix = "CB"

// counterTTL keeps yesterday's counter around long enough for clock skew.
const counterTTL = 48 * time.Hour

// dailyCounter is the slice of the redis client the allocator needs.
type dailyCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OrderNumberKey(day string) string
}

type redisAllocator struct {
	counter dailyCounter
	logg    *logger.Logger
	clock   func() time.Time
}

// NewNumberAllocator builds the redis-backed daily counter. When redis is
// unreachable it falls back to a time-derived number so submission never
// blocks on the counter.
func NewNumberAllocator(counter dailyCounter, logg *logger.Logger) (NumberAllocator, error) {
	if counter == nil {
		return nil, fmt.Errorf("counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &redisAllocator{counter: counter, logg: logg, clock: time.Now}, nil
}

func (a *redisAllocator) Next(ctx context.Context) (string, error) {
	now := a.clock().UTC()
	day := now.Format("20060102")

	seq, err := a.counter.IncrWithTTL(ctx, a.counter.OrderNumberKey(day), counterTTL)
	if err != nil {
		a.logg.Warn(ctx, "order number counter unavailable, using time-derived number")
		return fmt.Sprintf("%s-%s-T%09d", numberPrefix, day, now.UnixNano()%1_000_000_000), nil
	}
	return fmt.Sprintf("%s-%s-%04d", numberPrefix, day, seq), nil
}
