package orders

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

type stubCounter struct {
	seq  int64
	err  error
	keys []string
}

func (s *stubCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return 0, s.err
	}
	return s.seq, nil
}

func (s *stubCounter) OrderNumberKey(day string) string {
	return "cb:counter:order_number:" + day
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextUsesDailyCounter(t *testing.T) {
	counter := &stubCounter{seq: 42}
	alloc := &redisAllocator{
		counter: counter,
		logg:    testLogger(),
		clock:   fixedClock(time.Date(2025, 8, 31, 12, 30, 0, 0, time.UTC)),
	}

	number, err := alloc.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "CB-20250831-0042" {
		t.Fatalf("expected CB-20250831-0042, got %s", number)
	}
	if len(counter.keys) != 1 || counter.keys[0] != "cb:counter:order_number:20250831" {
		t.Fatalf("unexpected counter keys: %v", counter.keys)
	}
}

func TestNextFallsBackWhenCounterFails(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	now := time.Date(2025, 8, 31, 12, 30, 0, 123456789, time.UTC)
	alloc := &redisAllocator{counter: counter, logg: testLogger(), clock: fixedClock(now)}

	number, err := alloc.Next(context.Background())
	if err != nil {
		t.Fatalf("fallback must not surface the counter error, got %v", err)
	}
	if !regexp.MustCompile(`^CB-20250831-T\d{9}$`).MatchString(number) {
		t.Fatalf("expected time-derived number, got %s", number)
	}
}

func TestNewNumberAllocatorValidation(t *testing.T) {
	if _, err := NewNumberAllocator(nil, testLogger()); err == nil {
		t.Fatal("expected error for nil counter")
	}
	if _, err := NewNumberAllocator(&stubCounter{}, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
