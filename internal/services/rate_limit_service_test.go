package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitCheckUnseenIdentifier(t *testing.T) {
	rl := NewRateLimitService(10)

	status := rl.Check("203.0.113.7")
	assert.True(t, status.Allowed)
	assert.Equal(t, 0, status.Count)
	assert.Equal(t, 10, status.Remaining)
}

func TestRateLimitConsumeSequence(t *testing.T) {
	limit := 5
	rl := NewRateLimitService(limit)

	for n := 1; n <= limit; n++ {
		status := rl.Consume("client-a")
		assert.Equal(t, n, status.Count)
		assert.Equal(t, limit-n, status.Remaining)

		after := rl.Check("client-a")
		assert.Equal(t, n < limit, after.Allowed)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	rl := NewRateLimitService(3)

	for i := 0; i < 3; i++ {
		rl.Consume("client-a")
	}

	status := rl.Check("client-a")
	assert.False(t, status.Allowed)
	assert.Equal(t, 3, status.Count)
	assert.Equal(t, 0, status.Remaining)
}

func TestRateLimitCheckHasNoSideEffects(t *testing.T) {
	rl := NewRateLimitService(2)

	for i := 0; i < 50; i++ {
		rl.Check("client-a")
	}

	status := rl.Consume("client-a")
	assert.Equal(t, 1, status.Count)
	assert.Equal(t, 1, status.Remaining)
}

func TestRateLimitDateRollover(t *testing.T) {
	current := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	rl := NewRateLimitService(2, WithClock(now))

	rl.Consume("client-a")
	rl.Consume("client-a")
	require.False(t, rl.Check("client-a").Allowed)

	// Two minutes later it is a new UTC day
	mu.Lock()
	current = current.Add(2 * time.Minute)
	mu.Unlock()

	status := rl.Check("client-a")
	assert.True(t, status.Allowed)
	assert.Equal(t, 0, status.Count)
	assert.Equal(t, 2, status.Remaining)

	first := rl.Consume("client-a")
	assert.Equal(t, 1, first.Count)
}

func TestRateLimitSweepKeepsCurrentDay(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	rl := NewRateLimitService(5, WithClock(now))

	rl.Consume("stale-client")
	rl.Consume("stale-client")

	mu.Lock()
	current = current.AddDate(0, 0, 1)
	mu.Unlock()

	rl.Consume("fresh-client")
	rl.Consume("fresh-client")
	rl.Consume("fresh-client")

	rl.Sweep()

	fresh := rl.Check("fresh-client")
	assert.Equal(t, 3, fresh.Count)
	assert.Equal(t, 2, fresh.Remaining)

	stale := rl.Check("stale-client")
	assert.True(t, stale.Allowed)
	assert.Equal(t, 0, stale.Count)
}

func TestRateLimitTwoMessageScenario(t *testing.T) {
	rl := NewRateLimitService(2)

	require.True(t, rl.Check("A").Allowed)
	first := rl.Consume("A")
	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 1, first.Remaining)

	require.True(t, rl.Check("A").Allowed)
	second := rl.Consume("A")
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, 0, second.Remaining)

	third := rl.Check("A")
	assert.False(t, third.Allowed)
	assert.Equal(t, 0, third.Remaining)
}

func TestRateLimitIndependentIdentifiers(t *testing.T) {
	rl := NewRateLimitService(1)

	rl.Consume("client-a")
	assert.False(t, rl.Check("client-a").Allowed)
	assert.True(t, rl.Check("client-b").Allowed)
}

func TestRateLimitConcurrentConsume(t *testing.T) {
	const workers = 8
	const perWorker = 25

	rl := NewRateLimitService(workers * perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rl.Consume("shared")
			}
		}()
	}
	wg.Wait()

	status := rl.Check("shared")
	assert.Equal(t, workers*perWorker, status.Count)
	assert.Equal(t, 0, status.Remaining)
	assert.False(t, status.Allowed)
}

func TestRateLimitSweepManyIdentifiers(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	rl := NewRateLimitService(5, WithClock(now))
	for i := 0; i < 100; i++ {
		rl.Consume(fmt.Sprintf("client-%d", i))
	}

	mu.Lock()
	current = current.AddDate(0, 0, 1)
	mu.Unlock()

	rl.Sweep()

	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, rl.Check(fmt.Sprintf("client-%d", i)).Count)
	}
}
