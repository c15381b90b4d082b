package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtBase(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewDeterministicClock(base)

	assert.Equal(t, base, clock.Next())
	assert.Equal(t, base.Add(time.Second), clock.Next())
	assert.Equal(t, int64(2), clock.Count())
}

func TestDeterministicClock_ZeroBaseUsesDefault(t *testing.T) {
	clock := NewDeterministicClock(time.Time{})
	assert.Equal(t, DefaultBase, clock.Next())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(time.Time{})

	clock.Next()
	clock.Next()
	clock.Next()
	assert.Equal(t, int64(3), clock.Count())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Count())
	assert.Equal(t, DefaultBase, clock.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(time.Time{})
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				ts := clock.Next()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every timestamp handed out is distinct
	require.Len(t, seen, numGoroutines*callsPerGoroutine)
	assert.Equal(t, int64(numGoroutines*callsPerGoroutine), clock.Count())
}
