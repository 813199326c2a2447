package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_StaysPut(t *testing.T) {
	clock := NewFixedClock(DefaultNow)
	assert.Equal(t, DefaultNow, clock.Now())
	assert.Equal(t, DefaultNow, clock.Now())
}

func TestFixedClock_SetAndAdvance(t *testing.T) {
	clock := NewFixedClock(DefaultNow)

	clock.Advance(48 * time.Hour)
	assert.Equal(t, DefaultNow.Add(48*time.Hour), clock.Now())

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "req-0001", ids.Next())
	assert.Equal(t, "req-0002", ids.Next())

	custom := NewSequentialIDs("cli")
	assert.Equal(t, "cli-0001", custom.Next())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs("t")
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := ids.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000, "every id is unique")
}
