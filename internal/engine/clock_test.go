package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_FirstRequestIsOne(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(1), c.Current())
}

func TestClock_ResumesAfterLoggedRequests(t *testing.T) {
	// A previous run logged requests 1..41.
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current(), "nothing issued yet in this run")
	assert.Equal(t, int64(42), c.Next())
	assert.Equal(t, int64(43), c.Next())
}

func TestClock_OrdersRequestsInABurst(t *testing.T) {
	c := NewClock()
	first, second, third := c.Next(), c.Next(), c.Next()

	require.Less(t, first, second)
	require.Less(t, second, third)
	assert.Equal(t, third, c.Current(), "Current reports the newest request")
	assert.Equal(t, third, c.Current(), "Current does not issue")
}

func TestClock_ConcurrentReadersSeeIssuedValues(t *testing.T) {
	c := NewClock()
	const requests = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range requests {
			c.Next()
		}
	}()

	last := int64(0)
	for c.Current() < requests {
		cur := c.Current()
		assert.GreaterOrEqual(t, cur, last, "readers never see the clock go back")
		last = cur
	}
	wg.Wait()
	assert.Equal(t, int64(requests), c.Current())
}
