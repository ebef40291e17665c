package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/testutil"
)

func newTestDebouncer(clk *testutil.FakeClock) (*debouncer, *[]uint64) {
	var posted []uint64
	d := newDebouncer(DefaultQuietPeriod,
		func(dur time.Duration, f func()) Timer { return clk.AfterFunc(dur, f) },
		func(gen uint64) { posted = append(posted, gen) })
	return d, &posted
}

func TestDebouncer_States(t *testing.T) {
	clk := testutil.NewFakeClock()
	d, posted := newTestDebouncer(clk)

	assert.Equal(t, SchedulerIdle, d.state)
	d.schedule()
	assert.Equal(t, SchedulerArmed, d.state)
	assert.True(t, d.armed())

	clk.Advance(DefaultQuietPeriod)
	require.Equal(t, []uint64{1}, *posted)
	require.True(t, d.fire(1))
	assert.Equal(t, SchedulerFiring, d.state)

	d.done()
	assert.Equal(t, SchedulerIdle, d.state)
}

func TestDebouncer_RescheduleStopsPendingTimer(t *testing.T) {
	clk := testutil.NewFakeClock()
	d, posted := newTestDebouncer(clk)

	d.schedule()
	clk.Advance(300 * time.Millisecond)
	d.schedule()
	clk.Advance(300 * time.Millisecond)
	assert.Empty(t, *posted, "first timer was stopped")
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, []uint64{2}, *posted)
}

func TestDebouncer_SupersededGenerationIgnored(t *testing.T) {
	clk := testutil.NewFakeClock()
	d, _ := newTestDebouncer(clk)

	d.schedule()
	d.schedule()
	assert.False(t, d.fire(1), "old generation")
	assert.True(t, d.armed())
	assert.True(t, d.fire(2))
	assert.False(t, d.fire(2), "already firing")
}

func TestDebouncer_BypassCancelsTimer(t *testing.T) {
	clk := testutil.NewFakeClock()
	d, posted := newTestDebouncer(clk)

	d.schedule()
	d.bypass()
	assert.Equal(t, SchedulerFiring, d.state)
	assert.False(t, d.fire(1))

	clk.Advance(time.Second)
	assert.Empty(t, *posted)
	assert.Equal(t, 0, clk.Pending())
}
