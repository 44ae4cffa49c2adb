package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)

type counter struct {
	n    atomic.Int32
	runs chan struct{}
}

func newCounter() *counter { return &counter{runs: make(chan struct{}, 16)} }

func (c *counter) job(context.Context) {
	c.n.Add(1)
	c.runs <- struct{}{}
}

func (c *counter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.runs:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func waitForTimer(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func TestScheduler_EnableRunsNowThenDaily(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	c := newCounter()
	s := New(c.job, clock, nil)

	require.True(t, s.Enable())
	c.wait(t)
	waitForTimer(t, clock)

	next, armed := s.Next()
	assert.True(t, armed)
	assert.True(t, start.Add(Period).Equal(next), "next firing one period after the first run")

	clock.Advance(Period)
	c.wait(t)
	waitForTimer(t, clock)
	assert.Equal(t, int32(2), c.n.Load())
}

func TestScheduler_EnableTwiceKeepsOneFiring(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	c := newCounter()
	s := New(c.job, clock, nil)

	require.True(t, s.Enable())
	c.wait(t)
	waitForTimer(t, clock)

	assert.False(t, s.Enable(), "re-enable while armed is a no-op")

	clock.Advance(Period)
	c.wait(t)
	waitForTimer(t, clock)

	select {
	case <-c.runs:
		t.Fatal("second Enable produced an extra run")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(2), c.n.Load())
}

func TestScheduler_Disable(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	c := newCounter()
	s := New(c.job, clock, nil)

	assert.False(t, s.Disable(), "nothing to disable")

	require.True(t, s.Enable())
	c.wait(t)
	waitForTimer(t, clock)

	require.True(t, s.Disable())
	assert.False(t, s.Armed())
	_, armed := s.Next()
	assert.False(t, armed)

	clock.Advance(3 * Period)
	select {
	case <-c.runs:
		t.Fatal("job ran after Disable")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(1), c.n.Load())

	require.True(t, s.Enable(), "can be re-armed after Disable")
	c.wait(t)
}

func TestScheduler_DisableDuringRunDoesNotReschedule(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	release := make(chan struct{})
	entered := make(chan struct{})
	s := New(func(context.Context) {
		close(entered)
		<-release
	}, clock, nil)

	require.True(t, s.Enable())
	<-entered
	require.True(t, s.Disable())
	close(release)

	require.Eventually(t, func() bool {
		_, armed := s.Next()
		return !armed
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, clock.BlockUntilContext(ctx, 1), "no timer after a disarmed run")
}
