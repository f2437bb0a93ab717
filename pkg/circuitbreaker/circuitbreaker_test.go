package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func fail(context.Context) error { return errBackend }
func ok(context.Context) error   { return nil }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBreaker(cfg Config) (*CircuitBreaker, *clock) {
	cb := New(cfg)
	c := &clock{now: time.Unix(1700000000, 0)}
	cb.now = c.Now
	return cb, c
}

func TestNew_Defaults(t *testing.T) {
	cb := New(Config{Name: "blobs"})
	assert.Equal(t, "blobs", cb.Name())
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, int64(5), cb.cfg.MaxFailures)
	assert.Equal(t, 30*time.Second, cb.cfg.Timeout)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newBreaker(Config{Name: "t", MaxFailures: 3})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	}
	// 成功会清零连续失败
	require.NoError(t, cb.Execute(ctx, ok))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestExecute_HalfOpenProbe(t *testing.T) {
	cb, clk := newBreaker(Config{Name: "t", MaxFailures: 1, Timeout: time.Minute})
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	assert.Equal(t, StateOpen, cb.State())

	clk.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, cb.State())

	// 探测失败重新打开
	require.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	clk.Add(time.Minute)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenLimitsProbes(t *testing.T) {
	cb, clk := newBreaker(Config{Name: "t", MaxFailures: 1, Timeout: time.Second})
	ctx := context.Background()
	require.Error(t, cb.Execute(ctx, fail))
	clk.Add(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrTooManyRequests)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_IgnoredErrors(t *testing.T) {
	notFound := errors.New("not found")
	cb, _ := newBreaker(Config{Name: "t", MaxFailures: 1, IsFailure: func(err error) bool {
		return !errors.Is(err, notFound)
	}})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return notFound }), notFound)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_CancelledContext(t *testing.T) {
	cb := New(Config{Name: "t", MaxFailures: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, cb.Execute(ctx, ok), context.Canceled)
	assert.Equal(t, int64(0), cb.Counts().Requests)

	// 取消不算后端失败
	err := cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestReset_AndStateChangeHook(t *testing.T) {
	changes := make(chan [2]State, 4)
	cb, _ := newBreaker(Config{Name: "t", MaxFailures: 1, OnStateChange: func(_ string, from, to State) {
		changes <- [2]State{from, to}
	}})
	require.Error(t, cb.Execute(context.Background(), fail))
	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())

	got := []([2]State){<-changes, <-changes}
	assert.ElementsMatch(t, [][2]State{{StateClosed, StateOpen}, {StateOpen, StateClosed}}, got)
}

func TestConcurrentExecute(t *testing.T) {
	cb := New(Config{Name: "t", MaxFailures: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = cb.Execute(context.Background(), ok)
			} else {
				_ = cb.Execute(context.Background(), fail)
			}
		}(i)
	}
	wg.Wait()
	c := cb.Counts()
	assert.Equal(t, int64(50), c.Requests)
	assert.Equal(t, int64(25), c.Failures)
}
