package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitactivity/internal/models"
)

// scriptedFetcher answers the n-th activity fetch with responses[n]. A
// response may block until its release channel is closed.
type scriptedFetcher struct {
	mu        sync.Mutex
	calls     int
	responses []scriptedResponse
	statsErr  error
}

type scriptedResponse struct {
	activity *models.ActivityResponse
	err      error
	release  chan struct{}
}

func (f *scriptedFetcher) FetchActivityNoCache(ctx context.Context) (*models.ActivityResponse, error) {
	f.mu.Lock()
	idx := min(f.calls, len(f.responses)-1)
	f.calls++
	r := f.responses[idx]
	f.mu.Unlock()

	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.activity, r.err
}

func (f *scriptedFetcher) FetchStatsNoCache(ctx context.Context) (*models.StatsResponse, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return statsResponse(1), nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestFetchBoth(t *testing.T) {
	f := &scriptedFetcher{responses: []scriptedResponse{{activity: activityResponse(sampleActivity()...)}}}

	activity, stats, err := FetchBoth(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, activity.Data, 5)
	assert.Equal(t, 1, stats.Data.TotalActivities)

	f.statsErr = errors.New("Failed to fetch git statistics")
	activity, stats, err = FetchBoth(context.Background(), f)
	assert.EqualError(t, err, "Failed to fetch git statistics")
	assert.Nil(t, activity)
	assert.Nil(t, stats)
}

func TestPoller_FetchOnce(t *testing.T) {
	f := &scriptedFetcher{responses: []scriptedResponse{{activity: activityResponse(sampleActivity()...)}}}
	v := NewView()
	p := NewPoller(f, v, time.Hour)

	var updates int32
	p.OnUpdate = func(s Snapshot) { atomic.AddInt32(&updates, 1) }

	require.NoError(t, p.FetchOnce(context.Background()))
	assert.Equal(t, StateReady, v.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&updates))
}

func TestPoller_StatsFailureBlocksReady(t *testing.T) {
	f := &scriptedFetcher{
		responses: []scriptedResponse{{activity: activityResponse(sampleActivity()...)}},
		statsErr:  errors.New("Failed to fetch git statistics"),
	}
	v := NewView()

	err := NewPoller(f, v, time.Hour).FetchOnce(context.Background())

	require.Error(t, err)
	s := v.Snapshot()
	assert.Equal(t, StateError, s.State)
	assert.True(t, s.ActivityPending)
}

func TestPoller_RunTicksAndRefreshes(t *testing.T) {
	f := &scriptedFetcher{responses: []scriptedResponse{{activity: activityResponse(sampleActivity()...)}}}
	v := NewView()
	p := NewPoller(f, v, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return f.Calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	p.Refresh()
	p.Refresh()
	require.Eventually(t, func() bool { return v.State() == StateReady }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestPoller_NewestFetchWins(t *testing.T) {
	slow := make(chan struct{})
	f := &scriptedFetcher{responses: []scriptedResponse{
		{activity: activityResponse(sampleActivity()...), release: slow},
		{activity: activityResponse(sampleActivity()[0])},
	}}
	v := NewView()
	p := NewPoller(f, v, time.Hour)

	var applied []int
	var mu sync.Mutex
	p.OnUpdate = func(s Snapshot) {
		if s.State != StateReady {
			return
		}
		mu.Lock()
		applied = append(applied, s.Page.Total)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, time.Millisecond)
	p.Refresh()
	require.Eventually(t, func() bool { return v.State() == StateReady }, time.Second, time.Millisecond)
	close(slow)
	time.Sleep(20 * time.Millisecond)

	s := v.Snapshot()
	assert.Equal(t, 1, s.Page.Total, "the superseded fetch must not overwrite newer data")
	mu.Lock()
	assert.Equal(t, []int{1}, applied)
	mu.Unlock()
}

func TestPoller_TeardownDiscardsInFlight(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := &scriptedFetcher{responses: []scriptedResponse{{activity: activityResponse(sampleActivity()...), release: block}}}
	v := NewView()
	p := NewPoller(f, v, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, StateLoading, v.State(), "a cancelled fetch leaves the view untouched")
	assert.NoError(t, v.Snapshot().Err)
}

func TestPoller_NotifiesWhenFetchStarts(t *testing.T) {
	release := make(chan struct{})
	f := &scriptedFetcher{responses: []scriptedResponse{
		{activity: activityResponse(sampleActivity()...)},
		{activity: activityResponse(sampleActivity()...), release: release},
	}}
	v := NewView()
	p := NewPoller(f, v, time.Hour)

	var mu sync.Mutex
	var states []State
	p.OnUpdate = func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	}
	seen := func(want ...State) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			if len(states) < len(want) {
				return false
			}
			for i := range want {
				if states[i] != want[i] {
					return false
				}
			}
			return true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, seen(StateLoading, StateReady), time.Second, time.Millisecond)
	p.Refresh()
	require.Eventually(t, seen(StateLoading, StateReady, StateRefreshing), time.Second, time.Millisecond)
	close(release)
	require.Eventually(t, seen(StateLoading, StateReady, StateRefreshing, StateReady), time.Second, time.Millisecond)
}
