package curvecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "RateSim/internal/domain/repository"
)

const csvDoc = "Date,\"1 Yr\",\"5 Yr\",\"10 Yr\"\n01/15/2025,4.50,4.10,4.30\n"

// fakeSource is a scriptable FeedSource.
type fakeSource struct {
	id      string
	mu      sync.Mutex
	payload []byte
	err     error
	block   chan struct{} // when non-nil, Fetch waits on it
	fetches atomic.Int32
}

func newFakeSource(id string) *fakeSource {
	return &fakeSource{id: id, payload: []byte(csvDoc)}
}

func (s *fakeSource) ID() string { return s.id }

func (s *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	s.fetches.Add(1)
	s.mu.Lock()
	payload, err, block := s.payload, s.err, s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func sources(srcs ...*fakeSource) []drepo.FeedSource {
	out := make([]drepo.FeedSource, len(srcs))
	for i, s := range srcs {
		out[i] = s
	}
	return out
}

func TestGetOrFetchBuildsCurve(t *testing.T) {
	src := newFakeSource("ust")
	c := New(sources(src), WithMaxAge(time.Hour))

	snap, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)
	assert.Equal(t, "01/15/2025", snap.AsOf)
	assert.Equal(t, 3, snap.Curve.Len())
	assert.InDelta(t, 4.30, snap.Curve.RateAt(3), 1e-12)
	assert.Equal(t, StateFresh, c.State("ust"))
}

func TestFreshEntryServedWithoutRefetch(t *testing.T) {
	src := newFakeSource("ust")
	c := New(sources(src), WithMaxAge(time.Hour))

	_, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestConcurrentRequestsCoalesce(t *testing.T) {
	src := newFakeSource("ust")
	release := make(chan struct{})
	src.block = release
	c := New(sources(src), WithMaxAge(time.Hour), WithFetchTimeout(5*time.Second))

	const callers = 16
	snaps := make([]Snapshot, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = c.GetOrFetch(context.Background(), "ust")
		}(i)
	}

	// Let the callers pile onto the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), src.fetches.Load(), "exactly one underlying fetch")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, snaps[0].FetchedAt, snaps[i].FetchedAt, "all callers see the identical snapshot")
	}
}

func TestStaleFallbackOnFetchFailure(t *testing.T) {
	src := newFakeSource("ust")
	c := New(sources(src), WithMaxAge(0)) // every call refetches

	first, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)

	src.fail(errors.New("connection refused"))
	second, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err, "stale data served instead of failing")
	assert.Equal(t, first.AsOf, second.AsOf)
	assert.Equal(t, first.FetchedAt, second.FetchedAt)
	assert.Equal(t, StateStale, c.State("ust"))
}

func TestNoFallbackPropagatesError(t *testing.T) {
	src := newFakeSource("ust")
	src.fail(errors.New("connection refused"))
	c := New(sources(src))

	_, err := c.GetOrFetch(context.Background(), "ust")
	assert.ErrorIs(t, err, ErrNoFallback)
	assert.Equal(t, StateEmpty, c.State("ust"))
}

func TestFetchTimeoutTreatedAsFailure(t *testing.T) {
	src := newFakeSource("ust")
	src.block = make(chan struct{}) // never released; fetch must time out
	c := New(sources(src), WithFetchTimeout(30*time.Millisecond))

	_, err := c.GetOrFetch(context.Background(), "ust")
	assert.ErrorIs(t, err, ErrNoFallback)
}

func TestParseFailureDoesNotPoisonFallback(t *testing.T) {
	src := newFakeSource("ust")
	c := New(sources(src), WithMaxAge(0))

	_, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)

	src.mu.Lock()
	src.payload = []byte("not,a,treasury\ncsv,at,all\n")
	src.mu.Unlock()

	snap, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)
	assert.Equal(t, "01/15/2025", snap.AsOf)
	assert.Equal(t, StateStale, c.State("ust"))
}

func TestUnknownSource(t *testing.T) {
	c := New(nil)
	_, err := c.GetOrFetch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestDistinctSourcesAreIndependent(t *testing.T) {
	a := newFakeSource("a")
	b := newFakeSource("b")
	b.fail(fmt.Errorf("down"))
	c := New(sources(a, b))

	_, err := c.GetOrFetch(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), "b")
	assert.ErrorIs(t, err, ErrNoFallback)
	assert.Equal(t, StateFresh, c.State("a"))
}

func TestOnRefreshListener(t *testing.T) {
	src := newFakeSource("ust")
	c := New(sources(src))

	got := make(chan Snapshot, 1)
	c.OnRefresh(func(s Snapshot) { got <- s })

	_, err := c.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)

	select {
	case snap := <-got:
		assert.Equal(t, "ust", snap.SourceID)
	case <-time.After(time.Second):
		t.Fatal("refresh listener not invoked")
	}
}
