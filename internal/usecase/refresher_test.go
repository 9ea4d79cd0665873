package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	drepo "RateSim/internal/domain/repository"
	"RateSim/internal/service/curvecache"
	xlogger "RateSim/pkg/logger"
)

func TestRefresherForwardsSnapshotsToSink(t *testing.T) {
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	cache := curvecache.New([]drepo.FeedSource{&staticSource{id: "ust", payload: []byte(csvDoc)}})
	pub := &fakePublisher{}
	proc := NewSnapshotProcessor(pub, nil, &nopMetrics{}, "kafka")

	r := NewRefresher(cache, proc, &nopMetrics{}, log, 0)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	_, err = cache.GetOrFetch(context.Background(), "ust")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return pub.count() == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "ust", pub.first().SourceID)
}

func TestRefresherPollsOnInterval(t *testing.T) {
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	src := &staticSource{id: "ust", payload: []byte(csvDoc)}
	cache := curvecache.New([]drepo.FeedSource{src}, curvecache.WithMaxAge(time.Nanosecond))
	pub := &fakePublisher{}
	proc := NewSnapshotProcessor(pub, nil, &nopMetrics{}, "kafka")

	r := NewRefresher(cache, proc, &nopMetrics{}, log, 10*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool {
		return pub.count() >= 2
	}, time.Second, 5*time.Millisecond)
}
