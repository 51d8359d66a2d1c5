package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearcher(t *testing.T) *cache.Searcher {
	t.Helper()
	e, err := indexer.NewEngineFromText("and in at")
	require.NoError(t, err)
	texts := []string{
		"curly cat curly tail",
		"curly dog and fancy collar",
		"big cat fancy collar ",
		"big dog sparrow Eugene",
		"big dog sparrow Vasiliy",
	}
	for i, text := range texts {
		require.NoError(t, e.AddDocument(i+1, text, document.StatusActual, []int{1, 2, 3}))
	}
	return cache.NewSearcher(e, nil)
}

func TestRequestQueueNoResultWindow(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := NewRequestQueue(newSearcher(t), DefaultWindow, WithQueueMetrics(m))
	ctx := context.Background()

	for range 1439 {
		_, err := q.AddFindRequest(ctx, execution.Sequential, "empty request", nil)
		require.NoError(t, err)
	}
	_, err := q.AddFindRequest(ctx, execution.Sequential, "curly dog", nil)
	require.NoError(t, err)
	_, err = q.AddFindRequest(ctx, execution.Sequential, "big collar", nil)
	require.NoError(t, err)
	docs, err := q.AddFindRequestStatus(ctx, execution.Parallel, "sparrow", document.StatusActual)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	assert.Equal(t, 1437, q.NoResultRequests())
	assert.Equal(t, DefaultWindow, q.Len())
	assert.Equal(t, 1437.0, testutil.ToFloat64(m.NoResultRequests))
}

func TestRequestQueueSmallWindow(t *testing.T) {
	q := NewRequestQueue(newSearcher(t), 2)
	ctx := context.Background()
	for _, query := range []string{"nothing", "nothing", "cat", "nothing"} {
		_, err := q.AddFindRequest(ctx, execution.Sequential, query, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.NoResultRequests())
	assert.Equal(t, 2, q.Len())

	_, err := q.AddFindRequest(ctx, execution.Sequential, "cat -", nil)
	require.Error(t, err)
	assert.Equal(t, 2, q.Len(), "failed searches do not enter the window")
}

type recordingTracker struct {
	mu     sync.Mutex
	events []SearchEvent
}

func (r *recordingTracker) Track(_ string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, value.(SearchEvent))
}

func TestRequestQueueFeedsAggregatorAndTracker(t *testing.T) {
	agg := NewAggregator()
	tracker := &recordingTracker{}
	q := NewRequestQueue(newSearcher(t), 10, WithAggregator(agg), WithTracker(tracker))
	ctx := context.Background()

	_, _ = q.AddFindRequest(ctx, execution.Sequential, "cat", nil)
	_, _ = q.AddFindRequest(ctx, execution.Sequential, "cat", nil)
	_, _ = q.AddFindRequest(ctx, execution.Sequential, "zebra", nil)
	_, _ = q.AddFindRequest(ctx, execution.Sequential, "--bad", nil)

	stats := agg.Stats()
	assert.Equal(t, int64(4), stats.TotalSearches)
	assert.Equal(t, int64(1), stats.FailedSearches)
	assert.Equal(t, int64(1), stats.ZeroResultCount)
	assert.Equal(t, []QueryCount{{"cat", 2}, {"zebra", 1}}, stats.TopQueries)
	assert.Equal(t, []QueryCount{{"zebra", 1}}, stats.ZeroResultQueries)

	require.Len(t, tracker.events, 4)
	assert.Equal(t, EventSearch, tracker.events[0].Type)
	assert.Equal(t, EventZeroResult, tracker.events[2].Type)
	assert.Equal(t, EventSearchFail, tracker.events[3].Type)
	assert.NotEmpty(t, tracker.events[3].Error)
}

func TestAggregatorPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := int64(1); i <= 100; i++ {
		agg.Record(SearchEvent{Type: EventSearch, Query: "q", Returned: 1, LatencyUs: i})
	}
	stats := agg.Stats()
	assert.Equal(t, int64(51), stats.P50LatencyUs)
	assert.Equal(t, int64(96), stats.P95LatencyUs)
	assert.Equal(t, int64(100), stats.P99LatencyUs)
	assert.InDelta(t, 50.5, stats.AvgLatencyUs, 1e-9)
}

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	fails   int
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("broker unavailable")
	}
	f.batches = append(f.batches, append([]kafka.Event(nil), events...))
	return nil
}

func (f *fakePublisher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestCollectorBatchesAndFlushesOnClose(t *testing.T) {
	pub := &fakePublisher{fails: 1}
	c := NewCollector(pub, 100, 3, time.Hour)
	c.Start(context.Background())

	for i := range 7 {
		c.Track("k", i)
	}
	c.Close()

	assert.Equal(t, 7, pub.total())
	published, dropped := c.Counts()
	assert.Equal(t, int64(7), published)
	assert.Zero(t, dropped)

	c.Track("late", 1)
	_, dropped = c.Counts()
	assert.Equal(t, int64(1), dropped)
}

func TestCollectorFlushesOnCancel(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 100, 50, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	c.Track("a", 1)
	c.Track("b", 2)
	cancel()
	c.Close()
	assert.Equal(t, 2, pub.total())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(&fakePublisher{}, 1, 10, time.Hour)
	c.Track("a", 1)
	c.Track("b", 2)
	_, dropped := c.Counts()
	assert.Equal(t, int64(1), dropped)
}
