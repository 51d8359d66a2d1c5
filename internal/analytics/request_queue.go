// Package analytics tracks search requests: a sliding window of recent result
// counts, in-process aggregate statistics and an optional event stream.
package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DefaultWindow is one request per minute for a day.
const DefaultWindow = 1440

type Searcher interface {
	Search(ctx context.Context, mode execution.Mode, rawQuery string, predicate document.Predicate) ([]document.Document, bool, error)
	SearchStatus(ctx context.Context, mode execution.Mode, rawQuery string, status document.Status) ([]document.Document, bool, error)
}

// Tracker receives search events, normally *Collector.
type Tracker interface {
	Track(key string, value any)
}

// RequestQueue forwards searches and remembers how many results each of the
// last window successful requests returned.
type RequestQueue struct {
	searcher   Searcher
	aggregator *Aggregator
	tracker    Tracker
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu        sync.Mutex
	counts    []int
	next      int
	filled    int
	noResults int
}

type QueueOption func(*RequestQueue)

func WithAggregator(a *Aggregator) QueueOption {
	return func(q *RequestQueue) { q.aggregator = a }
}

func WithTracker(t Tracker) QueueOption {
	return func(q *RequestQueue) { q.tracker = t }
}

func WithQueueMetrics(m *metrics.Metrics) QueueOption {
	return func(q *RequestQueue) { q.metrics = m }
}

// NewRequestQueue wraps searcher. A non-positive window means DefaultWindow.
func NewRequestQueue(searcher Searcher, window int, opts ...QueueOption) *RequestQueue {
	if window <= 0 {
		window = DefaultWindow
	}
	q := &RequestQueue{
		searcher: searcher,
		counts:   make([]int, window),
		logger:   logger.WithComponent("request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddFindRequest searches with predicate (nil means ACTUAL) and records the
// outcome. Failed searches are not part of the window.
func (q *RequestQueue) AddFindRequest(ctx context.Context, mode execution.Mode, rawQuery string, predicate document.Predicate) ([]document.Document, error) {
	start := time.Now()
	docs, hit, err := q.searcher.Search(ctx, mode, rawQuery, predicate)
	q.observe(mode, rawQuery, docs, hit, err, start)
	return docs, err
}

// AddFindRequestStatus searches for documents with status.
func (q *RequestQueue) AddFindRequestStatus(ctx context.Context, mode execution.Mode, rawQuery string, status document.Status) ([]document.Document, error) {
	start := time.Now()
	docs, hit, err := q.searcher.SearchStatus(ctx, mode, rawQuery, status)
	q.observe(mode, rawQuery, docs, hit, err, start)
	return docs, err
}

func (q *RequestQueue) observe(mode execution.Mode, rawQuery string, docs []document.Document, hit bool, err error, start time.Time) {
	event := SearchEvent{
		Type:      EventSearch,
		Query:     rawQuery,
		Mode:      mode.String(),
		Returned:  len(docs),
		LatencyUs: time.Since(start).Microseconds(),
		CacheHit:  hit,
		Timestamp: start,
	}
	switch {
	case err != nil:
		event.Type = EventSearchFail
		event.Error = err.Error()
		q.logger.Debug("search failed", "query", rawQuery, "error", err)
	case len(docs) == 0:
		event.Type = EventZeroResult
	}
	if err == nil {
		q.push(len(docs))
	}
	if q.aggregator != nil {
		q.aggregator.Record(event)
	}
	if q.tracker != nil {
		q.tracker.Track(strconv.FormatInt(start.UnixNano(), 10), event)
	}
}

func (q *RequestQueue) push(results int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.filled == len(q.counts) {
		if q.counts[q.next] == 0 {
			q.noResults--
		}
	} else {
		q.filled++
	}
	q.counts[q.next] = results
	if results == 0 {
		q.noResults++
	}
	q.next = (q.next + 1) % len(q.counts)
	if q.metrics != nil {
		q.metrics.NoResultRequests.Set(float64(q.noResults))
	}
}

// NoResultRequests counts the requests in the window that returned nothing.
func (q *RequestQueue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResults
}

// Len is the number of requests currently in the window.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filled
}
