package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// Publisher sends a batch of events, normally *kafka.Producer.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events and publishes them in batches from a background
// goroutine. Track never blocks; events are dropped when the buffer is full.
type Collector struct {
	publisher     Publisher
	events        chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	retry         resilience.RetryConfig
	logger        *slog.Logger
	done          chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	published atomic.Int64
	dropped   atomic.Int64
}

func NewCollector(publisher Publisher, bufferSize, batchSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Collector{
		publisher:     publisher,
		events:        make(chan kafka.Event, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		retry:         resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond},
		logger:        logger.WithComponent("analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the publish loop. It must be called before Close.
func (c *Collector) Start(ctx context.Context) {
	go c.loop(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.events),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

func (c *Collector) loop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				c.finalFlush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				c.flush(ctx, batch)
				batch = make([]kafka.Event, 0, c.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				c.flush(ctx, batch)
				batch = make([]kafka.Event, 0, c.batchSize)
			}
		case <-ctx.Done():
			c.finalFlush(c.drain(batch))
			return
		}
	}
}

func (c *Collector) drain(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				return batch
			}
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

func (c *Collector) finalFlush(batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.flush(ctx, batch)
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	err := resilience.Retry(ctx, "publish-analytics", c.retry, func() error {
		return c.publisher.PublishBatch(ctx, batch)
	})
	if err != nil {
		c.dropped.Add(int64(len(batch)))
		c.logger.Error("analytics batch dropped", "events", len(batch), "error", err)
		return
	}
	c.published.Add(int64(len(batch)))
	c.logger.Debug("analytics batch published", "events", len(batch))
}

// Track queues an event keyed by key.
func (c *Collector) Track(key string, value any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.events <- kafka.Event{Key: key, Value: value}:
	default:
		c.dropped.Add(1)
		c.logger.Warn("analytics event dropped, buffer full")
	}
}

// Close stops accepting events, publishes what is buffered and waits for the
// loop to exit.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
	<-c.done
}

// Counts returns how many events were published and dropped so far.
func (c *Collector) Counts() (published, dropped int64) {
	return c.published.Load(), c.dropped.Load()
}
