package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	processTimeout = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the resource id, so events about one resource are stored in
// the order they were published.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	service ports.AuditService
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.AuditPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Publish hands an event to the worker responsible for its resource. It never
// blocks: when that worker's buffer is full, or the dispatcher is stopped,
// the event is dropped and counted.
func (d *Dispatcher) Publish(e domain.AuditEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.AuditEventsFailedTotal.WithLabelValues("stopped").Inc()
		return
	}

	idx := d.shardIndex(e.ResourceID)
	select {
	case d.workers[idx] <- e:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditEventsFailedTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("action", e.Action).
			Str("resource_id", e.ResourceID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// Stop closes the worker channels and waits until queued events are
// processed or ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a resource id deterministically to a worker index.
func (d *Dispatcher) shardIndex(resourceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resourceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))

	for e := range ch {
		depth.Dec()
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		err := d.service.Process(ctx, e)
		cancel()

		metrics.AuditProcessingDuration.WithLabelValues(e.Action).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.AuditEventsFailedTotal.WithLabelValues("persist_failed").Inc()
			d.log.Error().Err(err).
				Str("action", e.Action).
				Str("resource_id", e.ResourceID).
				Int("worker_id", id).
				Msg("audit event processing failed")
			continue
		}
		metrics.AuditEventsProcessedTotal.WithLabelValues(e.Action).Inc()
	}
}
