package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/metrics"
	"github.com/teamcuriosity/collective/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Delivery is a persisted message waiting to be pushed to the live members
// of its room.
type Delivery struct {
	Message *domain.Message
	// ExcludeConnID is the connection that must not receive the message,
	// normally the sender's own.
	ExcludeConnID string
}

// DeliverFunc pushes one delivery to its recipients.
type DeliverFunc func(ctx context.Context, d Delivery)

// Dispatcher routes deliveries to a fixed set of workers using consistent
// hashing on the room name, guaranteeing per-room delivery ordering.
type Dispatcher struct {
	workers []chan Delivery
	deliver DeliverFunc
	log     zerolog.Logger
	wg      sync.WaitGroup

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliver DeliverFunc, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Delivery, numWorkers),
		deliver: deliver,
		log:     log.With().Str("component", "fanout").Logger(),
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan Delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// and from then on Enqueue drops instead of blocking.
func (d *Dispatcher) Start(ctx context.Context) {
	context.AfterFunc(ctx, d.stop)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	d.log.Info().Int("workers", len(d.workers)).Msg("fan-out dispatcher started")
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}

// Enqueue sends a delivery to the worker responsible for its room.
// The call is non-blocking up to channelBuffer capacity. It reports false
// when the dispatcher has stopped and the delivery was dropped.
func (d *Dispatcher) Enqueue(delivery Delivery) bool {
	select {
	case <-d.stopped:
		return d.dropStopped(delivery)
	default:
	}

	idx := d.shardIndex(delivery.Message.Room)
	select {
	case d.workers[idx] <- delivery:
	case <-d.stopped:
		return d.dropStopped(delivery)
	}
	metrics.FanoutQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return true
}

func (d *Dispatcher) dropStopped(delivery Delivery) bool {
	d.log.Warn().Str("room", delivery.Message.Room).Msg("dispatcher stopped, delivery dropped")
	return false
}

// shardIndex maps a room name deterministically to a worker index.
func (d *Dispatcher) shardIndex(room string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Delivery) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-ch:
			if !ok {
				return
			}
			metrics.FanoutQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.safeDeliver(ctx, id, delivery)
		}
	}
}

// safeDeliver keeps a worker alive when a delivery panics.
func (d *Dispatcher) safeDeliver(ctx context.Context, id int, delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("room", delivery.Message.Room).
				Int("worker_id", id).
				Msg("fan-out delivery panicked")
		}
	}()
	d.deliver(ctx, delivery)
}
