package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sink consumes a domain event on a dispatcher worker.
type Sink func(event domain.Event)

// Dispatcher fans domain events drained from aggregates out to a fixed set
// of workers, sharded by aggregate id so events for one aggregate are always
// observed in emission order. It implements ports.EventPublisher.
type Dispatcher struct {
	workers []chan domain.Event
	sink    Sink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Event, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish routes each event to the worker owning its aggregate. Events are
// dropped with a warning when the worker's buffer is full, so a slow sink
// can never stall a purchase.
func (d *Dispatcher) Publish(events ...domain.Event) {
	for _, event := range events {
		ch := d.workers[d.shardIndex(event.AggregateID())]
		select {
		case ch <- event:
		default:
			d.log.Warn().
				Str("event", event.EventName()).
				Str("aggregate_id", event.AggregateID()).
				Msg("event dropped: dispatcher buffer full")
		}
	}
}

// shardIndex maps an aggregate id deterministically to a worker index.
func (d *Dispatcher) shardIndex(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.log.Debug().
				Str("event", event.EventName()).
				Str("aggregate_id", event.AggregateID()).
				Int("worker_id", id).
				Msg("domain event")
			if d.sink != nil {
				d.sink(event)
			}
		}
	}
}
