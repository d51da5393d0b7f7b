package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/metrics"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher delivers session events to every subscriber. Events are sharded
// by session id, so one session's events are handled in publish order.
type Dispatcher struct {
	workers  []chan domain.SessionEvent
	handlers []ports.SessionEventHandler
	log      zerolog.Logger
	wg       sync.WaitGroup
	dropped  atomic.Int64
}

// NewDispatcher creates a Dispatcher with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, handlers ...ports.SessionEventHandler) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.SessionEvent, numWorkers),
		handlers: handlers,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Publish satisfies ports.SessionEventPublisher. It never blocks: when the
// shard's buffer is full the event is dropped and counted.
func (d *Dispatcher) Publish(ev domain.SessionEvent) {
	idx := d.shardIndex(ev.SessionID)
	select {
	case d.workers[idx] <- ev:
		metrics.SessionEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.dropped.Add(1)
		metrics.SessionEventsDroppedTotal.WithLabelValues(string(ev.Kind)).Inc()
		d.log.Warn().
			Str("session_id", ev.SessionID).
			Str("kind", string(ev.Kind)).
			Int("worker_id", idx).
			Msg("session event queue full, dropping event")
	}
}

func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.SessionEventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, ev domain.SessionEvent) {
	for _, h := range d.handlers {
		if err := h.Handle(ctx, ev); err != nil {
			d.log.Error().Err(err).
				Str("session_id", ev.SessionID).
				Str("kind", string(ev.Kind)).
				Int("worker_id", worker).
				Msg("session event handler failed")
		}
	}
}
