package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type TierLatencyObserver interface {
	ObserveTierLatency(disease, tier string, duration time.Duration)
}

type TierLatencyLogger struct {
	logger zerolog.Logger
}

func NewTierLatencyLogger(logger zerolog.Logger) *TierLatencyLogger {
	return &TierLatencyLogger{logger: logger}
}

func (l *TierLatencyLogger) ObserveTierLatency(disease, tier string, duration time.Duration) {
	if l == nil {
		return
	}
	l.logger.Debug().
		Str("disease", disease).
		Str("tier", tier).
		Float64("duration_ms", float64(duration.Microseconds())/1000.0).
		Msg("classification_tier_latency")
}

// AsyncTierLatencyObserver fans tier latencies out to its sinks from a
// single background goroutine, so classification never waits on logging or
// metrics. Events are dropped and counted when the queue is full or the
// observer is closed.
type AsyncTierLatencyObserver struct {
	sinks MultiTierLatencyObserver
	queue chan tierLatency
	done  chan struct{}

	// gate keeps sends and the closing of queue apart.
	gate      sync.RWMutex
	closed    bool
	closeOnce sync.Once

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

type tierLatency struct {
	disease, tier string
	took          time.Duration
}

// NewAsyncTierLatencyObserver starts the delivery goroutine. A queue size
// below one is raised to one; nil sinks are skipped.
func NewAsyncTierLatencyObserver(queueSize int, sinks ...TierLatencyObserver) *AsyncTierLatencyObserver {
	o := &AsyncTierLatencyObserver{
		sinks: MultiTierLatencyObserver(sinks),
		queue: make(chan tierLatency, max(queueSize, 1)),
		done:  make(chan struct{}),
	}
	go o.deliver()
	return o
}

func (o *AsyncTierLatencyObserver) deliver() {
	defer close(o.done)
	for ev := range o.queue {
		o.sinks.ObserveTierLatency(ev.disease, ev.tier, ev.took)
		o.delivered.Add(1)
	}
}

func (o *AsyncTierLatencyObserver) ObserveTierLatency(disease, tier string, duration time.Duration) {
	if o == nil {
		return
	}
	o.gate.RLock()
	defer o.gate.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.queue <- tierLatency{disease: disease, tier: tier, took: duration}:
	default:
		o.dropped.Add(1)
	}
}

// Delivered counts events handed to the sinks.
func (o *AsyncTierLatencyObserver) Delivered() uint64 {
	if o == nil {
		return 0
	}
	return o.delivered.Load()
}

// Dropped counts events lost to a full queue or a closed observer.
func (o *AsyncTierLatencyObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close stops accepting events and returns once the queued ones reached the
// sinks. It is safe to call more than once.
func (o *AsyncTierLatencyObserver) Close() {
	if o == nil {
		return
	}
	o.closeOnce.Do(func() {
		o.gate.Lock()
		o.closed = true
		close(o.queue)
		o.gate.Unlock()
	})
	<-o.done
}

// MultiTierLatencyObserver fans out to several observers.
type MultiTierLatencyObserver []TierLatencyObserver

func (m MultiTierLatencyObserver) ObserveTierLatency(disease, tier string, duration time.Duration) {
	for _, o := range m {
		if o != nil {
			o.ObserveTierLatency(disease, tier, duration)
		}
	}
}
