// Package progress implements the session progress observer (spec.md
// §4.J): it listens to session lifecycle events, keeps running counters,
// and lets callers await a session's outcome as a future.
package progress

import (
	"errors"
	"sync"

	"github.com/dashpay/privatesend/wiremsg"
	"github.com/prometheus/client_golang/prometheus"
)

// Future resolves to the PoolMessage a session finished with.
type Future struct {
	ch   chan wiremsg.PoolMessage
	once sync.Once
}

func newFuture() *Future {
	return &Future{ch: make(chan wiremsg.PoolMessage, 1)}
}

func (f *Future) complete(msg wiremsg.PoolMessage) {
	f.once.Do(func() {
		f.ch <- msg
		close(f.ch)
	})
}

// Wait blocks until the session completes or done is closed.
func (f *Future) Wait(done <-chan struct{}) (wiremsg.PoolMessage, error) {
	select {
	case msg, ok := <-f.ch:
		if !ok {
			return 0, errCanceled
		}
		return msg, nil
	case <-done:
		return 0, errCanceled
	}
}

var errCanceled = errors.New("progress: wait canceled")

// Observer aggregates outcomes across every session the manager drives.
type Observer struct {
	mu          sync.Mutex
	completed   int
	timedOut    int
	lastPercent float64
	futures     map[string]*Future

	completedMetric prometheus.Counter
	timedOutMetric  prometheus.Counter
	percentMetric   prometheus.Gauge
}

// New creates an Observer. Call Collectors to register its metrics with a
// prometheus.Registerer of the host's choosing.
func New() *Observer {
	return &Observer{
		futures: make(map[string]*Future),
		completedMetric: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privatesend",
			Name:      "sessions_completed_total",
			Help:      "Number of mixing sessions that reached MSG_SUCCESS.",
		}),
		timedOutMetric: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privatesend",
			Name:      "sessions_timed_out_total",
			Help:      "Number of mixing sessions that ended in timeout or rejection.",
		}),
		percentMetric: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "privatesend",
			Name:      "mix_progress_percent",
			Help:      "100 * coinjoin balance / denominated balance as of the last mixing update.",
		}),
	}
}

// Collectors returns the Prometheus collectors owned by this Observer.
func (o *Observer) Collectors() []prometheus.Collector {
	return []prometheus.Collector{o.completedMetric, o.timedOutMetric, o.percentMetric}
}

// OnStarted registers a new in-flight session and returns its Future.
func (o *Observer) OnStarted(sessionKey string) *Future {
	o.mu.Lock()
	defer o.mu.Unlock()
	f := newFuture()
	o.futures[sessionKey] = f
	return f
}

// OnComplete resolves sessionKey's future and updates the counters
// (spec.md §4.J: MSG_SUCCESS vs everything else).
func (o *Observer) OnComplete(sessionKey string, msg wiremsg.PoolMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if msg == wiremsg.MsgSuccess {
		o.completed++
		o.completedMetric.Inc()
	} else {
		o.timedOut++
		o.timedOutMetric.Inc()
	}
	if f, ok := o.futures[sessionKey]; ok {
		f.complete(msg)
		delete(o.futures, sessionKey)
	}
}

// OnTimeout resolves sessionKey's future with ERR_SESSION and counts it as
// timed out, for sessions that never receive a Complete message.
func (o *Observer) OnTimeout(sessionKey string) {
	o.OnComplete(sessionKey, wiremsg.ErrSession)
}

// OnMixingComplete updates last_percent = 100 * coinjoin / denominated.
func (o *Observer) OnMixingComplete(coinjoin, denominated int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if denominated <= 0 {
		o.lastPercent = 0
		o.percentMetric.Set(0)
		return
	}
	o.lastPercent = 100 * float64(coinjoin) / float64(denominated)
	o.percentMetric.Set(o.lastPercent)
}

// Stats is a snapshot of the observer's counters.
type Stats struct {
	CompletedSessions int
	TimedOutSessions  int
	LastPercent       float64
}

func (o *Observer) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Stats{CompletedSessions: o.completed, TimedOutSessions: o.timedOut, LastPercent: o.lastPercent}
}
