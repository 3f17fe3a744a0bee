package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventQueueSize     = 1024                   // Events waiting for the writer
	MaxEventsPerSec    = 1000                   // Global budget
	MaxEventsPerSource = 50                     // Budget of one client per second
	EventFlushInterval = 100 * time.Millisecond // Writer flush period

	// Source budgets idle this long are forgotten on the next sweep
	sourceIdleTimeout = 5 * time.Minute
	sourceSweepSize   = 256
)

// EventLogStats reports what the log accepted and refused.
type EventLogStats struct {
	Total   uint64 `json:"total"`   // Events queued for writing
	Dropped uint64 `json:"dropped"` // Rate limited or queue full
	Pending int    `json:"pending"`
	Running bool   `json:"running"`
}

type sourceBudget struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// EventLog appends match events to a JSONL stream. Emit never blocks the
// game loop: events beyond the rate limits or the queue size are counted
// as dropped.
type EventLog struct {
	queue   chan Event
	global  *rate.Limiter
	running atomic.Bool

	sourcesMu sync.Mutex
	sources   map[string]*sourceBudget

	sequence atomic.Uint64
	total    atomic.Uint64
	dropped  atomic.Uint64

	out    *bufio.Writer
	closer io.Closer
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewEventLog creates a stopped event log.
func NewEventLog() *EventLog {
	return &EventLog{
		queue:   make(chan Event, EventQueueSize),
		global:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		sources: make(map[string]*sourceBudget),
		done:    make(chan struct{}),
	}
}

// Start appends to filePath. An empty path counts events without writing.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	if filePath == "" {
		el.StartWriter(nil)
		return nil
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	el.closer = f
	el.StartWriter(f)
	return nil
}

// StartWriter writes events to w, or discards them when w is nil.
func (el *EventLog) StartWriter(w io.Writer) {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	if w != nil {
		el.out = bufio.NewWriter(w)
	}
	el.wg.Add(1)
	go el.writeLoop()
}

// Stop flushes queued events and closes the file. A stopped log cannot be
// restarted.
func (el *EventLog) Stop() {
	el.once.Do(func() {
		el.running.Store(false)
		close(el.done)
		el.wg.Wait()
		if el.closer != nil {
			el.closer.Close()
		}
	})
}

// Emit queues event. It returns false when the log is stopped, the event
// is over a rate limit or the queue is full.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.global.Allow() || (event.Source != "" && !el.allowSource(event.Source)) {
		el.dropped.Add(1)
		return false
	}

	event.Sequence = el.sequence.Add(1)
	select {
	case el.queue <- event:
		el.total.Add(1)
		return true
	default:
		el.dropped.Add(1)
		return false
	}
}

// EmitSimple builds and queues an event.
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, matchID, source string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, matchID, source, payload))
}

func (el *EventLog) allowSource(source string) bool {
	now := time.Now()

	el.sourcesMu.Lock()
	defer el.sourcesMu.Unlock()

	b, ok := el.sources[source]
	if !ok {
		if len(el.sources) >= sourceSweepSize {
			el.sweepSources(now)
		}
		b = &sourceBudget{limiter: rate.NewLimiter(MaxEventsPerSource, MaxEventsPerSource/10)}
		el.sources[source] = b
	}
	b.lastUsed = now
	return b.limiter.AllowN(now, 1)
}

// sweepSources forgets idle clients. Caller holds sourcesMu.
func (el *EventLog) sweepSources(now time.Time) {
	for src, b := range el.sources {
		if now.Sub(b.lastUsed) > sourceIdleTimeout {
			delete(el.sources, src)
		}
	}
}

func (el *EventLog) writeLoop() {
	defer el.wg.Done()

	var enc *json.Encoder
	if el.out != nil {
		enc = json.NewEncoder(el.out)
	}
	flush := time.NewTicker(EventFlushInterval)
	defer flush.Stop()

	write := func(ev Event) {
		if enc == nil {
			return
		}
		if err := enc.Encode(ev); err != nil {
			log.Printf("⚠️ Event log write failed: %v", err)
		}
	}

	for {
		select {
		case ev := <-el.queue:
			write(ev)
		case <-flush.C:
			el.flush()
		case <-el.done:
			for {
				select {
				case ev := <-el.queue:
					write(ev)
				default:
					el.flush()
					return
				}
			}
		}
	}
}

func (el *EventLog) flush() {
	if el.out == nil {
		return
	}
	if err := el.out.Flush(); err != nil {
		log.Printf("⚠️ Event log flush failed: %v", err)
	}
}

// Stats returns the log's counters.
func (el *EventLog) Stats() EventLogStats {
	return EventLogStats{
		Total:   el.total.Load(),
		Dropped: el.dropped.Load(),
		Pending: len(el.queue),
		Running: el.running.Load(),
	}
}
