package broadcast

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// bufferLimit caps the retained event history.
	bufferLimit = 1000
	// historyLimit caps how much of the buffer a subscriber may request.
	historyLimit = 100
	// subscriberBuffer is the per-subscriber channel depth. Slow consumers
	// past this point lose events rather than stall the publisher.
	subscriberBuffer = 64
)

// Subscription is one connected observer of the activity stream.
type Subscription struct {
	// C delivers events in publish order. Closed on Unsubscribe.
	C chan LogEvent
}

// Broadcaster fans live activity out to connected dashboards and keeps a
// bounded in-process replay buffer of recent events. All state is owned by
// the broadcaster; callers hold a handle and publish through it.
type Broadcaster struct {
	logger *zap.Logger

	mu     sync.Mutex
	buffer []LogEvent // newest first
	subs   map[*Subscription]struct{}
	closed bool

	stopHeartbeat chan struct{}
	heartbeatOnce sync.Once
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		logger:        logger,
		subs:          make(map[*Subscription]struct{}),
		stopHeartbeat: make(chan struct{}),
	}
}

// Publish records the event in the buffer and pushes it to every connected
// subscriber. Missing ID or timestamp fields are filled in.
func (b *Broadcaster) Publish(event LogEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.buffer = append([]LogEvent{event}, b.buffer...)
	if len(b.buffer) > bufferLimit {
		b.buffer = b.buffer[:bufferLimit]
	}

	for sub := range b.subs {
		select {
		case sub.C <- event:
		default:
			// subscriber is not keeping up; drop rather than block
		}
	}
}

// Subscribe registers a new observer.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan LogEvent, subscriberBuffer)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.subs[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe detaches the observer and closes its channel. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.C)
}

// History returns a copy of the most recent buffered events, newest first,
// capped well below the full retention window.
func (b *Broadcaster) History() []LogEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.buffer)
	if n > historyLimit {
		n = historyLimit
	}
	out := make([]LogEvent, n)
	copy(out, b.buffer[:n])
	return out
}

// SubscriberCount reports currently connected observers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// BufferLen reports retained event count.
func (b *Broadcaster) BufferLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}

// StartHeartbeat emits a system-status event every interval until Close.
// The heartbeat keeps running with zero subscribers; it still feeds the
// replay buffer.
func (b *Broadcaster) StartHeartbeat(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.PublishHeartbeat()
			case <-b.stopHeartbeat:
				return
			}
		}
	}()
}

// PublishHeartbeat emits one system-status event immediately.
func (b *Broadcaster) PublishHeartbeat() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	b.Publish(LogEvent{
		Category: CategoryInfo,
		Message:  "system status",
		Origin:   OriginSystem,
		Detail: map[string]any{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"goroutines":  runtime.NumGoroutine(),
			"connections": b.SubscriberCount(),
		},
	})
}

// Close stops the heartbeat and disconnects every subscriber.
func (b *Broadcaster) Close() {
	b.heartbeatOnce.Do(func() { close(b.stopHeartbeat) })

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.C)
	}
}
