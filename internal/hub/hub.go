// Package hub maintains the set of live WebSocket subscribers and fans out
// domain-change notifications to them.
package hub

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/observability"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// Sendable is the capability a subscriber transport must provide. Real
// WebSocket connections and in-memory test doubles both implement it.
type Sendable interface {
	// Send delivers one serialized broadcast message. An error marks the
	// subscriber as dead; the hub drops it and moves on.
	Send(data string) error
}

// Hub is the process-wide registry of broadcast subscribers. Fan-out is
// best effort: no retry, no delivery guarantee, per-subscriber ordering
// only. The hub never surfaces an error to a publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers []Sendable
	mirror      Mirror
	logger      *slog.Logger
	metrics     *observability.Metrics
	closed      bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithMirror installs a secondary transport that receives every published
// message after the primary fan-out.
func WithMirror(mirror Mirror) Option {
	return func(h *Hub) {
		if mirror != nil {
			h.mirror = mirror
		}
	}
}

// WithLogger sets the hub's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics attaches delivery metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(h *Hub) {
		h.metrics = metrics
	}
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		mirror: NopMirror{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a subscriber and returns its removal closure. The closure
// is safe to call more than once; calls after the first are no-ops.
func (h *Hub) Register(subscriber Sendable) func() {
	if subscriber == nil {
		return func() {}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return func() {}
	}
	h.subscribers = append(h.subscribers, subscriber)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.remove(subscriber)
		})
	}
}

// remove drops the subscriber by reference identity.
func (h *Hub) remove(subscriber Sendable) {
	h.mu.Lock()
	removed := false
	for i, s := range h.subscribers {
		if s == subscriber {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			removed = true
			break
		}
	}
	h.mu.Unlock()

	if removed && h.metrics != nil {
		h.metrics.Subscribers.Dec()
	}
}

// Publish serializes the message once and delivers it to every live
// subscriber in registration order. A subscriber whose Send fails is
// removed immediately and delivery continues for the rest. After the
// primary fan-out the message is forwarded to the mirror; mirror failures
// are swallowed. Publish never fails the caller.
func (h *Hub) Publish(msg models.BroadcastMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast message", "type", msg.Type, "error", err)
		return
	}
	payload := string(data)

	h.mu.Lock()
	snapshot := make([]Sendable, len(h.subscribers))
	copy(snapshot, h.subscribers)
	h.mu.Unlock()

	for _, subscriber := range snapshot {
		if err := subscriber.Send(payload); err != nil {
			h.logger.Debug("dropping dead subscriber", "type", msg.Type, "error", err)
			h.remove(subscriber)
			if h.metrics != nil {
				h.metrics.BroadcastFailures.Inc()
			}
			continue
		}
		if h.metrics != nil {
			h.metrics.BroadcastDeliveries.WithLabelValues(string(msg.Type)).Inc()
		}
	}

	h.forwardToMirror(msg)
}

// forwardToMirror re-emits the message on the secondary transport. Any
// failure, including a panic from an uninitialized transport, is contained
// here; realtime notification is a side channel, never part of the
// mutation's correctness contract.
func (h *Hub) forwardToMirror(msg models.BroadcastMessage) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Debug("mirror forward panicked", "type", msg.Type, "panic", r)
		}
	}()
	channel := MirrorChannelEvents
	switch msg.Type {
	case models.BroadcastGoodieCreated, models.BroadcastGoodieUpdated,
		models.BroadcastGoodieEdited, models.BroadcastGoodieDeleted,
		models.BroadcastGoodieCollected:
		channel = MirrorChannelGoodies
	}
	h.mirror.Forward(channel, msg)
}

// Len reports the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Shutdown clears the subscriber set and closes subscribers that also
// implement io.Closer. The hub accepts no registrations afterwards.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	subscribers := h.subscribers
	h.subscribers = nil
	h.closed = true
	h.mu.Unlock()

	for _, subscriber := range subscribers {
		if closer, ok := subscriber.(io.Closer); ok {
			_ = closer.Close()
		}
		if h.metrics != nil {
			h.metrics.Subscribers.Dec()
		}
	}
}
