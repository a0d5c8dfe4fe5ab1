package server

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
)

// DefaultSubscriberBuffer is the number of events a watcher may lag behind
// before it is disconnected.
const DefaultSubscriberBuffer = 64

// subscriber is one watcher of the hub.
type subscriber struct {
	// events receives published events; it is closed when the subscriber is dropped.
	events chan modeltimer.Event
	// err tells why events was closed. It is written before the close.
	err error
}

// hub fans timer events out to watchers without ever blocking the publisher.
type hub struct {
	// log reports dropped subscribers.
	log *zap.SugaredLogger
	// buffer is the channel capacity of every subscriber.
	buffer int

	// mu protects subscribers and closed.
	mu sync.Mutex
	// subscribers are the live watchers by id.
	subscribers map[uuid.UUID]*subscriber
	// closed rejects new subscribers after shutdown.
	closed bool
}

func newHub(log *zap.SugaredLogger, buffer int) *hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	return &hub{
		log:         log,
		buffer:      buffer,
		subscribers: make(map[uuid.UUID]*subscriber),
	}
}

// subscribe registers a new watcher.
func (h *hub) subscribe() (uuid.UUID, *subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return uuid.Nil, nil, api.ErrUnavailable
	}

	id := uuid.New()
	sub := &subscriber{events: make(chan modeltimer.Event, h.buffer)}
	h.subscribers[id] = sub

	return id, sub, nil
}

// unsubscribe removes a watcher. Unknown ids are ignored.
func (h *hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers, id)
}

// publish delivers an event to every watcher. A watcher whose buffer is full
// is dropped.
func (h *hub) publish(event modeltimer.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			h.log.Warnw("Dropping slow subscriber", "subscriber", id.String(), "event", string(event.Kind))
			h.dropLocked(id, sub, api.ErrSlowSubscriber)
		}
	}
}

// publishTo delivers an event to a single watcher, if it is still live.
func (h *hub) publishTo(id uuid.UUID, event modeltimer.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subscribers[id]
	if !ok {
		return
	}

	select {
	case sub.events <- event:
	default:
		h.dropLocked(id, sub, api.ErrSlowSubscriber)
	}
}

// close drops every watcher and rejects new ones.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for id, sub := range h.subscribers {
		h.dropLocked(id, sub, api.ErrUnavailable)
	}
}

// size returns the number of live watchers.
func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers)
}

func (h *hub) dropLocked(id uuid.UUID, sub *subscriber, err error) {
	sub.err = err
	close(sub.events)
	delete(h.subscribers, id)
}
