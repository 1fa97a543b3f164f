package events

import "sync"

// registry is the listener bookkeeping shared by ChannelEvent and
// CallbackEvent. L is the listener type (a channel or a func).
type registry[T any, L any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64
	replay    bool
	last      T
	hasLast   bool
}

func newRegistry[T any, L any](replay bool) registry[T, L] {
	return registry[T, L]{
		listeners: make(map[uint64]L),
		replay:    replay,
	}
}

// add stores the listener and returns its id plus the value to replay, if any.
func (r *registry[T, L]) add(listener L) (uint64, T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener
	return id, r.last, r.replay && r.hasLast
}

func (r *registry[T, L]) remove(id uint64) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// snapshot records value as the last event and returns the listeners to
// notify. Listeners are called outside the lock so they may unregister.
func (r *registry[T, L]) snapshot(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replay {
		r.last = value
		r.hasLast = true
	}
	out := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

func (r *registry[T, L]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
