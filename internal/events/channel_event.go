package events

// ChannelEvent fans values out to listener channels without ever blocking
// the notifier. When a listener's buffer is full the oldest queued value is
// dropped so the listener always ends up holding the most recent one; a
// clock view that falls behind should skip to the current second, not
// replay stale ones.
type ChannelEvent[T any] struct {
	reg registry[T, chan T]
}

// NewChannelEvent creates a ChannelEvent. With replayLast set, a listener
// registered after the first Notify immediately receives the last value.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{reg: newRegistry[T, chan T](replayLast)}
}

// Listen registers ch and returns its deregistration function.
// ch must be buffered (capacity >= 1) for latest-value delivery to work.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}
	id, last, replay := e.reg.add(ch)
	if replay {
		offerLatest(ch, last)
	}
	return func() { e.reg.remove(id) }
}

// Notify delivers value to every registered channel.
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.snapshot(value) {
		offerLatest(ch, value)
	}
}

// ListenerCount returns the number of registered channels
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

// offerLatest sends value, evicting one stale value if the buffer is full.
// Gives up after a few attempts when racing other producers.
func offerLatest[T any](ch chan T, value T) {
	for attempt := 0; attempt < 3; attempt++ {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
