package sensors

// ListenerHandle identifies a registered listener so it can be detached
// later. Handles are unique per listener list.
type ListenerHandle uint64

// listenerList is an ordered set of callbacks with handle-based removal.
// It is not safe for concurrent use: the sensor tree is confined to the
// daemon's run loop, so listener registration, removal and dispatch all
// happen on one goroutine.
type listenerList[T any] struct {
	next     ListenerHandle
	handles  []ListenerHandle
	handlers []func(T)
}

// add registers fn and returns a handle for removal.
func (l *listenerList[T]) add(fn func(T)) ListenerHandle {
	l.next++
	l.handles = append(l.handles, l.next)
	l.handlers = append(l.handlers, fn)
	return l.next
}

// remove detaches the listener registered under h. Removing an unknown
// handle is a no-op.
func (l *listenerList[T]) remove(h ListenerHandle) {
	for i, have := range l.handles {
		if have == h {
			l.handles = append(l.handles[:i], l.handles[i+1:]...)
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

// emit invokes all listeners in registration order. The handler slice is
// copied first so handlers may subscribe or unsubscribe during dispatch.
func (l *listenerList[T]) emit(v T) {
	handlers := make([]func(T), len(l.handlers))
	copy(handlers, l.handlers)
	for _, fn := range handlers {
		fn(v)
	}
}
