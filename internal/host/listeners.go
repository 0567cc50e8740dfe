package host

import "sync"

// Listeners is an ordered set of callbacks. Each Add returns a Disposable
// that removes the callback again.
type Listeners[T any] struct {
	mu    sync.Mutex
	next  int
	items []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (l *Listeners[T]) Add(fn func(T)) Disposable {
	l.mu.Lock()
	l.next++
	id := l.next
	l.items = append(l.items, listener[T]{id: id, fn: fn})
	l.mu.Unlock()
	return DisposeFunc(func() error {
		l.remove(id)
		return nil
	})
}

func (l *Listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.id == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

// Emit calls every listener registered at the time of the call, in order.
func (l *Listeners[T]) Emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), len(l.items))
	for i, it := range l.items {
		fns[i] = it.fn
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
