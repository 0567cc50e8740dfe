package host

import (
	"sync"

	"gitlab.com/tozd/go/errors"
)

// Subscriptions collects disposables that share one lifetime. Dispose
// releases them in reverse order of registration, exactly once.
type Subscriptions struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// Add registers d. Adding to an already disposed list releases d at once.
func (s *Subscriptions) Add(d Disposable) error {
	if d == nil {
		return nil
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return d.Dispose()
	}
	s.items = append(s.items, d)
	s.mu.Unlock()
	return nil
}

func (s *Subscriptions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Subscriptions) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	items := s.items
	s.items = nil
	s.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
