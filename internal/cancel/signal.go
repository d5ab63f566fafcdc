// Package cancel provides the cancellation flag shared between the host and
// a running judge. A nil *Signal is valid and never fires; the zero Signal is
// ready to use.
package cancel

import "sync"

// Signal is level-triggered: once requested it stays requested until the
// owner calls Reset.
type Signal struct {
	mu        sync.Mutex
	requested bool
	done      chan struct{}
}

func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

func (s *Signal) Request() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requested {
		return
	}
	s.requested = true
	close(s.doneLocked())
}

func (s *Signal) Requested() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// Done is closed while the signal is requested. For a nil signal it returns
// nil, which blocks forever in a select.
func (s *Signal) Done() <-chan struct{} {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneLocked()
}

// Reset clears a previous request. Only the owner of the signal calls it,
// never the code observing it.
func (s *Signal) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requested {
		return
	}
	s.requested = false
	s.done = make(chan struct{})
}

func (s *Signal) doneLocked() chan struct{} {
	if s.done == nil {
		s.done = make(chan struct{})
	}
	return s.done
}
