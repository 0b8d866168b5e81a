package watcher

import "sync"

// Subscription is a handle to a running poll loop: dispose to stop it.
// Dispose is idempotent and safe from any goroutine.
type Subscription struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSubscription returns an undisposed subscription.
func NewSubscription() *Subscription {
	return &Subscription{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Dispose stops the owning loop. The loop may still finish its current tick.
func (s *Subscription) Dispose() {
	s.once.Do(func() { close(s.stop) })
}

// Disposed is closed once Dispose has been called.
func (s *Subscription) Disposed() <-chan struct{} {
	return s.stop
}

// Done is closed once the owning loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Stopped reports whether Dispose has been called.
func (s *Subscription) Stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// MarkDone is called by the owning loop as it exits.
func (s *Subscription) MarkDone() {
	close(s.done)
}
