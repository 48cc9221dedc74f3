// Package state implements the client's reactive state layer: the session
// credential holder, the remote-backed feeds, the analytics aggregator, and
// the notice inbox. Each container owns its data behind a mutex, publishes
// changes through its own Signal, and gates authenticated calls on the
// session. Containers never reach into each other's state.
package state

import "sync"

// Signal is the publish/subscribe primitive the containers build on. Each
// container owns one; there is no ambient broadcast channel.
//
// Notify runs every subscriber synchronously, in subscription order, on the
// calling goroutine. Delivery iterates a snapshot taken at the start of the
// round, so a callback that unsubscribes (itself or a peer) mid-round does
// not affect who else is called in that round.
type Signal struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func()
}

// Subscribe registers a callback and returns its unsubscribe handle.
// Unsubscribing twice is harmless.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every currently registered callback. The subscriber list
// is snapshotted before the first call so the lock is not held while
// callbacks run; callbacks may subscribe, unsubscribe, or notify again.
func (s *Signal) Notify() {
	s.mu.Lock()
	snapshot := make([]subscriber, len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn()
	}
}

// NotifyLater schedules a Notify after the current call stack unwinds,
// for publishers that must not re-enter subscribers mid-teardown (logout).
func (s *Signal) NotifyLater() {
	go s.Notify()
}
