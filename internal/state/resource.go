package state

import (
	"sync"

	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
)

// Resource is the loading/error/data triad owned by each fetch container.
// Loading and Err are never both set by the same operation; starting an
// operation clears the previous Err before raising Loading.
type Resource[T any] struct {
	Data    T
	Loading bool
	Err     *faults.Fault
}

// feed is the shared fetch-container core: a Resource guarded by a mutex,
// a signal, and the session gate. Concrete containers embed it and drive
// the begin/finish cycle around their transport calls.
//
// Lock discipline: the mutex covers only this feed's Resource. Publishing
// and any call into the session happen with the mutex released.
type feed[T any] struct {
	mu      sync.Mutex
	signal  Signal
	session *Session
	res     Resource[T]
}

// State returns a snapshot of the feed's current resource. The data value
// is shared, not deep-copied; records are immutable once decoded.
func (f *feed[T]) State() Resource[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res
}

// Subscribe registers an observer for state changes.
func (f *feed[T]) Subscribe(fn func()) (unsubscribe func()) {
	return f.signal.Subscribe(fn)
}

// begin gates the operation on an authenticated session and, if allowed,
// clears the previous error, raises loading, and publishes. On a missing
// session it records the fault and fails fast without touching transport.
func (f *feed[T]) begin() (Credential, *faults.Fault) {
	cred, err := f.session.Credential()
	if err != nil {
		fault := faults.Classify(err)
		f.mu.Lock()
		f.res.Loading = false
		f.res.Err = fault
		f.mu.Unlock()
		f.signal.Notify()
		return Credential{}, fault
	}

	f.mu.Lock()
	f.res.Err = nil
	f.res.Loading = true
	f.mu.Unlock()
	f.signal.Notify()

	return cred, nil
}

// finish applies a load's outcome: on success the data is replaced, on
// failure the previous data is kept. Returns the classified fault, nil on
// success.
func (f *feed[T]) finish(cred Credential, data T, err error) *faults.Fault {
	return f.conclude(cred, err, func() { f.res.Data = data })
}

// settle closes out a write operation: same loading/error cycle as finish
// but the held data is never touched. The caller re-loads on success so
// observers see server-authoritative state instead of a local splice.
func (f *feed[T]) settle(cred Credential, err error) *faults.Fault {
	return f.conclude(cred, err, nil)
}

// conclude ends an operation's loading cycle, unless the session epoch
// moved while the call was in flight; stale results are discarded outright
// (the logout cascade has already reset this feed). apply runs under the
// feed lock on success. Auth rejections escalate to the session after the
// feed's own state has been published.
func (f *feed[T]) conclude(cred Credential, err error, apply func()) *faults.Fault {
	fault := faults.Classify(err)

	if !f.session.Current(cred.Epoch) {
		log.Debug("discarding stale result after session reset", "epoch", cred.Epoch)
		return nil
	}

	f.mu.Lock()
	f.res.Loading = false
	f.res.Err = fault
	if fault == nil && apply != nil {
		apply()
	}
	f.mu.Unlock()
	f.signal.Notify()

	if fault != nil && fault.IsAuth() {
		f.session.Invalidate()
	}
	return fault
}

// Reset returns the feed to its initial state: empty data, not loading,
// no error. Runs during the logout cascade and publishes once.
func (f *feed[T]) Reset() {
	var zero T
	f.mu.Lock()
	f.res = Resource[T]{Data: zero}
	f.mu.Unlock()
	f.signal.Notify()
}

// faultOrNil converts a classified fault into the operation's error return
// without wrapping nil in a non-nil interface.
func faultOrNil(f *faults.Fault) error {
	if f == nil {
		return nil
	}
	return f
}
