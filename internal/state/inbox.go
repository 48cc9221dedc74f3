package state

import (
	"sync"
	"time"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/model"
)

// InboxState is the observable snapshot of the notice buffer.
type InboxState struct {
	Notices []model.Notice
	Unread  int
}

// Inbox is the bounded push-notice buffer: newest notice at index 0, the
// oldest evicted once the capacity is exceeded, and an unread count kept
// in lockstep with the records' read flags. It has no transport
// dependency; the push listener drives it through Ingest.
type Inbox struct {
	mu     sync.Mutex
	signal Signal

	capacity int
	notices  []model.Notice
	unread   int
}

// NewInbox returns an empty inbox with the standard capacity.
func NewInbox() *Inbox {
	return &Inbox{capacity: constants.InboxCapacity}
}

// Subscribe registers an observer for inbox changes.
func (b *Inbox) Subscribe(fn func()) (unsubscribe func()) {
	return b.signal.Subscribe(fn)
}

// State returns a snapshot of the buffer, newest first. The slice is a
// copy; mutating it does not touch the inbox.
func (b *Inbox) State() InboxState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return InboxState{
		Notices: append([]model.Notice(nil), b.notices...),
		Unread:  b.unread,
	}
}

// Unread returns the current unread count.
func (b *Inbox) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread
}

// Ingest prepends a freshly delivered notice, then enforces the capacity
// by evicting the tail. An evicted unread notice comes off the counter so
// it always matches the surviving records. Publishes once per notice.
func (b *Inbox) Ingest(notice model.Notice) {
	b.mu.Lock()
	if notice.ReceivedAt.IsZero() {
		notice.ReceivedAt = time.Now()
	}
	notice.Read = false

	b.notices = append([]model.Notice{notice}, b.notices...)
	b.unread++

	if len(b.notices) > b.capacity {
		evicted := b.notices[len(b.notices)-1]
		b.notices = b.notices[:len(b.notices)-1]
		if !evicted.Read {
			b.unread--
		}
	}
	b.mu.Unlock()
	b.signal.Notify()
}

// MarkRead transitions the notice at index to read and decrements the
// unread count by exactly one. Already-read notices and out-of-range
// indexes are no-ops; the counter never double-decrements. Reports whether
// a notice actually transitioned.
func (b *Inbox) MarkRead(index int) bool {
	b.mu.Lock()
	if index < 0 || index >= len(b.notices) || b.notices[index].Read {
		b.mu.Unlock()
		return false
	}
	b.notices[index].Read = true
	b.unread--
	b.mu.Unlock()
	b.signal.Notify()
	return true
}

// MarkAllRead transitions every notice to read and zeroes the counter in
// one update. Publishes once.
func (b *Inbox) MarkAllRead() {
	b.mu.Lock()
	for i := range b.notices {
		b.notices[i].Read = true
	}
	b.unread = 0
	b.mu.Unlock()
	b.signal.Notify()
}

// Clear empties the buffer. Publishes once.
func (b *Inbox) Clear() {
	b.mu.Lock()
	b.notices = nil
	b.unread = 0
	b.mu.Unlock()
	b.signal.Notify()
}
