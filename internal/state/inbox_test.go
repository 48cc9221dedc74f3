package state

import (
	"fmt"
	"testing"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/model"
)

// countUnread recomputes the unread count from the records themselves.
func countUnread(notices []model.Notice) int {
	n := 0
	for _, notice := range notices {
		if !notice.Read {
			n++
		}
	}
	return n
}

func TestInboxIngestInvariants(t *testing.T) {
	inbox := NewInbox()

	for n := 1; n <= 60; n++ {
		title := fmt.Sprintf("notice %d", n)
		inbox.Ingest(model.Notice{Title: title, Body: "body"})

		st := inbox.State()
		if len(st.Notices) > constants.InboxCapacity {
			t.Fatalf("size = %d after %d ingests, cap is %d", len(st.Notices), n, constants.InboxCapacity)
		}
		if st.Unread != countUnread(st.Notices) {
			t.Fatalf("unread = %d after %d ingests, records say %d", st.Unread, n, countUnread(st.Notices))
		}
		if st.Notices[0].Title != title {
			t.Fatalf("head = %q after ingesting %q", st.Notices[0].Title, title)
		}
		if st.Notices[0].ReceivedAt.IsZero() {
			t.Fatal("ingest did not stamp ReceivedAt")
		}
	}
}

func TestInboxEvictionOrder(t *testing.T) {
	inbox := NewInbox()
	for n := 1; n <= 51; n++ {
		inbox.Ingest(model.Notice{Title: fmt.Sprintf("notice %d", n)})
	}

	st := inbox.State()
	if len(st.Notices) != 50 {
		t.Fatalf("size = %d, want 50", len(st.Notices))
	}
	if st.Notices[0].Title != "notice 51" {
		t.Errorf("head = %q, want notice 51", st.Notices[0].Title)
	}
	if st.Notices[49].Title != "notice 2" {
		t.Errorf("tail = %q, want notice 2", st.Notices[49].Title)
	}
	for _, notice := range st.Notices {
		if notice.Title == "notice 1" {
			t.Error("first ingested notice survived eviction")
		}
	}
}

func TestInboxEvictionAdjustsUnread(t *testing.T) {
	inbox := NewInbox()
	for n := 1; n <= 50; n++ {
		inbox.Ingest(model.Notice{Title: fmt.Sprintf("notice %d", n)})
	}

	// Tail read, so its eviction must not decrement the counter.
	if !inbox.MarkRead(49) {
		t.Fatal("MarkRead(49) did not transition")
	}
	if got := inbox.Unread(); got != 49 {
		t.Fatalf("unread = %d after one mark, want 49", got)
	}

	inbox.Ingest(model.Notice{Title: "notice 51"})
	st := inbox.State()
	if st.Unread != 50 || st.Unread != countUnread(st.Notices) {
		t.Errorf("unread = %d after evicting a read tail, records say %d", st.Unread, countUnread(st.Notices))
	}

	// Now the tail is unread; its eviction comes off the counter.
	inbox.Ingest(model.Notice{Title: "notice 52"})
	st = inbox.State()
	if st.Unread != 50 || st.Unread != countUnread(st.Notices) {
		t.Errorf("unread = %d after evicting an unread tail, records say %d", st.Unread, countUnread(st.Notices))
	}
}

func TestInboxMarkRead(t *testing.T) {
	inbox := NewInbox()
	inbox.Ingest(model.Notice{Title: "a"})
	inbox.Ingest(model.Notice{Title: "b"})
	inbox.Ingest(model.Notice{Title: "c"})

	if !inbox.MarkRead(1) {
		t.Fatal("MarkRead(1) did not transition an unread notice")
	}
	if got := inbox.Unread(); got != 2 {
		t.Errorf("unread = %d, want 2", got)
	}

	if inbox.MarkRead(1) {
		t.Error("MarkRead(1) transitioned an already-read notice")
	}
	if got := inbox.Unread(); got != 2 {
		t.Errorf("unread = %d after repeat mark, want 2", got)
	}

	if inbox.MarkRead(7) || inbox.MarkRead(-1) {
		t.Error("out-of-range MarkRead reported a transition")
	}
}

func TestInboxMarkAllReadThenMarkReadStaysZero(t *testing.T) {
	inbox := NewInbox()
	for n := 0; n < 5; n++ {
		inbox.Ingest(model.Notice{Title: fmt.Sprintf("notice %d", n)})
	}

	inbox.MarkAllRead()
	if got := inbox.Unread(); got != 0 {
		t.Fatalf("unread = %d after MarkAllRead, want 0", got)
	}

	if inbox.MarkRead(2) {
		t.Error("MarkRead transitioned after MarkAllRead")
	}
	if got := inbox.Unread(); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}

	for _, notice := range inbox.State().Notices {
		if !notice.Read {
			t.Errorf("notice %q still unread", notice.Title)
		}
	}
}

func TestInboxClear(t *testing.T) {
	inbox := NewInbox()
	inbox.Ingest(model.Notice{Title: "a"})
	inbox.Ingest(model.Notice{Title: "b"})

	published := 0
	inbox.Subscribe(func() { published++ })

	inbox.Clear()

	st := inbox.State()
	if len(st.Notices) != 0 || st.Unread != 0 {
		t.Errorf("state = %+v after clear", st)
	}
	if published != 1 {
		t.Errorf("clear published %d times, want 1", published)
	}
}

func TestInboxStateIsSnapshot(t *testing.T) {
	inbox := NewInbox()
	inbox.Ingest(model.Notice{Title: "a"})

	st := inbox.State()
	st.Notices[0].Read = true

	if inbox.State().Notices[0].Read {
		t.Error("mutating a snapshot changed the inbox")
	}
	if got := inbox.Unread(); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

func TestInboxPublishesPerIngest(t *testing.T) {
	inbox := NewInbox()

	published := 0
	inbox.Subscribe(func() { published++ })

	inbox.Ingest(model.Notice{Title: "a"})
	inbox.Ingest(model.Notice{Title: "b"})
	inbox.MarkAllRead()

	if published != 3 {
		t.Errorf("published %d times, want one per ingest plus one for the bulk mark", published)
	}
}
