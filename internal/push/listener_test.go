package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/civica-dev/civica/config"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/state"
)

var upgrader = websocket.Upgrader{}

type fakeSession struct {
	mu          sync.Mutex
	token       string
	epoch       uint64
	subs        []func()
	invalidated int
}

func (s *fakeSession) Credential() (state.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return state.Credential{}, faults.ErrNotAuthenticated
	}
	return state.Credential{Token: s.token, Epoch: s.epoch}, nil
}

func (s *fakeSession) Current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}

func (s *fakeSession) Invalidate() {
	s.mu.Lock()
	s.invalidated++
	s.mu.Unlock()
	s.signOut()
}

func (s *fakeSession) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *fakeSession) signOut() {
	s.mu.Lock()
	s.token = ""
	s.epoch++
	subs := append([]func(){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

type chanSink struct {
	notices chan model.Notice
}

func newChanSink() *chanSink {
	return &chanSink{notices: make(chan model.Notice, 16)}
}

func (c *chanSink) Ingest(notice model.Notice) {
	c.notices <- notice
}

func (c *chanSink) next(t *testing.T) model.Notice {
	t.Helper()
	select {
	case n := <-c.notices:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notice")
		return model.Notice{}
	}
}

func fastSettings() config.PushSettings {
	return config.PushSettings{
		ReconnectInitial: 10 * time.Millisecond,
		ReconnectMax:     40 * time.Millisecond,
	}
}

// holdOpen reads until the peer goes away so the server side of the stream
// stays up for the duration of a test.
func holdOpen(conn *websocket.Conn) {
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestListenerDeliversNotices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "tok-1" {
			t.Errorf("stream dialed with token %q, want %q", got, "tok-1")
		}
		if got := r.URL.Query().Get("device_id"); got != "device-1" {
			t.Errorf("stream dialed with device_id %q, want %q", got, "device-1")
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"Issue assigned","body":"Pothole on MG Road was assigned","data":{"type":"issue_assigned","issue_id":"42"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"Issue completed","body":"Work finished"}`))
		holdOpen(conn)
	}))
	defer srv.Close()

	session := &fakeSession{token: "tok-1"}
	sink := newChanSink()
	l := NewListener(srv.URL, "device-1", session, sink, fastSettings())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	first := sink.next(t)
	if first.Title != "Issue assigned" {
		t.Errorf("first notice title = %q, want %q", first.Title, "Issue assigned")
	}
	if first.Payload["issue_id"] != "42" {
		t.Errorf("first notice payload issue_id = %q, want %q", first.Payload["issue_id"], "42")
	}
	if first.ReceivedAt.IsZero() {
		t.Error("notice ReceivedAt was not stamped")
	}
	if first.Read {
		t.Error("notice arrived already read")
	}

	second := sink.next(t)
	if second.Title != "Issue completed" {
		t.Errorf("second notice title = %q, want %q", second.Title, "Issue completed")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestListenerSignedOutReturnsImmediately(t *testing.T) {
	l := NewListener("http://127.0.0.1:0", "device-1", &fakeSession{}, newChanSink(), fastSettings())

	err := l.Run(context.Background())
	if !errors.Is(err, faults.ErrNotAuthenticated) {
		t.Errorf("Run() = %v, want faults.ErrNotAuthenticated", err)
	}
}

func TestListenerSkipsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{{not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"Survivor","body":"still streaming"}`))
		holdOpen(conn)
	}))
	defer srv.Close()

	session := &fakeSession{token: "tok-1"}
	sink := newChanSink()
	l := NewListener(srv.URL, "device-1", session, sink, fastSettings())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	got := sink.next(t)
	if got.Title != "Survivor" {
		t.Errorf("notice title = %q, want %q (malformed frame should be dropped)", got.Title, "Survivor")
	}
}

func TestListenerLogoutTearsDownStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"Before logout","body":"b"}`))
		holdOpen(conn)
	}))
	defer srv.Close()

	session := &fakeSession{token: "tok-1"}
	sink := newChanSink()
	l := NewListener(srv.URL, "device-1", session, sink, fastSettings())

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	sink.next(t)
	session.signOut()

	select {
	case err := <-done:
		if !errors.Is(err, faults.ErrNotAuthenticated) {
			t.Errorf("Run() = %v, want faults.ErrNotAuthenticated", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after logout")
	}

	if len(sink.notices) != 0 {
		t.Errorf("%d notices delivered after logout, want 0", len(sink.notices))
	}
}

func TestListenerRejectedDialSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := &fakeSession{token: "tok-expired"}
	l := NewListener(srv.URL, "device-1", session, newChanSink(), fastSettings())

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, faults.ErrNotAuthenticated) {
			t.Errorf("Run() = %v, want faults.ErrNotAuthenticated", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a rejected dial")
	}

	session.mu.Lock()
	invalidated := session.invalidated
	session.mu.Unlock()
	if invalidated != 1 {
		t.Errorf("session invalidated %d times, want 1", invalidated)
	}
}

func TestListenerReconnects(t *testing.T) {
	var dials atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if dials.Add(1) == 1 {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"First connection","body":"b"}`))
			conn.Close()
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"title":"Second connection","body":"b"}`))
		holdOpen(conn)
	}))
	defer srv.Close()

	session := &fakeSession{token: "tok-1"}
	sink := newChanSink()
	l := NewListener(srv.URL, "device-1", session, sink, fastSettings())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	if got := sink.next(t); got.Title != "First connection" {
		t.Errorf("first notice title = %q, want %q", got.Title, "First connection")
	}
	if got := sink.next(t); got.Title != "Second connection" {
		t.Errorf("second notice title = %q, want %q", got.Title, "Second connection")
	}
	if n := dials.Load(); n < 2 {
		t.Errorf("server saw %d dials, want at least 2", n)
	}
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{
			name:   "http to ws",
			server: "http://localhost:8000",
			want:   "ws://localhost:8000/notifications/ws?device_id=device-1&token=tok-1",
		},
		{
			name:   "https to wss",
			server: "https://civic.example.org",
			want:   "wss://civic.example.org/notifications/ws?device_id=device-1&token=tok-1",
		},
		{
			name:   "trailing slash trimmed",
			server: "http://localhost:8000/",
			want:   "ws://localhost:8000/notifications/ws?device_id=device-1&token=tok-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewListener(tt.server, "device-1", &fakeSession{}, newChanSink(), fastSettings())
			if got := l.streamURL("tok-1"); got != tt.want {
				t.Errorf("streamURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
