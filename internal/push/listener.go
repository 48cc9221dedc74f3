// Package push maintains the live notice stream from the civic service.
// The stream carries the frames the service fans out to signed-in
// installations; holding an open stream under a token and device id is what
// registers this device for delivery, so a signed-out session has no stream
// and no binding.
package push

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/civica-dev/civica/config"
	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/state"
)

// StreamPath is the websocket endpoint serving per-device notices.
const StreamPath = "/notifications/ws"

// Sink receives every decoded notice. The state inbox satisfies it.
type Sink interface {
	Ingest(notice model.Notice)
}

// Session is the slice of the credential holder the listener consults.
// No data flows from the stream back into session state; the listener only
// reads credentials and reports rejected ones.
type Session interface {
	Credential() (state.Credential, error)
	Current(epoch uint64) bool
	Invalidate()
	Subscribe(fn func()) (unsubscribe func())
}

// frame is the wire shape of one notice. Data carries the routing payload
// the service attaches (notice type, issue id).
type frame struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Listener dials the notice stream and feeds every decoded frame to the
// sink, reconnecting with capped exponential backoff until its context ends
// or the session signs out.
type Listener struct {
	server   string
	deviceID string
	session  Session
	sink     Sink
	settings config.PushSettings
	dialer   *websocket.Dialer

	mu    sync.Mutex
	conn  *websocket.Conn
	epoch uint64
}

// NewListener creates a listener for the given server base URL. The device
// id comes from the credential store and survives logout.
func NewListener(server, deviceID string, session Session, sink Sink, settings config.PushSettings) *Listener {
	return &Listener{
		server:   server,
		deviceID: deviceID,
		session:  session,
		sink:     sink,
		settings: settings,
		dialer: &websocket.Dialer{
			HandshakeTimeout: constants.RequestTimeout,
		},
	}
}

// Run streams notices until the context is cancelled or the session signs
// out. A signed-out session is reported as faults.ErrNotAuthenticated; a
// logout during a re-login keeps the loop alive and rebinds under the new
// credential without waiting out the backoff.
func (l *Listener) Run(ctx context.Context) error {
	stop := l.session.Subscribe(l.dropStaleStream)
	defer stop()

	backoff := l.settings.ReconnectInitial

	for {
		cred, err := l.session.Credential()
		if err != nil {
			return err
		}

		connected, err := l.stream(ctx, cred)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !l.session.Current(cred.Epoch) {
			continue
		}

		if connected {
			backoff = l.settings.ReconnectInitial
		}

		log.Debug("notice stream interrupted", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, l.settings.ReconnectMax)
	}
}

// stream opens one connection and pumps frames until it drops. The bool
// reports whether the dial succeeded, which resets the backoff.
func (l *Listener) stream(ctx context.Context, cred state.Credential) (bool, error) {
	conn, resp, err := l.dialer.DialContext(ctx, l.streamURL(cred.Token), nil)
	if err != nil {
		if resp != nil {
			if fault := faults.FromResponse(resp.StatusCode, "", ""); fault.IsAuth() {
				log.Warn("notice stream rejected the credential, signing out")
				l.session.Invalidate()
			}
		}
		return false, err
	}

	l.track(conn, cred.Epoch)
	defer l.untrack(conn)

	// An established connection outlives its dial context; close it by hand
	// once the context ends so the read loop unblocks.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	conn.SetReadLimit(constants.PushReadLimit)
	log.Debug("notice stream connected", "device_id", l.deviceID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warn("dropping malformed notice frame", "error", err)
			continue
		}

		l.sink.Ingest(model.Notice{
			Title:      f.Title,
			Body:       f.Body,
			Payload:    f.Data,
			ReceivedAt: time.Now(),
		})
	}
}

func (l *Listener) track(conn *websocket.Conn, epoch uint64) {
	l.mu.Lock()
	l.conn = conn
	l.epoch = epoch
	l.mu.Unlock()
}

func (l *Listener) untrack(conn *websocket.Conn) {
	l.mu.Lock()
	if l.conn == conn {
		l.conn = nil
	}
	l.mu.Unlock()
	conn.Close()
}

// dropStaleStream closes the live connection once its epoch is no longer
// current. The read loop surfaces the close as an error and Run exits
// through the signed-out path, or rebinds if a new session took over.
func (l *Listener) dropStaleStream() {
	l.mu.Lock()
	conn, epoch := l.conn, l.epoch
	l.mu.Unlock()

	if conn == nil || l.session.Current(epoch) {
		return
	}

	log.Debug("closing notice stream after session reset")
	conn.Close()
}

// streamURL derives the websocket endpoint from the HTTP base URL. The
// token and device id ride the query string; presenting them at dial time
// is what registers this installation for delivery.
func (l *Listener) streamURL(token string) string {
	u := strings.TrimSuffix(l.server, "/") + StreamPath
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("device_id", l.deviceID)
	return u + "?" + q.Encode()
}
