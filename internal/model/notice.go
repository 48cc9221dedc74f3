package model

import "time"

// Notice is one push notification as held by the inbox. Title, body and
// payload arrive from the delivery channel; ReceivedAt is stamped on
// ingestion and Read is client-side state.
type Notice struct {
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Payload    map[string]string `json:"payload,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
	Read       bool              `json:"read"`
}

// Key derives a stable identity for archival. Payloads carry a notice id
// when the service assigns one; otherwise the timestamp disambiguates.
func (n Notice) Key() string {
	if id, ok := n.Payload["id"]; ok && id != "" {
		return id
	}
	return n.ReceivedAt.UTC().Format(time.RFC3339Nano) + "/" + n.Title
}
