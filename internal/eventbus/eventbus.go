// Package eventbus publishes session lifecycle events (connect,
// reconnect, gap-detected) over NATS core pub/sub, grounded on
// pkg/node's BaseNode.SetNATSConnection/GetNATSConnection pattern and
// internal/pubsub.Publisher's thin wrapper around *nats.Conn.Publish.
//
// This is operational visibility into the pipeline's own behavior,
// not an analytical consumer of replayed book contents, so it is not
// excluded by the Non-goals around analytical use of the replayed
// book.
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is one lifecycle notification about a stream session.
type Event struct {
	Ts     time.Time `json:"ts"`
	Symbol string    `json:"symbol"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

const (
	KindConnected    = "connected"
	KindReconnecting = "reconnecting"
	KindGapDetected  = "gap_detected"
)

// Bus publishes Events to a NATS subject. A nil *Bus (or one built
// around a nil connection) is a valid no-op, so wiring it into a
// Session is optional: deployments without a NATS connection simply
// skip publication.
type Bus struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url and returns a Bus publishing to subject. Callers
// that don't want the event bridge can skip calling Connect entirely
// and pass a nil *Bus to ingest.NewSession.
func Connect(url, subject string) (*Bus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn, subject: subject}, nil
}

// Publish emits ev as JSON on the bus's subject. Errors are returned
// to the caller; the stream session discards them without logging, so
// a failed publish never affects ingestion.
func (b *Bus) Publish(ev Event) error {
	if b == nil || b.conn == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.conn.Publish(b.subject, data)
}

// Close closes the underlying NATS connection (without draining it).
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.conn.Close()
}
