package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher implements ports.EventPublisher using NATS.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with indefinite reconnects.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// reloadEvent is the payload for dataset reload notifications.
type reloadEvent struct {
	Event      string    `json:"event"`
	Records    int       `json:"records"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// PublishDatasetReloaded notifies subscribers (WebSocket relays, other
// instances) that a fresh snapshot is live.
func (p *Publisher) PublishDatasetReloaded(ctx context.Context, recordCount int) error {
	data, err := json.Marshal(reloadEvent{
		Event:      "dataset_reloaded",
		Records:    recordCount,
		ReloadedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.conn.Publish("crashatlas.dataset.reloaded", data)
}

// PublishBroadcast pushes an opaque payload to all dashboard subscribers.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("crashatlas.updates.broadcast", data)
}

// Connected reports connection state, for readiness checks.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
