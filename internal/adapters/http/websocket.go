package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/oskargil/crashatlas/internal/pkg/metrics"
)

// WebSocketHandler relays dataset events to connected dashboards. Every
// client gets all "crashatlas.>" subjects; the payloads are small and the
// client decides what to act on (a reload event re-fetches markers and
// analytics).
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"live updates unavailable"}`))
			return
		}

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "addr", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := nc.Subscribe("crashatlas.>", func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Warn("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Drain client frames until disconnect; the relay is one-way.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		slog.Info("ws client disconnected", "addr", remoteAddr)
	}
}
