package http

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/metrics"
)

const (
	wsSendBuffer   = 16
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// wsMessage is sent by clients to narrow or reset their feed.
// {"action":"subscribe","tile_style":"OpenStreetMap"} only relays maps drawn
// on that tile style; an empty tile_style means all maps.
type wsMessage struct {
	Action    string `json:"action"` // "subscribe" | "unsubscribe"
	TileStyle string `json:"tile_style"`
}

// wsEvent is the envelope pushed to clients.
type wsEvent struct {
	Type string              `json:"type"`
	Data *domain.MapRendered `json:"data"`
}

type wsClient struct {
	send chan []byte

	mu   sync.Mutex
	tile string // tileFilterKey form, "" = all
}

func (c *wsClient) wants(tile string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tile == "" || c.tile == tileFilterKey(tile)
}

func (c *wsClient) setFilter(tile string) {
	c.mu.Lock()
	c.tile = tileFilterKey(tile)
	c.mu.Unlock()
}

// tileFilterKey spells a tile style the way the tile registry does, so
// "cartodb_positron" and "Cartodb Positron" select the same feed.
func tileFilterKey(tile string) string {
	tile = strings.TrimSpace(tile)
	if tile == "" {
		return ""
	}
	layer, _ := plotter.ResolveTile(tile)
	return strings.ToLower(layer.Name)
}

// Hub fans map.rendered events out to connected WebSocket clients. It is
// fed by a single broker subscription, so clients do not hold their own.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleMapRendered relays evt to every interested client. Slow clients
// whose buffer is full miss the event rather than stall the others.
// It has the handler signature expected by ports.EventSubscriber.
func (h *Hub) HandleMapRendered(ctx context.Context, evt *domain.MapRendered) error {
	data, err := json.Marshal(wsEvent{Type: "map.rendered", Data: evt})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(evt.TileStyle) {
			continue
		}
		select {
		case c.send <- data:
		default:
			logging.FromContext(ctx).Warn("ws client too slow, dropping event", "map_id", evt.MapID)
		}
	}
	return nil
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.ActiveWebSockets.Inc()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.ActiveWebSockets.Dec()
	}
	h.mu.Unlock()
}

// WebSocketHandler streams map.rendered events to the connection until the
// client goes away.
func WebSocketHandler(hub *Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		log := logging.FromContext(context.Background()).With("remote", conn.RemoteAddr().String())
		log.Info("ws client connected")

		client := &wsClient{send: make(chan []byte, wsSendBuffer)}
		hub.register(client)

		var wmu sync.Mutex
		write := func(kind int, data []byte) error {
			wmu.Lock()
			defer wmu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return conn.WriteMessage(kind, data)
		}
		reply := func(v any) {
			data, _ := json.Marshal(v)
			_ = write(websocket.TextMessage, data)
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.send:
					if !ok {
						return
					}
					if err := write(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				reply(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				client.setFilter(m.TileStyle)
				reply(map[string]string{"status": "subscribed", "tile_style": m.TileStyle})
			case "unsubscribe":
				client.setFilter("")
				reply(map[string]string{"status": "unsubscribed"})
			default:
				reply(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		hub.unregister(client)
		log.Info("ws client disconnected")
	}
}
