package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

func TestHub_FanOut(t *testing.T) {
	hub := NewHub()
	all := &wsClient{send: make(chan []byte, 1)}
	dark := &wsClient{send: make(chan []byte, 1)}
	dark.setFilter("Cartodb dark_matter")
	hub.register(all)
	hub.register(dark)
	require.Equal(t, 2, hub.Clients())

	evt := &domain.MapRendered{MapID: "m1", TileStyle: "OpenStreetMap", RouteCount: 3, RenderedAt: time.Now().UTC()}
	require.NoError(t, hub.HandleMapRendered(context.Background(), evt))

	select {
	case raw := <-all.send:
		var got wsEvent
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "map.rendered", got.Type)
		assert.Equal(t, "m1", got.Data.MapID)
		assert.Equal(t, 3, got.Data.RouteCount)
	default:
		t.Fatal("unfiltered client did not receive the event")
	}
	assert.Empty(t, dark.send, "filtered client should not receive other tile styles")

	evt.TileStyle = "Cartodb dark_matter"
	require.NoError(t, hub.HandleMapRendered(context.Background(), evt))
	assert.Len(t, dark.send, 1)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	slow := &wsClient{send: make(chan []byte)}
	hub.register(slow)

	done := make(chan struct{})
	go func() {
		_ = hub.HandleMapRendered(context.Background(), &domain.MapRendered{MapID: "m"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("HandleMapRendered blocked on a full client")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	c := &wsClient{send: make(chan []byte, 1)}
	hub.register(c)
	hub.unregister(c)
	hub.unregister(c)

	assert.Equal(t, 0, hub.Clients())
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_FilterMatchesTileSpellings(t *testing.T) {
	tests := []struct {
		filter string
		event  string
		want   bool
	}{
		{"cartodb_positron", "Cartodb Positron", true},
		{"CARTODB-DARK-MATTER", "Cartodb dark_matter", true},
		{"openstreetmap", "OpenStreetMap", true},
		{"cartodb_positron", "OpenStreetMap", false},
		{"My Tiles", "my tiles", true},
		{"", "Cartodb Positron", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"/"+tt.event, func(t *testing.T) {
			hub := NewHub()
			c := &wsClient{send: make(chan []byte, 1)}
			c.setFilter(tt.filter)
			hub.register(c)

			require.NoError(t, hub.HandleMapRendered(context.Background(),
				&domain.MapRendered{MapID: "m", TileStyle: tt.event}))
			assert.Equal(t, tt.want, len(c.send) == 1)
		})
	}
}
