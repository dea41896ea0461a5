package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// Event payloads are protobuf-encoded google.protobuf.Struct values, so
// consumers in any language can decode them without a generated schema.

// EncodeMapRendered serialises a MapRendered event.
func EncodeMapRendered(evt *domain.MapRendered) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"map_id":       evt.MapID,
		"tile_style":   evt.TileStyle,
		"route_count":  evt.RouteCount,
		"dropped_rows": evt.DroppedRows,
		"rendered_at":  evt.RenderedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build event: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeMapRendered is the inverse of EncodeMapRendered.
func DecodeMapRendered(data []byte) (*domain.MapRendered, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	f := s.GetFields()
	evt := &domain.MapRendered{
		MapID:       f["map_id"].GetStringValue(),
		TileStyle:   f["tile_style"].GetStringValue(),
		RouteCount:  int(f["route_count"].GetNumberValue()),
		DroppedRows: int(f["dropped_rows"].GetNumberValue()),
	}
	if evt.MapID == "" {
		return nil, fmt.Errorf("decode event: missing map_id")
	}
	if ts := f["rendered_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("decode event: rendered_at: %w", err)
		}
		evt.RenderedAt = t
	}
	return evt, nil
}
