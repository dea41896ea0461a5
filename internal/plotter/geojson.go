package plotter

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// FeatureCollection converts the map to GeoJSON. Markers become Point
// features, lines become LineString features; the tile layer, center and
// zoom are carried as foreign members of the collection. A non-empty map
// also carries its bbox.
func (m *Map) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, mk := range m.Markers {
		f := geojson.NewFeature(toOrb(mk.Location))
		f.Properties["kind"] = string(mk.Kind)
		f.Properties["tooltip"] = mk.Tooltip
		f.Properties["color"] = mk.Color
		f.Properties["fill_color"] = mk.FillColor
		f.Properties["radius"] = mk.Radius
		fc.Append(f)
	}
	for i, l := range m.Lines {
		ls := make(orb.LineString, 0, len(l.Locations))
		for _, p := range l.Locations {
			ls = append(ls, toOrb(p))
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "route"
		f.Properties["seq"] = i
		f.Properties["color"] = l.Color
		f.Properties["weight"] = l.Weight
		fc.Append(f)
	}
	if b, ok := m.Bounds(); ok {
		fc.BBox = geojson.BBox{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
	}
	fc.ExtraMembers = geojson.Properties{
		"tiles":  m.Tiles,
		"center": m.Center,
		"zoom":   m.Zoom,
	}
	return fc
}

// ExportGeoJSON encodes FeatureCollection.
func (m *Map) ExportGeoJSON() ([]byte, error) {
	data, err := m.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// GeoJSON positions are [lon, lat].
func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
