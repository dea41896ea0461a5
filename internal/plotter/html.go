package plotter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"regexp"
)

const leafletVersion = "1.9.4"

// The map data is embedded as a JSON island and drawn by a small Leaflet
// script, so the document carries every marker, tooltip, line and color
// verbatim and can be read back with ParseHTML.
var pageTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Route map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@{{.Leaflet}}/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@{{.Leaflet}}/dist/leaflet.js"></script>
<style>html, body, #map { width: 100%; height: 100%; margin: 0; padding: 0; }</style>
</head>
<body>
<div id="map"></div>
<script type="application/json" id="map-data">{{.Map}}</script>
<script>
(function () {
  var data = JSON.parse(document.getElementById("map-data").textContent);
  var map = L.map("map").setView([data.center.lat, data.center.lon], data.zoom);
  var tileOpts = { attribution: data.tiles.attribution || "" };
  if (data.tiles.subdomains) { tileOpts.subdomains = data.tiles.subdomains; }
  if (data.tiles.max_zoom) { tileOpts.maxZoom = data.tiles.max_zoom; }
  L.tileLayer(data.tiles.url, tileOpts).addTo(map);
  data.markers.forEach(function (m) {
    L.circleMarker([m.location.lat, m.location.lon], {
      radius: m.radius, color: m.color, fill: m.fill, fillColor: m.fill_color
    }).bindTooltip(m.tooltip).addTo(map);
  });
  data.lines.forEach(function (l) {
    L.polyline(l.locations.map(function (p) { return [p.lat, p.lon]; }), {
      color: l.color, weight: l.weight
    }).addTo(map);
  });
})();
</script>
</body>
</html>
`))

var mapDataRe = regexp.MustCompile(`(?s)<script type="application/json" id="map-data">(.*?)</script>`)

// Export writes the map as a self-contained HTML document.
func (m *Map) Export(w io.Writer) error {
	if m.Tiles.URL == "" {
		return fmt.Errorf("%w: %q", ErrUnknownTileStyle, m.Tiles.Name)
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Leaflet string
		Map     *Map
	}{leafletVersion, m})
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// ExportHTML is Export into a byte slice.
func (m *Map) ExportHTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Export(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseHTML reads back a map written by Export.
func ParseHTML(doc []byte) (*Map, error) {
	match := mapDataRe.FindSubmatch(doc)
	if match == nil {
		return nil, errors.New("map data not found in document")
	}
	var m Map
	if err := json.Unmarshal(match[1], &m); err != nil {
		return nil, fmt.Errorf("decode map data: %w", err)
	}
	return &m, nil
}
