package plotter

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownTileStyle is returned by exports when the map carries a tile
// style that is neither registered nor a URL template.
var ErrUnknownTileStyle = errors.New("unknown tile style")

// DefaultTileStyle is used when the caller does not pick one.
const DefaultTileStyle = "OpenStreetMap"

const osmAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`

// TileLayer describes the base layer of a map.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
	Subdomains  string `json:"subdomains,omitempty"`
	MaxZoom     int    `json:"max_zoom,omitempty"`
}

var tileStyles = map[string]TileLayer{
	"openstreetmap": {
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: osmAttribution,
		MaxZoom:     19,
	},
	"cartodbpositron": {
		Name:        "Cartodb Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
	"cartodbdarkmatter": {
		Name:        "Cartodb dark_matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
}

func tileKey(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(name))
}

// ResolveTile maps a style name onto a tile layer. Names are matched
// ignoring case, spaces and underscores. Unknown names are passed through
// verbatim: a name that looks like an XYZ template ({z}/{x}/{y}) becomes its
// own URL, anything else is kept with an empty URL and fails at export.
// The boolean reports whether the name was recognised.
func ResolveTile(name string) (TileLayer, bool) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTileStyle
	}
	if layer, ok := tileStyles[tileKey(name)]; ok {
		return layer, true
	}
	if IsTemplateURL(name) {
		return TileLayer{Name: name, URL: name}, false
	}
	return TileLayer{Name: name}, false
}

// IsTemplateURL reports whether s is an XYZ tile URL template.
func IsTemplateURL(s string) bool {
	return strings.Contains(s, "{z}") && strings.Contains(s, "{x}") && strings.Contains(s, "{y}")
}

// TileStyles lists the recognised styles, sorted by name.
func TileStyles() []TileLayer {
	out := make([]TileLayer, 0, len(tileStyles))
	for _, l := range tileStyles {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
