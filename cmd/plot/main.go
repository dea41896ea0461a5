// Command plot renders a route map from a local file without the API.
//
//	plot -in routes.json -out map.html -geojson map.geojson -tile cartodbpositron
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/Seikonolff/map-to-seventy/internal/adapters/blobstore"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/nominatim"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/valkey"
	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/config"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
)

func main() {
	var (
		in      = flag.String("in", "", "input JSON: an array of rows, or {rows|routes, tile_style}")
		out     = flag.String("out", "map.html", "HTML output path")
		geoJSON = flag.String("geojson", "", "optional GeoJSON output path")
		tile    = flag.String("tile", "", "tile style name or {z}/{x}/{y} URL template")
		points  = flag.Int("points", 0, "interpolation points per curve (default from config)")
		bucket  = flag.String("bucket", "", "optional blob URL to upload maps/<id>.html to")
		noCache = flag.Bool("no-cache", false, "skip the Valkey geocode cache")
	)
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load("routemap-plot")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	input, err := readInput(f)
	f.Close()
	if err != nil {
		log.Fatalf("%s: %v", *in, err)
	}

	tileStyle := cfg.Plotter.DefaultTile
	if input.TileStyle != "" {
		tileStyle = input.TileStyle
	}
	if *tile != "" {
		tileStyle = *tile
	}
	if _, ok := plotter.ResolveTile(tileStyle); !ok && !plotter.IsTemplateURL(tileStyle) {
		log.Fatalf("unknown tile style %q", tileStyle)
	}

	pointCount := cfg.Plotter.Points
	if *points != 0 {
		pointCount = *points
	}

	routes := input.Routes
	if len(routes) == 0 {
		var cache ports.CacheService
		if !*noCache {
			if vc, err := valkey.New(cfg.Valkey.Addr, "routemap:"); err != nil {
				slog.Warn("valkey unavailable, geocoding uncached", "error", err)
			} else {
				defer vc.Close()
				cache = vc
			}
		}
		geo := usecases.NewGeocodeService(
			nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout),
			cache, cfg.Geocoder.CacheTTL,
		)

		start := time.Now()
		var dropped []domain.DroppedRow
		routes, dropped, err = geo.ResolveRoutes(ctx, input.Rows)
		if err != nil {
			log.Fatalf("geocode: %v", err)
		}
		for _, d := range dropped {
			slog.Warn("row dropped", "row", d.Index+1, "reason", d.Reason,
				"departure", d.Row.DepartureCity, "arrival", d.Row.ArrivalCity)
		}
		slog.Info("geocoded", "routes", len(routes), "dropped", len(dropped), "took", time.Since(start).Round(time.Millisecond))
	}

	renderer := plotter.NewRenderer(plotter.Options{PointCount: pointCount, Workers: cfg.Plotter.Workers})
	m, err := renderer.Render(ctx, routes, tileStyle)
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if m == nil {
		log.Fatal(domain.ErrNoRenderableRoutes)
	}

	doc, err := m.ExportHTML()
	if err != nil {
		log.Fatalf("export html: %v", err)
	}
	if err := writeFile(*out, doc); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("wrote %s (%d routes)\n", *out, len(m.Lines))

	if *geoJSON != "" {
		data, err := m.ExportGeoJSON()
		if err != nil {
			log.Fatalf("export geojson: %v", err)
		}
		if err := writeFile(*geoJSON, data); err != nil {
			log.Fatalf("write %s: %v", *geoJSON, err)
		}
		fmt.Printf("wrote %s\n", *geoJSON)
	}

	if *bucket != "" {
		store, err := blobstore.Open(ctx, *bucket)
		if err != nil {
			log.Fatalf("bucket: %v", err)
		}
		defer store.Close()
		key := usecases.ArtifactKey(usecases.NewMapID())
		if err := store.Put(ctx, key, doc, "text/html; charset=utf-8"); err != nil {
			log.Fatalf("upload: %v", err)
		}
		fmt.Printf("uploaded %s/%s\n", *bucket, key)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
