// Package nominatim geocodes place names against an OSM Nominatim server.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// Client implements ports.Geocoder.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Nominatim client. Nominatim's usage policy requires an
// identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the best match for query. No match yields
// domain.ErrLocationNotFound; transport and server failures are wrapped
// in domain.ErrGeocoderFailed.
func (c *Client) Geocode(ctx context.Context, query string) (domain.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.GeoPoint{}, ctx.Err()
		}
		return domain.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrGeocoderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeoPoint{}, fmt.Errorf("%w: HTTP %d: %s",
			domain.ErrGeocoderFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []place
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: decode response: %v", domain.ErrGeocoderFailed, err)
	}
	if len(results) == 0 {
		return domain.GeoPoint{}, fmt.Errorf("%q: %w", query, domain.ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%q: lat %q: %w", query, results[0].Lat, domain.ErrMalformedCoordinate)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%q: lon %q: %w", query, results[0].Lon, domain.ErrMalformedCoordinate)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
