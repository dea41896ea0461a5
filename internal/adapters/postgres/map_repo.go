package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// MapRepo implements ports.MapRepository with pgx.
type MapRepo struct {
	db *DB
}

// NewMapRepo creates a new MapRepo.
func NewMapRepo(db *DB) *MapRepo {
	return &MapRepo{db: db}
}

// Create stores a map and its routes in one transaction.
func (r *MapRepo) Create(ctx context.Context, rec *domain.MapRecord) error {
	dropped, err := json.Marshal(rec.Dropped)
	if err != nil {
		return fmt.Errorf("encode dropped rows: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO maps (id, tile_style, center_lat, center_lon, zoom,
		                  route_count, marker_count, line_count, dropped, artifact_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.TileStyle, rec.Center.Lat, rec.Center.Lon, rec.Zoom,
		rec.RouteCount, rec.MarkerCount, rec.LineCount, dropped, rec.ArtifactKey, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert map: %w", err)
	}

	if len(rec.Routes) > 0 {
		batch := &pgx.Batch{}
		for _, rt := range rec.Routes {
			batch.Queue(`
				INSERT INTO map_routes (map_id, seq, departure_city, arrival_city,
				                        departure_lat, departure_lon, arrival_lat, arrival_lon,
				                        line_color, curve_wkt, polyline, distance_km)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, rec.ID, rt.Seq, rt.DepartureCity, rt.ArrivalCity,
				rt.Departure.Lat, rt.Departure.Lon, rt.Arrival.Lat, rt.Arrival.Lon,
				rt.LineColor, CurveToWKT(rt.Curve), rt.Polyline, rt.DistanceKm)
		}
		br := tx.SendBatch(ctx, batch)
		for range rec.Routes {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert map routes: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert map routes: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const mapColumns = `id, tile_style, center_lat, center_lon, zoom,
	route_count, marker_count, line_count, dropped, artifact_key, created_at`

func scanMap(row pgx.Row) (*domain.MapRecord, error) {
	var (
		rec     domain.MapRecord
		dropped []byte
	)
	err := row.Scan(&rec.ID, &rec.TileStyle, &rec.Center.Lat, &rec.Center.Lon, &rec.Zoom,
		&rec.RouteCount, &rec.MarkerCount, &rec.LineCount, &dropped, &rec.ArtifactKey, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 {
		if err := json.Unmarshal(dropped, &rec.Dropped); err != nil {
			return nil, fmt.Errorf("decode dropped rows: %w", err)
		}
	}
	return &rec, nil
}

// GetByID returns a map with its routes.
func (r *MapRepo) GetByID(ctx context.Context, id string) (*domain.MapRecord, error) {
	rec, err := scanMap(r.db.Pool.QueryRow(ctx,
		`SELECT `+mapColumns+` FROM maps WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMapNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get map %s: %w", id, err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT seq, departure_city, arrival_city,
		       departure_lat, departure_lon, arrival_lat, arrival_lon,
		       line_color, curve_wkt, polyline, distance_km
		FROM map_routes WHERE map_id = $1 ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get map routes %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rt    domain.MapRoute
			curve string
		)
		if err := rows.Scan(&rt.Seq, &rt.DepartureCity, &rt.ArrivalCity,
			&rt.Departure.Lat, &rt.Departure.Lon, &rt.Arrival.Lat, &rt.Arrival.Lon,
			&rt.LineColor, &curve, &rt.Polyline, &rt.DistanceKm); err != nil {
			return nil, err
		}
		if rt.Curve, err = CurveFromWKT(curve); err != nil {
			return nil, fmt.Errorf("map %s route %d: %w", id, rt.Seq, err)
		}
		rec.Routes = append(rec.Routes, rt)
	}
	return rec, rows.Err()
}

// List returns maps newest first, without routes, and the total count.
func (r *MapRepo) List(ctx context.Context, offset, limit int) ([]domain.MapRecord, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM maps`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count maps: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+mapColumns+` FROM maps ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	out := []domain.MapRecord{}
	for rows.Next() {
		rec, err := scanMap(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

// CurveToWKT encodes a curve as a WKT LINESTRING in lon/lat order.
func CurveToWKT(c domain.CurvePath) string {
	ls := make(orb.LineString, len(c))
	for i, p := range c {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return wkt.MarshalString(ls)
}

// CurveFromWKT is the inverse of CurveToWKT.
func CurveFromWKT(s string) (domain.CurvePath, error) {
	if s == "" {
		return nil, nil
	}
	ls, err := wkt.UnmarshalLineString(s)
	if err != nil {
		return nil, fmt.Errorf("decode curve: %w", err)
	}
	out := make(domain.CurvePath, len(ls))
	for i, p := range ls {
		out[i] = domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
	}
	return out, nil
}
