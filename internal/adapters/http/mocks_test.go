package http_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// ---- Geocoder ----

type stubGeocoder struct {
	places map[string]domain.GeoPoint
	err    error
}

func newStubGeocoder() *stubGeocoder {
	return &stubGeocoder{places: map[string]domain.GeoPoint{
		"paris":    {Lat: 48.8566, Lon: 2.3522},
		"new york": {Lat: 40.7128, Lon: -74.0060},
		"tokyo":    {Lat: 35.6762, Lon: 139.6503},
		"sydney":   {Lat: -33.8688, Lon: 151.2093},
	}}
}

func (g *stubGeocoder) Geocode(ctx context.Context, query string) (domain.GeoPoint, error) {
	if g.err != nil {
		return domain.GeoPoint{}, g.err
	}
	if pt, ok := g.places[strings.ToLower(strings.TrimSpace(query))]; ok {
		return pt, nil
	}
	return domain.GeoPoint{}, domain.ErrLocationNotFound
}

// ---- Map repository ----

type memMapRepo struct {
	mu   sync.Mutex
	recs map[string]*domain.MapRecord
}

func newMemMapRepo() *memMapRepo {
	return &memMapRepo{recs: map[string]*domain.MapRecord{}}
}

func (r *memMapRepo) Create(ctx context.Context, rec *domain.MapRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *memMapRepo) GetByID(ctx context.Context, id string) (*domain.MapRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memMapRepo) List(ctx context.Context, offset, limit int) ([]domain.MapRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.MapRecord, 0, len(r.recs))
	for _, rec := range r.recs {
		cp := *rec
		cp.Routes = nil
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

// ---- Artifact store ----

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	return b, nil
}

// ---- Scheduler ----

type stubScheduler struct {
	mu   sync.Mutex
	jobs []domain.PlotJob
	err  error
}

func (s *stubScheduler) SchedulePlot(ctx context.Context, job domain.PlotJob) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return "run-" + job.MapID, nil
}

// ---- Readiness ----

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	pingOK   = pingFunc(func(context.Context) error { return nil })
	pingFail = pingFunc(func(context.Context) error { return errors.New("unreachable") })
)
