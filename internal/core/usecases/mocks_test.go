package usecases_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	mu      sync.Mutex
	calls   []string
	places  map[string]domain.GeoPoint
	errFor  map[string]error
	geocode func(ctx context.Context, query string) (domain.GeoPoint, error)
}

func newMockGeocoder() *mockGeocoder {
	return &mockGeocoder{
		places: map[string]domain.GeoPoint{
			"paris":    {Lat: 48.8566, Lon: 2.3522},
			"new york": {Lat: 40.7128, Lon: -74.0060},
			"tokyo":    {Lat: 35.6762, Lon: 139.6503},
			"sydney":   {Lat: -33.8688, Lon: 151.2093},
		},
		errFor: map[string]error{},
	}
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) (domain.GeoPoint, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	if m.geocode != nil {
		return m.geocode(ctx, query)
	}
	key := strings.ToLower(strings.TrimSpace(query))
	if err, ok := m.errFor[key]; ok {
		return domain.GeoPoint{}, err
	}
	if pt, ok := m.places[key]; ok {
		return pt, nil
	}
	return domain.GeoPoint{}, domain.ErrLocationNotFound
}

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock MapRepository ---

type mockMapRepo struct {
	mu       sync.Mutex
	records  map[string]*domain.MapRecord
	createFn func(ctx context.Context, rec *domain.MapRecord) error

	lastLimit int
}

func newMockMapRepo() *mockMapRepo {
	return &mockMapRepo{records: map[string]*domain.MapRecord{}}
}

func (m *mockMapRepo) Create(ctx context.Context, rec *domain.MapRecord) error {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockMapRepo) GetByID(ctx context.Context, id string) (*domain.MapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	return rec, nil
}

func (m *mockMapRepo) List(ctx context.Context, offset, limit int) ([]domain.MapRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	all := make([]domain.MapRecord, 0, len(m.records))
	for _, r := range m.records {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []domain.MapRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// --- In-memory ArtifactStore ---

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	s.types[key] = contentType
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

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.MapRendered
	err    error
}

func (p *mockPublisher) PublishMapRendered(ctx context.Context, evt *domain.MapRendered) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *evt)
	return nil
}
