package cache

import (
	"context"
	"sync"
	"time"
)

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

type entry struct {
	resp      *StoredResponse // nil = reservada, en curso
	expiresAt time.Time
}

// InMemoryIdempotencyStore para una sola instancia (REDIS_ADDR vacío) y tests.
// Las entradas vencidas se descartan al leerlas.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: map[string]entry{}, now: time.Now}
}

// lookup devuelve la entrada vigente; debe llamarse con el lock tomado.
func (s *InMemoryIdempotencyStore) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.entries[key] = entry{expiresAt: s.now().Add(ttl)}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	if e.resp == nil {
		return nil, ErrInProgress
	}
	r := *e.resp
	r.Body = append([]byte(nil), e.resp.Body...)
	return &r, nil
}

func (s *InMemoryIdempotencyStore) Save(_ context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.Body = append([]byte(nil), resp.Body...)
	s.entries[key] = entry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
