package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"imgbind/internal/fp"
)

// InMemoryFetchRepo keeps history in process memory. It is the default
// when no database is configured, and the repo used by tests.
type InMemoryFetchRepo struct {
	mu      sync.RWMutex
	records Records
}

func NewInMemoryFetchRepo() *InMemoryFetchRepo {
	return &InMemoryFetchRepo{records: make(Records, 0)}
}

var _ FetchRepo = (*InMemoryFetchRepo)(nil)

func (r *InMemoryFetchRepo) List(ctx context.Context) (Records, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records.Clone(), nil
}

func (r *InMemoryFetchRepo) Get(ctx context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, err := r.findByID(id)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (r *InMemoryFetchRepo) Add(ctx context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.Fingerprint = fp.Fingerprint(rec.URL)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.records = append(r.records, rec)
	return rec.Clone(), nil
}

func (r *InMemoryFetchRepo) Update(ctx context.Context, id string, mutate func(*Record) error) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.findByID(id)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(rec); err != nil {
			return nil, err
		}
	}
	return rec.Clone(), nil
}

func (r *InMemoryFetchRepo) findByID(id string) (*Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}
