package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jsricop/vitalgo/internal/domain/eps"
)

type epsRepo struct {
	mu     sync.RWMutex
	byID   map[string]eps.EPS
	byCode map[string]string
}

func NewEPSRepo() eps.Repository {
	return &epsRepo{
		byID:   make(map[string]eps.EPS),
		byCode: make(map[string]string),
	}
}

func (r *epsRepo) Create(ctx context.Context, e eps.EPS) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("eps id required")
	}
	if _, exists := r.byCode[e.Code]; exists {
		return errors.New("eps code already exists")
	}
	r.byID[e.ID] = e
	r.byCode[e.Code] = e.ID
	return nil
}

func (r *epsRepo) Update(ctx context.Context, e eps.EPS) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *epsRepo) GetByID(ctx context.Context, id string) (eps.EPS, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return eps.EPS{}, ErrNotFound
	}
	return e, nil
}

func (r *epsRepo) GetByCode(ctx context.Context, code string) (eps.EPS, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return eps.EPS{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *epsRepo) List(ctx context.Context) ([]eps.EPS, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eps.EPS, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
