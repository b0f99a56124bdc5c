package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jsricop/vitalgo/internal/domain/patients"
)

type patientsRepo struct {
	mu       sync.RWMutex
	byID     map[string]patients.Patient
	byUserID map[string]string
}

func NewPatientsRepo() patients.Repository {
	return &patientsRepo{
		byID:     make(map[string]patients.Patient),
		byUserID: make(map[string]string),
	}
}

func (r *patientsRepo) Create(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("patient already exists")
	}
	if _, exists := r.byUserID[p.UserID]; exists {
		return errors.New("user already has a patient profile")
	}
	r.byID[p.ID] = p
	r.byUserID[p.UserID] = p.ID
	return nil
}

func (r *patientsRepo) Update(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *patientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return patients.Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *patientsRepo) GetByUserID(ctx context.Context, userID string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUserID[userID]
	if !ok {
		return patients.Patient{}, ErrNotFound
	}
	return r.byID[id], nil
}
