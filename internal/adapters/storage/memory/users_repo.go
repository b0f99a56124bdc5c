// Package memory implementa los repositorios en mapas protegidos por mutex.
// Respaldo para desarrollo local y tests e2e; el adapter real es postgres.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jsricop/vitalgo/internal/domain/users"
)

var (
	ErrNotFound = errors.New("not found")
)

type usersRepo struct {
	mu         sync.RWMutex
	byID       map[string]users.User
	byEmail    map[string]string
	paramedics map[string]users.Paramedic
}

func NewUsersRepo() users.Repository {
	return &usersRepo{
		byID:       make(map[string]users.User),
		byEmail:    make(map[string]string),
		paramedics: make(map[string]users.Paramedic),
	}
}

func (r *usersRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	r.byID[u.ID] = u
	r.byEmail[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (r *usersRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *usersRepo) ListByRoleAndStatus(ctx context.Context, role users.Role, status users.Status) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range r.byID {
		if u.Role == role && u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *usersRepo) CreateParamedic(ctx context.Context, p users.Paramedic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.UserID == "" {
		return errors.New("paramedic user id required")
	}
	r.paramedics[p.UserID] = p
	return nil
}

func (r *usersRepo) GetParamedic(ctx context.Context, userID string) (users.Paramedic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.paramedics[userID]
	if !ok {
		return users.Paramedic{}, ErrNotFound
	}
	return p, nil
}
