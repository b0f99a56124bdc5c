package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jsricop/vitalgo/internal/domain/emergency"
)

type grantsRepo struct {
	mu      sync.RWMutex
	byToken map[string]emergency.Grant
}

func NewGrantsRepo() emergency.GrantRepository {
	return &grantsRepo{
		byToken: make(map[string]emergency.Grant),
	}
}

func (r *grantsRepo) Create(ctx context.Context, g emergency.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.Token == "" {
		return errors.New("grant token required")
	}
	if _, exists := r.byToken[g.Token]; exists {
		return errors.New("grant token collision")
	}
	r.byToken[g.Token] = g
	return nil
}

func (r *grantsRepo) GetByToken(ctx context.Context, token string) (emergency.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byToken[token]
	if !ok {
		return emergency.Grant{}, emergency.ErrNotFound
	}
	return g, nil
}

func (r *grantsRepo) ListByPatient(ctx context.Context, patientID string) ([]emergency.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]emergency.Grant, 0)
	for _, g := range r.byToken {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *grantsRepo) Deactivate(ctx context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byToken[token]
	if !ok {
		return emergency.ErrNotFound
	}
	if !g.Active {
		return nil
	}
	g.Active = false
	g.RevokedAt = &at
	r.byToken[token] = g
	return nil
}

// RecordAccess incrementa el contador bajo el lock del store, nunca con un
// read-modify-write del caller.
func (r *grantsRepo) RecordAccess(ctx context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byToken[token]
	if !ok {
		return emergency.ErrNotFound
	}
	g.AccessCount++
	g.LastAccessedAt = &at
	r.byToken[token] = g
	return nil
}

type auditRepo struct {
	mu      sync.RWMutex
	entries []emergency.AccessLogEntry
}

func NewAuditRepo() emergency.AuditLog {
	return &auditRepo{entries: make([]emergency.AccessLogEntry, 0)}
}

// Append solo agrega al final; no existe camino de update ni delete.
func (r *auditRepo) Append(ctx context.Context, e emergency.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("audit entry id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) ListByToken(ctx context.Context, token string) ([]emergency.AccessLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]emergency.AccessLogEntry, 0)
	for _, e := range r.entries {
		if e.GrantToken == token {
			out = append(out, e)
		}
	}
	return out, nil
}
