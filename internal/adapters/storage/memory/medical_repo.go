package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jsricop/vitalgo/internal/domain/medical"
)

type medicalRepo struct {
	mu        sync.RWMutex
	allergies map[string]medical.Allergy
	illnesses map[string]medical.Illness
	surgeries map[string]medical.Surgery
}

func NewMedicalRepo() medical.Repository {
	return &medicalRepo{
		allergies: make(map[string]medical.Allergy),
		illnesses: make(map[string]medical.Illness),
		surgeries: make(map[string]medical.Surgery),
	}
}

func (r *medicalRepo) CreateAllergy(ctx context.Context, a medical.Allergy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("allergy id required")
	}
	if _, exists := r.allergies[a.ID]; exists {
		return errors.New("allergy already exists")
	}
	r.allergies[a.ID] = a
	return nil
}

func (r *medicalRepo) UpdateAllergy(ctx context.Context, a medical.Allergy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.allergies[a.ID]; !exists {
		return ErrNotFound
	}
	r.allergies[a.ID] = a
	return nil
}

func (r *medicalRepo) GetAllergy(ctx context.Context, id string) (medical.Allergy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.allergies[id]
	if !ok {
		return medical.Allergy{}, ErrNotFound
	}
	return a, nil
}

// ListAllergies honra el contrato del repositorio: solo registros activos.
func (r *medicalRepo) ListAllergies(ctx context.Context, patientID string) ([]medical.Allergy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Allergy, 0)
	for _, a := range r.allergies {
		if a.PatientID == patientID && a.State == medical.StateActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *medicalRepo) CreateIllness(ctx context.Context, i medical.Illness) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i.ID == "" {
		return errors.New("illness id required")
	}
	if _, exists := r.illnesses[i.ID]; exists {
		return errors.New("illness already exists")
	}
	r.illnesses[i.ID] = i
	return nil
}

func (r *medicalRepo) UpdateIllness(ctx context.Context, i medical.Illness) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.illnesses[i.ID]; !exists {
		return ErrNotFound
	}
	r.illnesses[i.ID] = i
	return nil
}

func (r *medicalRepo) GetIllness(ctx context.Context, id string) (medical.Illness, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.illnesses[id]
	if !ok {
		return medical.Illness{}, ErrNotFound
	}
	return i, nil
}

func (r *medicalRepo) ListIllnesses(ctx context.Context, patientID string) ([]medical.Illness, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Illness, 0)
	for _, i := range r.illnesses {
		if i.PatientID == patientID && i.State == medical.StateActive {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *medicalRepo) CreateSurgery(ctx context.Context, s medical.Surgery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("surgery id required")
	}
	if _, exists := r.surgeries[s.ID]; exists {
		return errors.New("surgery already exists")
	}
	r.surgeries[s.ID] = s
	return nil
}

func (r *medicalRepo) UpdateSurgery(ctx context.Context, s medical.Surgery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.surgeries[s.ID]; !exists {
		return ErrNotFound
	}
	r.surgeries[s.ID] = s
	return nil
}

func (r *medicalRepo) GetSurgery(ctx context.Context, id string) (medical.Surgery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surgeries[id]
	if !ok {
		return medical.Surgery{}, ErrNotFound
	}
	return s, nil
}

func (r *medicalRepo) ListSurgeries(ctx context.Context, patientID string) ([]medical.Surgery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medical.Surgery, 0)
	for _, s := range r.surgeries {
		if s.PatientID == patientID && s.State == medical.StateActive {
			out = append(out, s)
		}
	}
	return out, nil
}
