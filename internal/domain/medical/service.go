package medical

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// ---- alergias ----

type AllergyInput struct {
	Allergen      string
	Severity      string
	Symptoms      string
	Treatment     string
	DiagnosedDate *time.Time
	Notes         string
}

func (s *Service) AddAllergy(ctx context.Context, patientID string, in AllergyInput) (Allergy, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Allergy{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Allergen) == "" || strings.TrimSpace(in.Symptoms) == "" {
		return Allergy{}, ErrInvalidInput
	}
	sev := Severity(strings.ToUpper(strings.TrimSpace(in.Severity)))
	if sev.Rank() == 0 {
		return Allergy{}, ErrInvalidInput
	}
	now := s.now()
	if in.DiagnosedDate != nil && in.DiagnosedDate.After(now) {
		return Allergy{}, ErrInvalidInput
	}

	a := Allergy{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		Allergen:      strings.TrimSpace(in.Allergen),
		Severity:      sev,
		Symptoms:      strings.TrimSpace(in.Symptoms),
		Treatment:     strings.TrimSpace(in.Treatment),
		DiagnosedDate: in.DiagnosedDate,
		Notes:         strings.TrimSpace(in.Notes),
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateAllergy(ctx, a); err != nil {
		return Allergy{}, err
	}
	return a, nil
}

func (s *Service) UpdateAllergy(ctx context.Context, patientID, id string, patch AllergyPatch) (Allergy, error) {
	a, err := s.repo.GetAllergy(ctx, strings.TrimSpace(id))
	if err != nil || a.State != StateActive {
		return Allergy{}, ErrNotFound
	}
	if a.PatientID != patientID {
		return Allergy{}, ErrForbidden
	}
	if err := patch.apply(&a); err != nil {
		return Allergy{}, err
	}
	a.UpdatedAt = s.now()
	if err := s.repo.UpdateAllergy(ctx, a); err != nil {
		return Allergy{}, err
	}
	return a, nil
}

// DeleteAllergy es borrado lógico: el registro queda con tag deleted.
func (s *Service) DeleteAllergy(ctx context.Context, patientID, id string) error {
	a, err := s.repo.GetAllergy(ctx, strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	if a.PatientID != patientID {
		return ErrForbidden
	}
	if a.State == StateDeleted {
		return nil
	}
	now := s.now()
	a.State = StateDeleted
	a.DeletedAt = &now
	a.UpdatedAt = now
	return s.repo.UpdateAllergy(ctx, a)
}

func (s *Service) ListAllergies(ctx context.Context, patientID string) ([]Allergy, error) {
	out, err := s.repo.ListAllergies(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	sortAllergies(out)
	return out, nil
}

// ---- enfermedades ----

type IllnessInput struct {
	Name          string
	Status        string
	DiagnosisDate *time.Time
	Treatment     string
	Notes         string
}

func (s *Service) AddIllness(ctx context.Context, patientID string, in IllnessInput) (Illness, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" || strings.TrimSpace(in.Name) == "" {
		return Illness{}, ErrInvalidInput
	}
	status := IllnessStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status == "" {
		status = IllnessActive
	}
	if !validIllnessStatus(status) {
		return Illness{}, ErrInvalidInput
	}

	now := s.now()
	i := Illness{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		Name:          strings.TrimSpace(in.Name),
		Status:        status,
		DiagnosisDate: in.DiagnosisDate,
		Treatment:     strings.TrimSpace(in.Treatment),
		Notes:         strings.TrimSpace(in.Notes),
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateIllness(ctx, i); err != nil {
		return Illness{}, err
	}
	return i, nil
}

func (s *Service) UpdateIllness(ctx context.Context, patientID, id string, patch IllnessPatch) (Illness, error) {
	i, err := s.repo.GetIllness(ctx, strings.TrimSpace(id))
	if err != nil || i.State != StateActive {
		return Illness{}, ErrNotFound
	}
	if i.PatientID != patientID {
		return Illness{}, ErrForbidden
	}
	if err := patch.apply(&i); err != nil {
		return Illness{}, err
	}
	i.UpdatedAt = s.now()
	if err := s.repo.UpdateIllness(ctx, i); err != nil {
		return Illness{}, err
	}
	return i, nil
}

func (s *Service) UpdateIllnessStatus(ctx context.Context, patientID, id, status string) (Illness, error) {
	st := IllnessStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !validIllnessStatus(st) {
		return Illness{}, ErrInvalidInput
	}
	i, err := s.repo.GetIllness(ctx, strings.TrimSpace(id))
	if err != nil || i.State != StateActive {
		return Illness{}, ErrNotFound
	}
	if i.PatientID != patientID {
		return Illness{}, ErrForbidden
	}
	i.Status = st
	i.UpdatedAt = s.now()
	if err := s.repo.UpdateIllness(ctx, i); err != nil {
		return Illness{}, err
	}
	return i, nil
}

func (s *Service) DeleteIllness(ctx context.Context, patientID, id string) error {
	i, err := s.repo.GetIllness(ctx, strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	if i.PatientID != patientID {
		return ErrForbidden
	}
	if i.State == StateDeleted {
		return nil
	}
	now := s.now()
	i.State = StateDeleted
	i.DeletedAt = &now
	i.UpdatedAt = now
	return s.repo.UpdateIllness(ctx, i)
}

func (s *Service) ListIllnesses(ctx context.Context, patientID string) ([]Illness, error) {
	out, err := s.repo.ListIllnesses(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	sortIllnesses(out)
	return out, nil
}

// ---- cirugías ----

type SurgeryInput struct {
	ProcedureName string
	Date          time.Time
	Surgeon       string
	Hospital      string
	Complications string
	Notes         string
}

func (s *Service) AddSurgery(ctx context.Context, patientID string, in SurgeryInput) (Surgery, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" || strings.TrimSpace(in.ProcedureName) == "" {
		return Surgery{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Surgery{}, ErrInvalidInput
	}

	now := s.now()
	sg := Surgery{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		ProcedureName: strings.TrimSpace(in.ProcedureName),
		Date:          in.Date,
		Surgeon:       strings.TrimSpace(in.Surgeon),
		Hospital:      strings.TrimSpace(in.Hospital),
		Complications: strings.TrimSpace(in.Complications),
		Notes:         strings.TrimSpace(in.Notes),
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateSurgery(ctx, sg); err != nil {
		return Surgery{}, err
	}
	return sg, nil
}

func (s *Service) UpdateSurgery(ctx context.Context, patientID, id string, patch SurgeryPatch) (Surgery, error) {
	sg, err := s.repo.GetSurgery(ctx, strings.TrimSpace(id))
	if err != nil || sg.State != StateActive {
		return Surgery{}, ErrNotFound
	}
	if sg.PatientID != patientID {
		return Surgery{}, ErrForbidden
	}
	if err := patch.apply(&sg); err != nil {
		return Surgery{}, err
	}
	sg.UpdatedAt = s.now()
	if err := s.repo.UpdateSurgery(ctx, sg); err != nil {
		return Surgery{}, err
	}
	return sg, nil
}

func (s *Service) DeleteSurgery(ctx context.Context, patientID, id string) error {
	sg, err := s.repo.GetSurgery(ctx, strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	if sg.PatientID != patientID {
		return ErrForbidden
	}
	if sg.State == StateDeleted {
		return nil
	}
	now := s.now()
	sg.State = StateDeleted
	sg.DeletedAt = &now
	sg.UpdatedAt = now
	return s.repo.UpdateSurgery(ctx, sg)
}

func (s *Service) ListSurgeries(ctx context.Context, patientID string) ([]Surgery, error) {
	out, err := s.repo.ListSurgeries(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	sortSurgeries(out)
	return out, nil
}

func validIllnessStatus(st IllnessStatus) bool {
	switch st {
	case IllnessActive, IllnessResolved, IllnessChronic:
		return true
	}
	return false
}
