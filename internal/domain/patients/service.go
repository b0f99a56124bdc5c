package patients

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
)

// NameLookup resuelve el nombre completo del usuario dueño del perfil.
// Se declara aquí para no importar el paquete users (evita acoplar módulos).
type NameLookup interface {
	FullName(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo  Repository
	names NameLookup
	now   func() time.Time
}

func NewService(repo Repository, names NameLookup) *Service {
	return &Service{
		repo:  repo,
		names: names,
		now:   time.Now,
	}
}

type CreateInput struct {
	DocumentType   string
	DocumentNumber string
	BirthDate      time.Time
	Gender         string
	BloodType      string
	EPS            string

	EmergencyContactName  string
	EmergencyContactPhone string

	Address string
	City    string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Patient, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.DocumentNumber) == "" {
		return Patient{}, ErrInvalidInput
	}
	if !validDocumentType(in.DocumentType) || !validGender(in.Gender) || !validBloodType(in.BloodType) {
		return Patient{}, ErrInvalidInput
	}
	now := s.now()
	if in.BirthDate.IsZero() || in.BirthDate.After(now) {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.EmergencyContactName) == "" || strings.TrimSpace(in.EmergencyContactPhone) == "" {
		return Patient{}, ErrInvalidInput
	}

	p := Patient{
		ID:                    uuid.NewString(),
		UserID:                userID,
		DocumentType:          DocumentType(strings.ToUpper(strings.TrimSpace(in.DocumentType))),
		DocumentNumber:        strings.TrimSpace(in.DocumentNumber),
		BirthDate:             in.BirthDate,
		Gender:                Gender(strings.ToUpper(strings.TrimSpace(in.Gender))),
		BloodType:             BloodType(strings.ToUpper(strings.TrimSpace(in.BloodType))),
		EPS:                   strings.TrimSpace(in.EPS),
		EmergencyContactName:  strings.TrimSpace(in.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(in.EmergencyContactPhone),
		Address:               strings.TrimSpace(in.Address),
		City:                  strings.TrimSpace(in.City),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Patient, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Patient{}, ErrInvalidInput
	}
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

// ProfilePatch: campos opcionales de actualización de perfil.
// Un puntero nil significa "no tocar".
type ProfilePatch struct {
	BloodType             *string
	EPS                   *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Address               *string
	City                  *string
}

func (s *Service) UpdateProfile(ctx context.Context, patientID string, patch ProfilePatch) (Patient, error) {
	p, err := s.GetByID(ctx, patientID)
	if err != nil {
		return Patient{}, err
	}

	if patch.BloodType != nil {
		bt := strings.ToUpper(strings.TrimSpace(*patch.BloodType))
		if !validBloodType(bt) {
			return Patient{}, ErrInvalidInput
		}
		p.BloodType = BloodType(bt)
	}
	applyString(&p.EPS, patch.EPS)
	applyString(&p.EmergencyContactName, patch.EmergencyContactName)
	applyString(&p.EmergencyContactPhone, patch.EmergencyContactPhone)
	applyString(&p.Address, patch.Address)
	applyString(&p.City, patch.City)

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func validDocumentType(raw string) bool {
	switch DocumentType(strings.ToUpper(strings.TrimSpace(raw))) {
	case DocumentCC, DocumentTI, DocumentCE, DocumentPA:
		return true
	}
	return false
}

func validGender(raw string) bool {
	switch Gender(strings.ToUpper(strings.TrimSpace(raw))) {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func validBloodType(raw string) bool {
	switch BloodType(strings.ToUpper(strings.TrimSpace(raw))) {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}
