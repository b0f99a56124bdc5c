package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrRejected           = errors.New("account rejected")
	ErrBadState           = errors.New("invalid state")
)

const minPasswordLen = 8

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

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type ParamedicInput struct {
	MedicalLicense  string
	Specialty       string
	Institution     string
	YearsExperience int
	LicenseExpiry   time.Time
}

// RegisterPatient crea un usuario con rol patient, activo de inmediato.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterInput) (User, error) {
	return s.register(ctx, in, RolePatient, StatusActive)
}

// RegisterParamedic crea un usuario paramédico en estado pending:
// solo puede operar cuando un admin lo aprueba.
func (s *Service) RegisterParamedic(ctx context.Context, in RegisterInput, pin ParamedicInput) (User, error) {
	if strings.TrimSpace(pin.MedicalLicense) == "" {
		return User{}, ErrInvalidInput
	}
	if pin.LicenseExpiry.IsZero() || pin.YearsExperience < 0 {
		return User{}, ErrInvalidInput
	}

	u, err := s.register(ctx, in, RoleParamedic, StatusPending)
	if err != nil {
		return User{}, err
	}

	p := Paramedic{
		UserID:          u.ID,
		MedicalLicense:  strings.TrimSpace(pin.MedicalLicense),
		Specialty:       strings.TrimSpace(pin.Specialty),
		Institution:     strings.TrimSpace(pin.Institution),
		YearsExperience: pin.YearsExperience,
		LicenseExpiry:   pin.LicenseExpiry,
	}
	if err := s.repo.CreateParamedic(ctx, p); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) register(ctx context.Context, in RegisterInput, role Role, status Status) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return User{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login valida credenciales. Un paramédico pending/rejected no puede entrar.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	switch u.Status {
	case StatusActive:
		return u, nil
	case StatusPending:
		return User{}, ErrPendingApproval
	default:
		return User{}, ErrRejected
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) GetParamedic(ctx context.Context, userID string) (Paramedic, error) {
	p, err := s.repo.GetParamedic(ctx, userID)
	if err != nil {
		return Paramedic{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPendingParamedics(ctx context.Context) ([]User, error) {
	return s.repo.ListByRoleAndStatus(ctx, RoleParamedic, StatusPending)
}

// ApproveParamedic activa un paramédico pendiente. Idempotente si ya está activo.
func (s *Service) ApproveParamedic(ctx context.Context, userID string) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return User{}, ErrNotFound
	}
	if u.Role != RoleParamedic {
		return User{}, ErrBadState
	}
	if u.Status == StatusActive {
		return u, nil
	}
	if u.Status != StatusPending {
		return User{}, ErrBadState
	}

	now := s.now()
	u.Status = StatusActive
	u.ApprovedAt = &now
	u.UpdatedAt = now

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// RejectParamedic marca la solicitud como rechazada. Idempotente.
func (s *Service) RejectParamedic(ctx context.Context, userID string) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return User{}, ErrNotFound
	}
	if u.Role != RoleParamedic {
		return User{}, ErrBadState
	}
	if u.Status == StatusRejected {
		return u, nil
	}
	if u.Status != StatusPending {
		return User{}, ErrBadState
	}

	now := s.now()
	u.Status = StatusRejected
	u.UpdatedAt = now

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
