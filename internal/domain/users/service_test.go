package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID       map[string]User
	paramedics map[string]Paramedic
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:       map[string]User{},
		paramedics: map[string]Paramedic{},
	}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return User{}, errRepoNotFound
}

func (r *testRepo) ListByRoleAndStatus(ctx context.Context, role Role, status Status) ([]User, error) {
	out := make([]User, 0)
	for _, u := range r.byID {
		if u.Role == role && u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *testRepo) CreateParamedic(ctx context.Context, p Paramedic) error {
	r.paramedics[p.UserID] = p
	return nil
}

func (r *testRepo) GetParamedic(ctx context.Context, userID string) (Paramedic, error) {
	p, ok := r.paramedics[userID]
	if !ok {
		return Paramedic{}, errRepoNotFound
	}
	return p, nil
}

// -------------------------
// Tests
// -------------------------

func patientInput() RegisterInput {
	return RegisterInput{
		Email:     "Ana.Gomez@Example.com",
		Password:  "super-secreta-1",
		FirstName: "Ana",
		LastName:  "Gómez",
		Phone:     "3001234567",
	}
}

func paramedicInput() ParamedicInput {
	return ParamedicInput{
		MedicalLicense: "LIC-9981",
		Specialty:      "APH",
		Institution:    "Cruz Roja",
		LicenseExpiry:  time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_RegisterPatient_ActiveImmediately(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.RegisterPatient(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("RegisterPatient error: %v", err)
	}
	if u.Role != RolePatient || u.Status != StatusActive {
		t.Fatalf("expected active patient, got role=%s status=%s", u.Role, u.Status)
	}
	if u.Email != "ana.gomez@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "super-secreta-1" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestService_Register_RejectsShortPassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	in := patientInput()
	in.Password = "corta"
	if _, err := svc.RegisterPatient(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.RegisterPatient(context.Background(), patientInput()); err != nil {
		t.Fatalf("RegisterPatient error: %v", err)
	}
	// mismo email con otra capitalización
	in := patientInput()
	in.Email = "ANA.GOMEZ@example.com"
	if _, err := svc.RegisterPatient(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_RegisterParamedic_PendingUntilApproved(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.RegisterParamedic(context.Background(), patientInput(), paramedicInput())
	if err != nil {
		t.Fatalf("RegisterParamedic error: %v", err)
	}
	if u.Role != RoleParamedic || u.Status != StatusPending {
		t.Fatalf("expected pending paramedic, got role=%s status=%s", u.Role, u.Status)
	}

	if _, err := svc.Login(context.Background(), u.Email, "super-secreta-1"); !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("pending paramedic must not log in, got %v", err)
	}

	if _, err := svc.GetParamedic(context.Background(), u.ID); err != nil {
		t.Fatalf("expected paramedic profile stored, got %v", err)
	}
}

func TestService_RegisterParamedic_RequiresLicense(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	pin := paramedicInput()
	pin.MedicalLicense = "  "
	if _, err := svc.RegisterParamedic(context.Background(), patientInput(), pin); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.RegisterPatient(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("RegisterPatient error: %v", err)
	}

	if _, err := svc.Login(context.Background(), u.Email, "otra-clave-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nadie@example.com", "super-secreta-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Login(context.Background(), u.Email, "super-secreta-1"); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
}

func TestService_ApproveParamedic_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u, err := svc.RegisterParamedic(context.Background(), patientInput(), paramedicInput())
	if err != nil {
		t.Fatalf("RegisterParamedic error: %v", err)
	}

	approved, err := svc.ApproveParamedic(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ApproveParamedic error: %v", err)
	}
	if approved.Status != StatusActive || approved.ApprovedAt == nil {
		t.Fatalf("expected active with approval timestamp, got %+v", approved)
	}

	// idempotente
	again, err := svc.ApproveParamedic(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ApproveParamedic #2 error: %v", err)
	}
	if again.Status != StatusActive {
		t.Fatalf("expected still active, got %s", again.Status)
	}

	if _, err := svc.Login(context.Background(), u.Email, "super-secreta-1"); err != nil {
		t.Fatalf("approved paramedic must log in, got %v", err)
	}
}

func TestService_RejectParamedic_BlocksLogin(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.RegisterParamedic(context.Background(), patientInput(), paramedicInput())
	if err != nil {
		t.Fatalf("RegisterParamedic error: %v", err)
	}

	if _, err := svc.RejectParamedic(context.Background(), u.ID); err != nil {
		t.Fatalf("RejectParamedic error: %v", err)
	}
	if _, err := svc.Login(context.Background(), u.Email, "super-secreta-1"); !errors.Is(err, ErrRejected) {
		t.Fatalf("rejected paramedic must not log in, got %v", err)
	}

	// rechazar de nuevo: idempotente; aprobar después: estado inválido
	if _, err := svc.RejectParamedic(context.Background(), u.ID); err != nil {
		t.Fatalf("RejectParamedic #2 error: %v", err)
	}
	if _, err := svc.ApproveParamedic(context.Background(), u.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState approving rejected user, got %v", err)
	}
}

func TestService_ApproveParamedic_RejectsNonParamedic(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.RegisterPatient(context.Background(), patientInput())
	if err != nil {
		t.Fatalf("RegisterPatient error: %v", err)
	}
	if _, err := svc.ApproveParamedic(context.Background(), u.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestService_ListPendingParamedics(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	in := patientInput()
	in.Email = "medico1@example.com"
	if _, err := svc.RegisterParamedic(context.Background(), in, paramedicInput()); err != nil {
		t.Fatalf("RegisterParamedic error: %v", err)
	}
	in.Email = "paciente@example.com"
	if _, err := svc.RegisterPatient(context.Background(), in); err != nil {
		t.Fatalf("RegisterPatient error: %v", err)
	}

	pending, err := svc.ListPendingParamedics(context.Background())
	if err != nil {
		t.Fatalf("ListPendingParamedics error: %v", err)
	}
	if len(pending) != 1 || pending[0].Email != "medico1@example.com" {
		t.Fatalf("expected single pending paramedic, got %+v", pending)
	}
}
