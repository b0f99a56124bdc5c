package emergency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jsricop/vitalgo/internal/domain/medical"
	"github.com/jsricop/vitalgo/internal/domain/patients"
)

// -------------------------
// Fakes (in-memory)
// -------------------------

type fakeGrants struct {
	byToken map[string]Grant
	failGet bool
}

func newFakeGrants() *fakeGrants {
	return &fakeGrants{byToken: map[string]Grant{}}
}

func (r *fakeGrants) Create(ctx context.Context, g Grant) error {
	if _, ok := r.byToken[g.Token]; ok {
		return errors.New("token collision")
	}
	r.byToken[g.Token] = g
	return nil
}

func (r *fakeGrants) GetByToken(ctx context.Context, token string) (Grant, error) {
	if r.failGet {
		return Grant{}, errors.New("repo down")
	}
	g, ok := r.byToken[token]
	if !ok {
		return Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *fakeGrants) ListByPatient(ctx context.Context, patientID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.byToken {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGrants) Deactivate(ctx context.Context, token string, at time.Time) error {
	g, ok := r.byToken[token]
	if !ok {
		return ErrNotFound
	}
	if g.Active {
		g.Active = false
		g.RevokedAt = &at
	}
	r.byToken[token] = g
	return nil
}

func (r *fakeGrants) RecordAccess(ctx context.Context, token string, at time.Time) error {
	g, ok := r.byToken[token]
	if !ok {
		return ErrNotFound
	}
	g.AccessCount++
	g.LastAccessedAt = &at
	r.byToken[token] = g
	return nil
}

type fakeAudit struct {
	entries    []AccessLogEntry
	failAppend bool
}

func (a *fakeAudit) Append(ctx context.Context, e AccessLogEntry) error {
	if a.failAppend {
		return errors.New("audit store down")
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) ListByToken(ctx context.Context, token string) ([]AccessLogEntry, error) {
	out := make([]AccessLogEntry, 0)
	for _, e := range a.entries {
		if e.GrantToken == token {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	owners    map[string]string
	summaries map[string]patients.Summary
}

func (d *fakeDirectory) OwnerOf(ctx context.Context, patientID string) (string, error) {
	owner, ok := d.owners[patientID]
	if !ok {
		return "", patients.ErrNotFound
	}
	return owner, nil
}

func (d *fakeDirectory) EmergencySummary(ctx context.Context, patientID string) (patients.Summary, error) {
	s, ok := d.summaries[patientID]
	if !ok {
		return patients.Summary{}, patients.ErrNotFound
	}
	return s, nil
}

type fakeHistory struct {
	allergies map[string][]medical.Allergy
	illnesses map[string][]medical.Illness
	surgeries map[string][]medical.Surgery

	lastSince time.Time
}

func (h *fakeHistory) ActiveAllergies(ctx context.Context, patientID string) ([]medical.Allergy, error) {
	return h.allergies[patientID], nil
}

func (h *fakeHistory) OngoingIllnesses(ctx context.Context, patientID string) ([]medical.Illness, error) {
	return h.illnesses[patientID], nil
}

func (h *fakeHistory) SurgeriesSince(ctx context.Context, patientID string, since time.Time) ([]medical.Surgery, error) {
	h.lastSince = since
	return h.surgeries[patientID], nil
}

// -------------------------
// Fixture
// -------------------------

type fixture struct {
	svc       *Service
	grants    *fakeGrants
	audit     *fakeAudit
	directory *fakeDirectory
	history   *fakeHistory
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	grants := newFakeGrants()
	audit := &fakeAudit{}
	directory := &fakeDirectory{
		owners: map[string]string{"patient-1": "user-1"},
		summaries: map[string]patients.Summary{
			"patient-1": {
				PatientID: "patient-1",
				UserID:    "user-1",
				FullName:  "Ana Gómez",
				BloodType: patients.BloodOPos,
			},
		},
	}
	history := &fakeHistory{
		allergies: map[string][]medical.Allergy{},
		illnesses: map[string][]medical.Illness{},
		surgeries: map[string][]medical.Surgery{},
	}

	svc := NewService(grants, audit, directory, history, nil, Config{})

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, grants: grants, audit: audit, directory: directory, history: history, now: now}
}

func (f *fixture) issue(t *testing.T, ttl time.Duration) Grant {
	t.Helper()
	g, err := f.svc.Issue(context.Background(), "patient-1", ttl)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return g
}

func paramedicCaller() Caller {
	return Caller{Role: RoleParamedic, UserID: "medic-1", SourceAddr: "10.0.0.9:4411"}
}

// -------------------------
// Issue / Revoke
// -------------------------

func TestService_Issue_FreshTokenPerCall(t *testing.T) {
	f := newFixture(t)

	g1 := f.issue(t, 0)
	g2 := f.issue(t, 0)

	if g1.Token == g2.Token {
		t.Fatalf("expected distinct tokens per issue")
	}
	if !g1.Active || !g2.Active {
		t.Fatalf("expected new grants active")
	}
	if g1.ExpiresAt != nil {
		t.Fatalf("ttl 0 should mean no expiry, got %v", g1.ExpiresAt)
	}
}

func TestService_Issue_SetsExpiry(t *testing.T) {
	f := newFixture(t)

	g := f.issue(t, 48*time.Hour)
	if g.ExpiresAt == nil {
		t.Fatalf("expected expiry set")
	}
	want := f.now.Add(48 * time.Hour)
	if !g.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, *g.ExpiresAt)
	}
}

func TestService_Issue_UnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), "ghost", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Revoke_Idempotent(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	if err := f.svc.Revoke(context.Background(), g.Token); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	stored := f.grants.byToken[g.Token]
	if stored.Active || stored.RevokedAt == nil || !stored.RevokedAt.Equal(f.now) {
		t.Fatalf("expected revocation timestamped at %v, got %+v", f.now, stored)
	}
	// segunda revocación: sin error
	if err := f.svc.Revoke(context.Background(), g.Token); err != nil {
		t.Fatalf("Revoke #2 error: %v", err)
	}
	if err := f.svc.Revoke(context.Background(), "missing-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
}

// -------------------------
// Present: negaciones
// -------------------------

func TestService_Present_UnknownToken_DeniedAndAudited(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Present(context.Background(), "no-such-token", paramedicCaller())
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d.Granted || d.Reason != ReasonNotFound {
		t.Fatalf("expected denied not_found, got %+v", d)
	}
	if d.Payload != nil {
		t.Fatalf("denied decision must not carry payload")
	}
	assertAuditCount(t, f.audit, "no-such-token", 1)
	if e := f.audit.entries[0]; e.Success || e.FailureReason != ReasonNotFound {
		t.Fatalf("audit entry mismatch: %+v", e)
	}
}

func TestService_Present_RevokedToken_Inactive(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)
	if err := f.svc.Revoke(context.Background(), g.Token); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	d, err := f.svc.Present(context.Background(), g.Token, paramedicCaller())
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d.Granted || d.Reason != ReasonInactive {
		t.Fatalf("expected denied inactive, got %+v", d)
	}
	assertAuditCount(t, f.audit, g.Token, 1)
}

func TestService_Present_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, time.Hour)

	f.svc.now = func() time.Time { return f.now.Add(2 * time.Hour) }

	d, err := f.svc.Present(context.Background(), g.Token, paramedicCaller())
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d.Granted || d.Reason != ReasonExpired {
		t.Fatalf("expected denied expired, got %+v", d)
	}
	assertAuditCount(t, f.audit, g.Token, 1)
}

func TestService_Present_PatientNonOwner_RoleMismatch(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	d, err := f.svc.Present(context.Background(), g.Token, Caller{Role: RolePatient, UserID: "intruder"})
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d.Granted || d.Reason != ReasonRoleMismatch {
		t.Fatalf("expected denied role_mismatch, got %+v", d)
	}
	assertAuditCount(t, f.audit, g.Token, 1)
}

func TestService_Present_Anonymous_InsufficientRole(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	d, err := f.svc.Present(context.Background(), g.Token, Caller{Role: RoleAnonymous})
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d.Granted || d.Reason != ReasonInsufficientRole {
		t.Fatalf("expected denied insufficient_role, got %+v", d)
	}
	// un rol inventado colapsa a anónimo
	d2, err := f.svc.Present(context.Background(), g.Token, Caller{Role: Role("superuser")})
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if d2.Reason != ReasonInsufficientRole {
		t.Fatalf("expected unknown role treated as anonymous, got %+v", d2)
	}
	assertAuditCount(t, f.audit, g.Token, 2)
}

func TestService_Present_DeniedDoesNotBumpCounter(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	if _, err := f.svc.Present(context.Background(), g.Token, Caller{Role: RoleAnonymous}); err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if got := f.grants.byToken[g.Token].AccessCount; got != 0 {
		t.Fatalf("denied access must not bump counter, got %d", got)
	}
}

// -------------------------
// Present: concedidos
// -------------------------

func TestService_Present_Paramedic_Granted(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	sev := func(s medical.Severity, d time.Time) medical.Allergy {
		return medical.Allergy{Allergen: string(s), Severity: s, DiagnosedDate: &d}
	}
	f.history.allergies["patient-1"] = []medical.Allergy{
		sev(medical.SeverityCritical, f.now.AddDate(-1, 0, 0)),
		sev(medical.SeverityMild, f.now.AddDate(-2, 0, 0)),
	}
	f.history.illnesses["patient-1"] = []medical.Illness{
		{Name: "hipertensión", Status: medical.IllnessChronic},
	}

	d, err := f.svc.Present(context.Background(), g.Token, paramedicCaller())
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if !d.Granted || d.Reason != ReasonGranted {
		t.Fatalf("expected granted, got %+v", d)
	}
	if d.Payload == nil {
		t.Fatalf("granted decision must carry payload")
	}
	if d.Payload.Patient.FullName != "Ana Gómez" {
		t.Fatalf("payload patient mismatch: %+v", d.Payload.Patient)
	}
	if len(d.Payload.Allergies) != 2 || d.Payload.Allergies[0].Severity != string(medical.SeverityCritical) {
		t.Fatalf("expected allergies in severity order, got %+v", d.Payload.Allergies)
	}
	if len(d.Payload.Illnesses) != 1 {
		t.Fatalf("expected 1 illness, got %+v", d.Payload.Illnesses)
	}
	// sin cirugías: slice vacío, nunca nil
	if d.Payload.Surgeries == nil {
		t.Fatalf("collections must be empty slices, not nil")
	}

	assertAuditCount(t, f.audit, g.Token, 1)
	e := f.audit.entries[0]
	if !e.Success || e.FailureReason != "" || e.AccessedBy != "medic-1" || e.AccessRole != RoleParamedic {
		t.Fatalf("audit entry mismatch: %+v", e)
	}
	if e.SourceAddr != "10.0.0.9:4411" {
		t.Fatalf("expected source addr recorded, got %q", e.SourceAddr)
	}

	stored := f.grants.byToken[g.Token]
	if stored.AccessCount != 1 || stored.LastAccessedAt == nil {
		t.Fatalf("expected counter bumped on grant, got %+v", stored)
	}
}

func TestService_Present_OwnerPatient_Granted(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	d, err := f.svc.Present(context.Background(), g.Token, Caller{Role: RolePatient, UserID: "user-1"})
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if !d.Granted {
		t.Fatalf("owner patient should be granted, got %+v", d)
	}
}

func TestService_Present_Admin_Granted(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	d, err := f.svc.Present(context.Background(), g.Token, Caller{Role: RoleAdmin, UserID: "admin-1"})
	if err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if !d.Granted {
		t.Fatalf("admin should be granted, got %+v", d)
	}
}

func TestService_Present_SurgeryLookbackWindow(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)

	// config cero-valor: aplica la ventana por defecto
	if _, err := f.svc.Present(context.Background(), g.Token, paramedicCaller()); err != nil {
		t.Fatalf("Present error: %v", err)
	}
	want := f.now.Add(-DefaultSurgeryLookback)
	if !f.history.lastSince.Equal(want) {
		t.Fatalf("expected surgery window since %v, got %v", want, f.history.lastSince)
	}
}

func TestService_Present_SurgeryLookbackNegative_Unbounded(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.SurgeryLookback = -1
	g := f.issue(t, 0)

	if _, err := f.svc.Present(context.Background(), g.Token, paramedicCaller()); err != nil {
		t.Fatalf("Present error: %v", err)
	}
	if !f.history.lastSince.IsZero() {
		t.Fatalf("negative lookback means unbounded window, got since=%v", f.history.lastSince)
	}
}

// -------------------------
// Present: fallas de infraestructura
// -------------------------

func TestService_Present_AuditFailure_FailsClosed(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)
	f.audit.failAppend = true

	d, err := f.svc.Present(context.Background(), g.Token, paramedicCaller())
	if !errors.Is(err, ErrAuditFailure) {
		t.Fatalf("expected ErrAuditFailure, got %v", err)
	}
	if d.Granted || d.Reason != ReasonAuditFailure {
		t.Fatalf("audit failure must deny, got %+v", d)
	}
	if d.Payload != nil {
		t.Fatalf("audit failure must not leak payload")
	}
	if got := f.grants.byToken[g.Token].AccessCount; got != 0 {
		t.Fatalf("counter must not bump without audit, got %d", got)
	}
}

func TestService_Present_StoreDown_Unavailable(t *testing.T) {
	f := newFixture(t)
	g := f.issue(t, 0)
	f.grants.failGet = true

	d, err := f.svc.Present(context.Background(), g.Token, paramedicCaller())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if d.Granted || d.Reason != ReasonUnavailable {
		t.Fatalf("expected denied unavailable, got %+v", d)
	}
	// la negación por outage también queda auditada
	assertAuditCount(t, f.audit, g.Token, 1)
}

// -------------------------
// Assemble
// -------------------------

func TestService_Assemble_RestrictedTierBlanksIdentity(t *testing.T) {
	f := newFixture(t)
	f.directory.summaries["patient-1"] = patients.Summary{
		PatientID:      "patient-1",
		FullName:       "Ana Gómez",
		DocumentType:   patients.DocumentCC,
		DocumentNumber: "1020304050",
		EPS:            "SURA",
		BloodType:      patients.BloodOPos,
	}
	f.history.allergies["patient-1"] = []medical.Allergy{{Allergen: "penicilina"}}

	p, err := f.svc.Assemble(context.Background(), "patient-1", TierRestricted)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if p.Patient.DocumentNumber != "" || p.Patient.DocumentType != "" || p.Patient.EPS != "" {
		t.Fatalf("restricted tier must blank document/eps, got %+v", p.Patient)
	}
	if p.Patient.FullName == "" || p.Patient.BloodType == "" {
		t.Fatalf("restricted tier keeps identity basics, got %+v", p.Patient)
	}
	if len(p.Allergies) != 0 {
		t.Fatalf("restricted tier must omit history, got %+v", p.Allergies)
	}
}

func assertAuditCount(t *testing.T, a *fakeAudit, token string, want int) {
	t.Helper()
	got := 0
	for _, e := range a.entries {
		if e.GrantToken == token {
			got++
		}
	}
	if got != want {
		t.Fatalf("expected exactly %d audit entries for token, got %d", want, got)
	}
}
