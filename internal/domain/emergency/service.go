package emergency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsricop/vitalgo/internal/domain/patients"
	"github.com/jsricop/vitalgo/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("collaborator unavailable")
	ErrAuditFailure = errors.New("audit write failed")
)

const (
	DefaultOpTimeout = 3 * time.Second

	// DefaultSurgeryLookback acota la vista de "cirugías recientes".
	DefaultSurgeryLookback = 5 * 365 * 24 * time.Hour
)

type Config struct {
	// OpTimeout acota cada llamada a colaboradores externos.
	OpTimeout time.Duration
	// SurgeryLookback: ventana de cirugías recientes; negativo = sin cota.
	SurgeryLookback time.Duration
}

// Caller identifica a quien presenta un token.
type Caller struct {
	Role       Role
	UserID     string
	SourceAddr string
}

type Service struct {
	grants    GrantRepository
	audit     AuditLog
	directory PatientDirectory
	history   MedicalHistory

	log logger.Logger
	cfg Config

	now      func() time.Time
	newToken func() (string, error)
}

func NewService(grants GrantRepository, audit AuditLog, directory PatientDirectory, history MedicalHistory, log logger.Logger, cfg Config) *Service {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}
	if cfg.SurgeryLookback == 0 {
		cfg.SurgeryLookback = DefaultSurgeryLookback
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		grants:    grants,
		audit:     audit,
		directory: directory,
		history:   history,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
		newToken:  NewToken,
	}
}

// Issue emite un grant nuevo e independiente. No hay idempotencia: cada
// llamada crea un token fresco y pueden convivir varios grants del mismo
// paciente.
func (s *Service) Issue(ctx context.Context, patientID string, ttl time.Duration) (Grant, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Grant{}, ErrInvalidInput
	}

	bctx, cancel := s.bound(ctx)
	defer cancel()
	if _, err := s.directory.OwnerOf(bctx, patientID); err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			return Grant{}, ErrNotFound
		}
		return Grant{}, s.unavailable("patient lookup", err)
	}

	token, err := s.newToken()
	if err != nil {
		return Grant{}, err
	}

	now := s.now()
	g := Grant{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Token:     token,
		Active:    true,
		CreatedAt: now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		g.ExpiresAt = &exp
	}

	cctx, cancel2 := s.bound(ctx)
	defer cancel2()
	if err := s.grants.Create(cctx, g); err != nil {
		return Grant{}, s.unavailable("grant create", err)
	}

	s.log.Info("emergency grant issued", logger.Fields{
		"patient_id": patientID,
		"token":      tokenPrefix(token),
		"expires":    g.ExpiresAt != nil,
	})
	return g, nil
}

// Revoke apaga el grant sin borrarlo. Idempotente: revocar un grant ya
// inactivo no es error. La autorización (dueño o admin) ya viene decidida
// por la capa API.
func (s *Service) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidInput
	}

	bctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.grants.Deactivate(bctx, token, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return s.unavailable("grant deactivate", err)
	}

	s.log.Info("emergency grant revoked", logger.Fields{"token": tokenPrefix(token)})
	return nil
}

func (s *Service) Get(ctx context.Context, token string) (Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Grant{}, ErrInvalidInput
	}
	bctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.grants.GetByToken(bctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Grant{}, ErrNotFound
		}
		return Grant{}, s.unavailable("grant lookup", err)
	}
	return g, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Grant, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	bctx, cancel := s.bound(ctx)
	defer cancel()
	return s.grants.ListByPatient(bctx, patientID)
}

// AccessLogFor lista la auditoría de un token. Solo reportes: ninguna
// decisión de autorización lee este log.
func (s *Service) AccessLogFor(ctx context.Context, token string) ([]AccessLogEntry, error) {
	bctx, cancel := s.bound(ctx)
	defer cancel()
	return s.audit.ListByToken(bctx, strings.TrimSpace(token))
}

// Present valida un token presentado por un caller y decide conceder o
// negar. Todo desenlace, concedido o negado, escribe exactamente una
// entrada de auditoría antes de retornar; si esa escritura falla, el
// resultado se degrada a negado con audit_failure (fail-closed).
//
// El error retornado es no-nil solo ante fallas de infraestructura
// (unavailable / audit_failure); las negaciones de política retornan
// Decision con error nil.
func (s *Service) Present(ctx context.Context, token string, caller Caller) (Decision, error) {
	token = strings.TrimSpace(token)
	now := s.now()
	role := normalizeRole(caller.Role)

	reason, patientID := s.evaluate(ctx, token, caller, role, now)

	var payload *DisclosurePayload
	if reason == ReasonGranted {
		p, err := s.Assemble(ctx, patientID, TierFull)
		switch {
		case err == nil:
			payload = &p
		case errors.Is(err, ErrNotFound):
			// carrera con un borrado de paciente: negar, no reventar
			reason = ReasonNotFound
		default:
			reason = ReasonUnavailable
		}
	}

	granted := reason == ReasonGranted

	entry := AccessLogEntry{
		ID:         uuid.NewString(),
		GrantToken: token,
		AccessedBy: strings.TrimSpace(caller.UserID),
		AccessRole: role,
		Timestamp:  now,
		Success:    granted,
		SourceAddr: strings.TrimSpace(caller.SourceAddr),
	}
	if !granted {
		entry.FailureReason = reason
	}

	actx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.audit.Append(actx, entry); err != nil {
		// Un acceso concedido sin rastro es peor que negar uno legítimo.
		s.log.Error("audit append failed", logger.Fields{
			"token": tokenPrefix(token),
			"role":  string(role),
			"err":   err.Error(),
		})
		return Decision{Granted: false, Reason: ReasonAuditFailure}, ErrAuditFailure
	}

	if granted {
		rctx, cancel2 := s.bound(ctx)
		defer cancel2()
		if err := s.grants.RecordAccess(rctx, token, now); err != nil {
			// contador perdido tolerado; la auditoría ya quedó escrita
			s.log.Warn("record access failed", logger.Fields{
				"token": tokenPrefix(token),
				"err":   err.Error(),
			})
		}
	}

	s.log.Info("emergency access decision", logger.Fields{
		"token":   tokenPrefix(token),
		"role":    string(role),
		"granted": granted,
		"reason":  string(reason),
	})

	if reason == ReasonUnavailable {
		return Decision{Granted: false, Reason: reason}, ErrUnavailable
	}
	return Decision{Granted: granted, Reason: reason, Payload: payload}, nil
}

// evaluate corre la máquina de estados del token sobre UNA sola lectura
// consistente del grant: no se re-chequea estado entre la decisión y la
// auditoría (la carrera revocación-vs-scan queda resuelta por orden de
// llegada, no se cierra determinísticamente).
func (s *Service) evaluate(ctx context.Context, token string, caller Caller, role Role, now time.Time) (Reason, string) {
	if token == "" {
		return ReasonNotFound, ""
	}

	bctx, cancel := s.bound(ctx)
	defer cancel()
	g, err := s.grants.GetByToken(bctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ReasonNotFound, ""
		}
		s.log.Warn("grant lookup failed", logger.Fields{"token": tokenPrefix(token), "err": err.Error()})
		return ReasonUnavailable, ""
	}

	if !g.Active {
		return ReasonInactive, ""
	}
	if g.Expired(now) {
		return ReasonExpired, ""
	}

	switch role {
	case RoleAdmin, RoleParamedic:
		return ReasonGranted, g.PatientID

	case RolePatient:
		octx, cancel2 := s.bound(ctx)
		defer cancel2()
		owner, err := s.directory.OwnerOf(octx, g.PatientID)
		if err != nil {
			if errors.Is(err, patients.ErrNotFound) {
				return ReasonNotFound, ""
			}
			return ReasonUnavailable, ""
		}
		// Un paciente autenticado solo puede leer su propio grant.
		if owner != strings.TrimSpace(caller.UserID) {
			return ReasonRoleMismatch, ""
		}
		return ReasonGranted, g.PatientID

	default:
		// Política estricta: el escaneo anónimo se niega (y se audita).
		return ReasonInsufficientRole, ""
	}
}

func normalizeRole(r Role) Role {
	switch r {
	case RolePatient, RoleParamedic, RoleAdmin:
		return r
	default:
		return RoleAnonymous
	}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// unavailable convierte cualquier falla de colaborador (timeout incluido)
// en ErrUnavailable, nunca en un cuelgue ni en un error crudo.
func (s *Service) unavailable(op string, err error) error {
	s.log.Warn(op+" failed", logger.Fields{"err": err.Error()})
	return ErrUnavailable
}
