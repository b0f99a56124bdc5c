package emergency

import (
	"context"
	"time"

	"github.com/jsricop/vitalgo/internal/domain/medical"
	"github.com/jsricop/vitalgo/internal/domain/patients"
)

// GrantRepository persiste grants indexados por token.
type GrantRepository interface {
	Create(ctx context.Context, g Grant) error
	GetByToken(ctx context.Context, token string) (Grant, error)
	ListByPatient(ctx context.Context, patientID string) ([]Grant, error)

	// Deactivate apaga el grant. Idempotente sobre grants ya inactivos;
	// error solo si el token no existe.
	Deactivate(ctx context.Context, token string, at time.Time) error

	// RecordAccess incrementa access_count y fija last_accessed_at de
	// forma atómica en el store (nunca read-modify-write del caller).
	RecordAccess(ctx context.Context, token string, at time.Time) error
}

// AuditLog es append-only: las entradas jamás se actualizan ni se borran.
// Nadie lee sus propias escrituras para decidir autorización; la lectura
// existe solo para reportes.
type AuditLog interface {
	Append(ctx context.Context, e AccessLogEntry) error
	ListByToken(ctx context.Context, token string) ([]AccessLogEntry, error)
}

// PatientDirectory resuelve pacientes y su dueño. Lo implementa
// patients.Service; se declara aquí para no acoplar el wiring.
type PatientDirectory interface {
	OwnerOf(ctx context.Context, patientID string) (string, error)
	EmergencySummary(ctx context.Context, patientID string) (patients.Summary, error)
}

// MedicalHistory entrega el historial ya filtrado por tag active y en el
// orden del contrato. Lo implementa medical.Service.
type MedicalHistory interface {
	ActiveAllergies(ctx context.Context, patientID string) ([]medical.Allergy, error)
	OngoingIllnesses(ctx context.Context, patientID string) ([]medical.Illness, error)
	SurgeriesSince(ctx context.Context, patientID string, since time.Time) ([]medical.Surgery, error)
}
