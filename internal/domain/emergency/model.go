package emergency

import (
	"time"

	"github.com/jsricop/vitalgo/internal/domain/patients"
)

// Grant es una capacidad de acceso de emergencia emitida para un paciente.
// Un paciente puede tener varios grants vivos a la vez (teléfono perdido,
// múltiples dispositivos); el token es el único identificador externo.
type Grant struct {
	ID        string
	PatientID string

	// Token opaco e inadivinable; quien lo posee puede intentar acceder,
	// sujeto al chequeo de rol.
	Token string

	Active    bool
	ExpiresAt *time.Time
	RevokedAt *time.Time

	AccessCount    int64
	LastAccessedAt *time.Time

	CreatedAt time.Time
}

// Expired evalúa la expiración contra un instante dado.
func (g Grant) Expired(at time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(at)
}

// AccessLogEntry es un registro de auditoría inmutable y append-only.
// Toda presentación de token, concedida o negada, produce exactamente uno.
type AccessLogEntry struct {
	ID         string
	GrantToken string

	// AccessedBy: userID autenticado; vacío para anónimos.
	AccessedBy string
	AccessRole Role

	Timestamp     time.Time
	Success       bool
	FailureReason Reason

	// SourceAddr: mejor esfuerzo, puede venir vacío.
	SourceAddr string
}

// Proyecciones de historial que se revelan en un acceso concedido.
// Son subconjuntos deliberados de los registros médicos completos.

type AllergyInfo struct {
	Allergen      string
	Severity      string
	Symptoms      string
	Treatment     string
	DiagnosedDate *time.Time
}

type IllnessInfo struct {
	Name          string
	Status        string
	DiagnosisDate *time.Time
	Treatment     string
}

type SurgeryInfo struct {
	ProcedureName string
	Date          time.Time
	Surgeon       string
	Hospital      string
}

// DisclosurePayload es la proyección de solo lectura entregada al caller.
// Las colecciones siempre son slices vacíos, nunca nil.
type DisclosurePayload struct {
	Tier    Tier
	Patient patients.Summary

	Allergies []AllergyInfo
	Illnesses []IllnessInfo
	Surgeries []SurgeryInfo
}

// Decision es el resultado estructurado de presentar un token.
type Decision struct {
	Granted bool
	Reason  Reason
	Payload *DisclosurePayload
}
