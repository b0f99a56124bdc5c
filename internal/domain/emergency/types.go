package emergency

// Role con el que se presenta un token de emergencia.
// @Enum patient, paramedic, admin, anonymous
type Role string

const (
	RolePatient   Role = "patient"
	RoleParamedic Role = "paramedic"
	RoleAdmin     Role = "admin"
	RoleAnonymous Role = "anonymous"
)

// Reason es el desenlace estructurado de una presentación de token.
type Reason string

const (
	ReasonGranted Reason = "granted"

	// ReasonNotFound: token desconocido o paciente ya no existe.
	ReasonNotFound Reason = "not_found"
	// ReasonInactive: grant revocado.
	ReasonInactive Reason = "inactive"
	// ReasonExpired: expires_at en el pasado.
	ReasonExpired Reason = "expired"
	// ReasonRoleMismatch: paciente autenticado que no es dueño del grant.
	ReasonRoleMismatch Reason = "role_mismatch"
	// ReasonInsufficientRole: rol anónimo o no reconocido.
	ReasonInsufficientRole Reason = "insufficient_role"
	// ReasonUnavailable: colaborador externo caído o timeout.
	ReasonUnavailable Reason = "unavailable"
	// ReasonAuditFailure: no se pudo escribir la auditoría; se niega
	// el acceso (fail-closed) aunque la autorización hubiera pasado.
	ReasonAuditFailure Reason = "audit_failure"
)

// Tier de revelación de datos. El tier reducido existe para políticas
// futuras; hoy todo grant autorizado revela el tier completo.
type Tier string

const (
	TierFull       Tier = "full"
	TierRestricted Tier = "restricted"
)
