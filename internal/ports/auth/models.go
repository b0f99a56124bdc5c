package auth

// Role clasifica al usuario autenticado dentro del sistema.
type Role string

const (
	RolePatient   Role = "patient"
	RoleParamedic Role = "paramedic"
	RoleAdmin     Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}
