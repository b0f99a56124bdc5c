package users

import "time"

type Role string

const (
	RolePatient   Role = "patient"
	RoleParamedic Role = "paramedic"
	RoleAdmin     Role = "admin"
)

type Status string

const (
	// StatusActive: puede iniciar sesión y operar.
	StatusActive Status = "active"
	// StatusPending: paramédico registrado a la espera de aprobación de un admin.
	StatusPending Status = "pending"
	// StatusRejected: solicitud de paramédico rechazada; no puede iniciar sesión.
	StatusRejected Status = "rejected"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string

	FirstName string
	LastName  string
	Phone     string

	Role   Role
	Status Status

	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Paramedic guarda los datos profesionales asociados a un usuario paramédico.
type Paramedic struct {
	UserID string

	MedicalLicense  string
	Specialty       string
	Institution     string
	YearsExperience int
	LicenseExpiry   time.Time
}
