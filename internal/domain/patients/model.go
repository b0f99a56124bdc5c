package patients

import "time"

// DocumentType según documentos de identidad colombianos.
// @Enum CC, TI, CE, PA
type DocumentType string

const (
	DocumentCC DocumentType = "CC" // cédula de ciudadanía
	DocumentTI DocumentType = "TI" // tarjeta de identidad
	DocumentCE DocumentType = "CE" // cédula de extranjería
	DocumentPA DocumentType = "PA" // pasaporte
)

// BloodType en notación ABO/Rh.
type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

// Gender del paciente.
// @Enum M, F, O
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Patient es el perfil médico-administrativo de un usuario con rol patient.
type Patient struct {
	ID     string
	UserID string

	DocumentType   DocumentType
	DocumentNumber string

	BirthDate time.Time
	Gender    Gender
	BloodType BloodType

	// EPS: entidad promotora de salud a la que está afiliado.
	EPS string

	EmergencyContactName  string
	EmergencyContactPhone string

	Address string
	City    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Age calcula la edad a la fecha dada.
func (p Patient) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Summary es la proyección de identidad usada por el acceso de emergencia.
type Summary struct {
	PatientID string
	UserID    string

	FullName       string
	DocumentType   DocumentType
	DocumentNumber string
	Age            int
	Gender         Gender
	BloodType      BloodType
	EPS            string

	EmergencyContactName  string
	EmergencyContactPhone string
}
