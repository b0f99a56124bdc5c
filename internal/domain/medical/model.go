package medical

import "time"

// Allergy registrada en el historial del paciente.
type Allergy struct {
	ID        string
	PatientID string

	Allergen  string
	Severity  Severity
	Symptoms  string
	Treatment string

	DiagnosedDate *time.Time
	Notes         string

	State     RecordState
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Illness diagnosticada (crónica o no).
type Illness struct {
	ID        string
	PatientID string

	Name          string
	Status        IllnessStatus
	DiagnosisDate *time.Time
	Treatment     string
	Notes         string

	State     RecordState
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Surgery practicada al paciente.
type Surgery struct {
	ID        string
	PatientID string

	ProcedureName string
	Date          time.Time
	Surgeon       string
	Hospital      string
	Complications string
	Notes         string

	State     RecordState
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
