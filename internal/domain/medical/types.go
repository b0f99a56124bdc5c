package medical

// Severity de una alergia.
// @Enum MILD, MODERATE, SEVERE, CRITICAL
type Severity string

const (
	SeverityMild     Severity = "MILD"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"
	SeverityCritical Severity = "CRITICAL"
)

// Rank ordena severidades: mayor valor = más grave.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeveritySevere:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMild:
		return 1
	default:
		return 0
	}
}

// IllnessStatus del diagnóstico.
// @Enum ACTIVE, RESOLVED, CHRONIC
type IllnessStatus string

const (
	IllnessActive   IllnessStatus = "ACTIVE"
	IllnessResolved IllnessStatus = "RESOLVED"
	IllnessChronic  IllnessStatus = "CHRONIC"
)

// RecordState es el tag explícito de borrado lógico: cada query de los
// repos filtra por este tag en lugar de recordar un predicado deleted_at.
type RecordState string

const (
	StateActive  RecordState = "active"
	StateDeleted RecordState = "deleted"
)
