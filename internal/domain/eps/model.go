package eps

import "time"

// RegimeType del sistema de salud colombiano.
// @Enum contributivo, subsidiado, ambos
type RegimeType string

const (
	RegimeContributivo RegimeType = "contributivo"
	RegimeSubsidiado   RegimeType = "subsidiado"
	RegimeAmbos        RegimeType = "ambos"
)

type Status string

const (
	StatusActiva      Status = "activa"
	StatusInactiva    Status = "inactiva"
	StatusLiquidacion Status = "liquidacion"
)

// EPS es una entidad promotora de salud del catálogo administrado.
type EPS struct {
	ID     string
	Name   string
	Code   string
	Regime RegimeType
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
