package medical

import "context"

// Repository persiste los tres tipos de registro médico.
// Los métodos List* devuelven únicamente registros con State == StateActive;
// el filtrado por tag es responsabilidad del adapter, no del caller.
type Repository interface {
	CreateAllergy(ctx context.Context, a Allergy) error
	UpdateAllergy(ctx context.Context, a Allergy) error
	GetAllergy(ctx context.Context, id string) (Allergy, error)
	ListAllergies(ctx context.Context, patientID string) ([]Allergy, error)

	CreateIllness(ctx context.Context, i Illness) error
	UpdateIllness(ctx context.Context, i Illness) error
	GetIllness(ctx context.Context, id string) (Illness, error)
	ListIllnesses(ctx context.Context, patientID string) ([]Illness, error)

	CreateSurgery(ctx context.Context, s Surgery) error
	UpdateSurgery(ctx context.Context, s Surgery) error
	GetSurgery(ctx context.Context, id string) (Surgery, error)
	ListSurgeries(ctx context.Context, patientID string) ([]Surgery, error)
}
