package eps

import "context"

type Repository interface {
	Create(ctx context.Context, e EPS) error
	Update(ctx context.Context, e EPS) error
	GetByID(ctx context.Context, id string) (EPS, error)
	GetByCode(ctx context.Context, code string) (EPS, error)
	List(ctx context.Context) ([]EPS, error)
}
