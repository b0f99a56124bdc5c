package users

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByRoleAndStatus(ctx context.Context, role Role, status Status) ([]User, error)

	CreateParamedic(ctx context.Context, p Paramedic) error
	GetParamedic(ctx context.Context, userID string) (Paramedic, error)
}
