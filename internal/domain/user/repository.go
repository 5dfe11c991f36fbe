package user

import "context"

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	FindByName(ctx context.Context, name string) (User, bool, error)
	Create(ctx context.Context, u User) (User, error)
	UpdateHandicap(ctx context.Context, id int64, handicap float64) error
}
