package course

import "context"

type Repository interface {
	List(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id int64) (Course, bool, error)
	FindByName(ctx context.Context, name string) (Course, bool, error)
	Create(ctx context.Context, c Course) (Course, error)
}
