package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/syncapi"
)

type UserService struct {
	guard SchemaGuard
	repo  user.Repository
}

func NewUserService(guard SchemaGuard, repo user.Repository) *UserService {
	return &UserService{guard: guard, repo: repo}
}

func (s *UserService) Get(ctx context.Context, id int64) (user.User, error) {
	if id <= 0 {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return user.User{}, fmt.Errorf("%w: user=%d", ErrNotFound, id)
	}
	return u, nil
}

// Ensure restores a user by id, or finds-or-creates one by name.
func (s *UserService) Ensure(ctx context.Context, req syncapi.EnsureUserRequest) (user.User, error) {
	ctx, span := startSpan(ctx, "UserService.Ensure")
	defer span.End()

	if req.ID > 0 {
		if err := s.guard.EnsureUserExists(ctx, req.ID); err != nil {
			return user.User{}, fmt.Errorf("%w: restore user %d: %v", ErrDependencyUnavailable, req.ID, err)
		}
		return s.Get(ctx, req.ID)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return user.User{}, fmt.Errorf("%w: user id or name is required", ErrInvalidInput)
	}
	existing, found, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return user.User{}, fmt.Errorf("find user by name: %w", err)
	}
	if found {
		return existing, nil
	}

	hcp := user.DefaultHandicap
	if req.Handicap != nil {
		hcp = *req.Handicap
	}
	created, err := s.repo.Create(ctx, user.User{Name: name, Handicap: hcp})
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// EnsureSchema runs the schema repair pass on demand.
func (s *UserService) EnsureSchema(ctx context.Context) error {
	if err := s.guard.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", ErrDependencyUnavailable, err)
	}
	return nil
}
