package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var userColumns = []string{"id", "name", "handicap", "is_placeholder", "created_at", "updated_at"}

type userTableModel struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Handicap      float64   `db:"handicap"`
	IsPlaceholder bool      `db:"is_placeholder"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type userInsertModel struct {
	Name          string  `db:"name"`
	Handicap      float64 `db:"handicap"`
	IsPlaceholder bool    `db:"is_placeholder"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select(userColumns...).From("users").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).From("users").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).From("users").
		Where(qb.LowerEq("name", name)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build find user by name query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	query, args, err := qb.InsertModel("users", userInsertModel{
		Name:          u.Name,
		Handicap:      u.Handicap,
		IsPlaceholder: u.Placeholder,
	}, "RETURNING "+joinColumns(userColumns))
	if err != nil {
		return user.User{}, fmt.Errorf("build create user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return userFromRow(row), nil
}

func (r *UserRepository) UpdateHandicap(ctx context.Context, id int64, handicap float64) error {
	query, args, err := qb.Update("users").
		Set("handicap", handicap).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update handicap query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update handicap: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update handicap: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update handicap: user %d not found", id)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args []any) (user.User, bool, error) {
	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), true, nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:          row.ID,
		Name:        row.Name,
		Handicap:    row.Handicap,
		Placeholder: row.IsPlaceholder,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
