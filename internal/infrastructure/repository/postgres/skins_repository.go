package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var skinsColumns = []string{
	"id", "user_id", "course_id", "played_at", "players", "scores", "skin_value", "results", "completed", "updated_at",
}

type skinsTableModel struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	CourseID  int64     `db:"course_id"`
	PlayedAt  time.Time `db:"played_at"`
	Players   string    `db:"players"`
	Scores    string    `db:"scores"`
	SkinValue float64   `db:"skin_value"`
	Results   string    `db:"results"`
	Completed bool      `db:"completed"`
	UpdatedAt time.Time `db:"updated_at"`
}

type skinsWriteModel struct {
	UserID    int64     `db:"user_id"`
	CourseID  int64     `db:"course_id"`
	PlayedAt  time.Time `db:"played_at"`
	Players   string    `db:"players"`
	Scores    string    `db:"scores"`
	SkinValue float64   `db:"skin_value"`
	Results   string    `db:"results"`
	Completed bool      `db:"completed"`
	UpdatedAt time.Time `db:"updated_at"`
}

type SkinsRepository struct {
	db *sqlx.DB
}

func NewSkinsRepository(db *sqlx.DB) *SkinsRepository {
	return &SkinsRepository{db: db}
}

func (r *SkinsRepository) FindByNaturalKey(ctx context.Context, userID, courseID int64, playedAt time.Time) (skins.Game, bool, error) {
	query, args, err := qb.Select(skinsColumns...).From("skins_games").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("course_id", courseID),
			qb.Eq("played_at", round.NaturalTime(playedAt)),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return skins.Game{}, false, fmt.Errorf("build find skins game query: %w", err)
	}

	var row skinsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return skins.Game{}, false, nil
		}
		return skins.Game{}, false, fmt.Errorf("find skins game by natural key: %w", err)
	}
	g, err := skinsFromRow(row)
	if err != nil {
		return skins.Game{}, false, err
	}
	return g, true, nil
}

func (r *SkinsRepository) Create(ctx context.Context, g skins.Game) (skins.Game, error) {
	model, err := skinsToWriteModel(g)
	if err != nil {
		return skins.Game{}, err
	}
	query, args, err := qb.InsertModel("skins_games", model, "RETURNING "+joinColumns(skinsColumns))
	if err != nil {
		return skins.Game{}, fmt.Errorf("build create skins game query: %w", err)
	}

	var row skinsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return skins.Game{}, fmt.Errorf("create skins game: %w", err)
	}
	return skinsFromRow(row)
}

func (r *SkinsRepository) Update(ctx context.Context, g skins.Game) error {
	model, err := skinsToWriteModel(g)
	if err != nil {
		return err
	}
	query, args, err := qb.UpdateModel("skins_games", model, nil, qb.Eq("id", g.ID))
	if err != nil {
		return fmt.Errorf("build update skins game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update skins game: %w", err)
	}
	return nil
}

func (r *SkinsRepository) ListByUser(ctx context.Context, userID int64) ([]skins.Game, error) {
	query, args, err := qb.Select(skinsColumns...).From("skins_games").
		Where(qb.Eq("user_id", userID)).
		OrderBy("played_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list skins games query: %w", err)
	}

	var rows []skinsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list skins games: %w", err)
	}

	out := make([]skins.Game, 0, len(rows))
	for _, row := range rows {
		g, err := skinsFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func skinsToWriteModel(g skins.Game) (skinsWriteModel, error) {
	players, err := encodeJSON(g.Players)
	if err != nil {
		return skinsWriteModel{}, err
	}
	scores, err := encodeJSON(g.Scores)
	if err != nil {
		return skinsWriteModel{}, err
	}
	results := "[]"
	if len(g.Results) > 0 {
		if results, err = encodeJSON(g.Results); err != nil {
			return skinsWriteModel{}, err
		}
	}
	return skinsWriteModel{
		UserID:    g.UserID,
		CourseID:  g.CourseID,
		PlayedAt:  round.NaturalTime(g.PlayedAt),
		Players:   players,
		Scores:    scores,
		SkinValue: g.SkinValue,
		Results:   results,
		Completed: g.Completed,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func skinsFromRow(row skinsTableModel) (skins.Game, error) {
	g := skins.Game{
		ID:        row.ID,
		UserID:    row.UserID,
		CourseID:  row.CourseID,
		PlayedAt:  row.PlayedAt.UTC(),
		SkinValue: row.SkinValue,
		Completed: row.Completed,
		UpdatedAt: row.UpdatedAt,
	}
	if err := decodeJSON(row.Players, &g.Players); err != nil {
		return skins.Game{}, fmt.Errorf("skins game %d players: %w", row.ID, err)
	}
	if err := decodeJSON(row.Scores, &g.Scores); err != nil {
		return skins.Game{}, fmt.Errorf("skins game %d scores: %w", row.ID, err)
	}
	if err := decodeJSON(row.Results, &g.Results); err != nil {
		return skins.Game{}, fmt.Errorf("skins game %d results: %w", row.ID, err)
	}
	return g, nil
}
