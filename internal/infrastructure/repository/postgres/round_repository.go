package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var roundColumns = []string{
	"id", "user_id", "course_id", "tee_id", "played_at", "hole_strokes", "total_strokes",
	"total_stableford", "hcp_index", "playing_hcp", "league_id", "completed", "updated_at",
}

type roundTableModel struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	CourseID        int64          `db:"course_id"`
	TeeID           sql.NullString `db:"tee_id"`
	PlayedAt        time.Time      `db:"played_at"`
	HoleStrokes     string         `db:"hole_strokes"`
	TotalStrokes    int            `db:"total_strokes"`
	TotalStableford int            `db:"total_stableford"`
	HcpIndex        float64        `db:"hcp_index"`
	PlayingHcp      int            `db:"playing_hcp"`
	LeagueID        sql.NullInt64  `db:"league_id"`
	Completed       bool           `db:"completed"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type roundWriteModel struct {
	UserID          int64          `db:"user_id"`
	CourseID        int64          `db:"course_id"`
	TeeID           sql.NullString `db:"tee_id"`
	PlayedAt        time.Time      `db:"played_at"`
	HoleStrokes     string         `db:"hole_strokes"`
	TotalStrokes    int            `db:"total_strokes"`
	TotalStableford int            `db:"total_stableford"`
	HcpIndex        float64        `db:"hcp_index"`
	PlayingHcp      int            `db:"playing_hcp"`
	LeagueID        sql.NullInt64  `db:"league_id"`
	Completed       bool           `db:"completed"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) FindByNaturalKey(ctx context.Context, userID, courseID int64, playedAt time.Time) (round.Round, bool, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("course_id", courseID),
			qb.Eq("played_at", round.NaturalTime(playedAt)),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build find round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("find round by natural key: %w", err)
	}
	item, err := roundFromRow(row)
	if err != nil {
		return round.Round{}, false, err
	}
	return item, true, nil
}

func (r *RoundRepository) Create(ctx context.Context, item round.Round) (round.Round, error) {
	model, err := roundToWriteModel(item)
	if err != nil {
		return round.Round{}, err
	}
	query, args, err := qb.InsertModel("rounds", model, "RETURNING "+joinColumns(roundColumns))
	if err != nil {
		return round.Round{}, fmt.Errorf("build create round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return round.Round{}, fmt.Errorf("create round: %w", err)
	}
	return roundFromRow(row)
}

func (r *RoundRepository) Update(ctx context.Context, item round.Round) error {
	model, err := roundToWriteModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.UpdateModel("rounds", model, nil, qb.Eq("id", item.ID))
	if err != nil {
		return fmt.Errorf("build update round query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update round: %w", err)
	}
	return nil
}

func (r *RoundRepository) ListByUser(ctx context.Context, userID int64) ([]round.Round, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(qb.Eq("user_id", userID)).
		OrderBy("played_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rounds query: %w", err)
	}

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		item, err := roundFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func roundToWriteModel(item round.Round) (roundWriteModel, error) {
	strokes, err := encodeJSON(item.HoleStrokes)
	if err != nil {
		return roundWriteModel{}, err
	}
	return roundWriteModel{
		UserID:          item.UserID,
		CourseID:        item.CourseID,
		TeeID:           stringToNull(item.TeeID),
		PlayedAt:        round.NaturalTime(item.PlayedAt),
		HoleStrokes:     strokes,
		TotalStrokes:    item.TotalStrokes,
		TotalStableford: item.TotalStableford,
		HcpIndex:        item.HcpIndex,
		PlayingHcp:      item.PlayingHcp,
		LeagueID:        int64PtrToNull(item.LeagueID),
		Completed:       item.Completed,
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

func roundFromRow(row roundTableModel) (round.Round, error) {
	item := round.Round{
		ID:              row.ID,
		UserID:          row.UserID,
		CourseID:        row.CourseID,
		TeeID:           row.TeeID.String,
		PlayedAt:        row.PlayedAt.UTC(),
		TotalStrokes:    row.TotalStrokes,
		TotalStableford: row.TotalStableford,
		HcpIndex:        row.HcpIndex,
		PlayingHcp:      row.PlayingHcp,
		LeagueID:        nullToInt64Ptr(row.LeagueID),
		Completed:       row.Completed,
		UpdatedAt:       row.UpdatedAt,
	}
	if err := decodeJSON(row.HoleStrokes, &item.HoleStrokes); err != nil {
		return round.Round{}, fmt.Errorf("round %d hole strokes: %w", row.ID, err)
	}
	return item, nil
}
