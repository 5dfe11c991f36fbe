package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var matchColumns = []string{
	"id", "player1_id", "player1_name", "player1_hcp", "player2_id", "player2_name", "player2_hcp",
	"course_id", "tee_id", "played_at", "holes", "status", "winner_id", "completed", "league_match_id",
	"count_for_handicap", "player1_differential", "player2_differential", "updated_at",
}

type matchTableModel struct {
	ID                  int64           `db:"id"`
	Player1ID           int64           `db:"player1_id"`
	Player1Name         string          `db:"player1_name"`
	Player1Hcp          int             `db:"player1_hcp"`
	Player2ID           int64           `db:"player2_id"`
	Player2Name         string          `db:"player2_name"`
	Player2Hcp          int             `db:"player2_hcp"`
	CourseID            int64           `db:"course_id"`
	TeeID               sql.NullString  `db:"tee_id"`
	PlayedAt            time.Time       `db:"played_at"`
	Holes               string          `db:"holes"`
	Status              string          `db:"status"`
	WinnerID            sql.NullInt64   `db:"winner_id"`
	Completed           bool            `db:"completed"`
	LeagueMatchID       sql.NullInt64   `db:"league_match_id"`
	CountForHandicap    bool            `db:"count_for_handicap"`
	Player1Differential sql.NullFloat64 `db:"player1_differential"`
	Player2Differential sql.NullFloat64 `db:"player2_differential"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

type matchWriteModel struct {
	Player1ID           int64           `db:"player1_id"`
	Player1Name         string          `db:"player1_name"`
	Player1Hcp          int             `db:"player1_hcp"`
	Player2ID           int64           `db:"player2_id"`
	Player2Name         string          `db:"player2_name"`
	Player2Hcp          int             `db:"player2_hcp"`
	CourseID            int64           `db:"course_id"`
	TeeID               sql.NullString  `db:"tee_id"`
	PlayedAt            time.Time       `db:"played_at"`
	Holes               string          `db:"holes"`
	Status              string          `db:"status"`
	WinnerID            sql.NullInt64   `db:"winner_id"`
	Completed           bool            `db:"completed"`
	LeagueMatchID       sql.NullInt64   `db:"league_match_id"`
	CountForHandicap    bool            `db:"count_for_handicap"`
	Player1Differential sql.NullFloat64 `db:"player1_differential"`
	Player2Differential sql.NullFloat64 `db:"player2_differential"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) FindByNaturalKey(ctx context.Context, player1ID, player2ID, courseID int64, playedAt time.Time) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(
			qb.Eq("player1_id", player1ID),
			qb.Eq("player2_id", player2ID),
			qb.Eq("course_id", courseID),
			qb.Eq("played_at", round.NaturalTime(playedAt)),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build find match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("find match by natural key: %w", err)
	}
	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	model, err := matchToWriteModel(item)
	if err != nil {
		return match.Match{}, err
	}
	query, args, err := qb.InsertModel("matches", model, "RETURNING "+joinColumns(matchColumns))
	if err != nil {
		return match.Match{}, fmt.Errorf("build create match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return matchFromRow(row)
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	model, err := matchToWriteModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.UpdateModel("matches", model, nil, qb.Eq("id", item.ID))
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return nil
}

func (r *MatchRepository) ListByPlayer(ctx context.Context, userID int64) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(qb.Expr("(player1_id = ? OR player2_id = ?)", userID, userID)).
		OrderBy("played_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func matchToWriteModel(item match.Match) (matchWriteModel, error) {
	holes, err := encodeJSON(item.Holes)
	if err != nil {
		return matchWriteModel{}, err
	}
	return matchWriteModel{
		Player1ID:           item.Player1.ID,
		Player1Name:         item.Player1.Name,
		Player1Hcp:          item.Player1.PlayingHcp,
		Player2ID:           item.Player2.ID,
		Player2Name:         item.Player2.Name,
		Player2Hcp:          item.Player2.PlayingHcp,
		CourseID:            item.CourseID,
		TeeID:               stringToNull(item.TeeID),
		PlayedAt:            round.NaturalTime(item.PlayedAt),
		Holes:               holes,
		Status:              item.Status,
		WinnerID:            int64PtrToNull(item.WinnerID),
		Completed:           item.Completed,
		LeagueMatchID:       int64PtrToNull(item.LeagueMatchID),
		CountForHandicap:    item.CountForHandicap,
		Player1Differential: float64PtrToNull(item.Player1Differential),
		Player2Differential: float64PtrToNull(item.Player2Differential),
		UpdatedAt:           time.Now().UTC(),
	}, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	item := match.Match{
		ID:                  row.ID,
		Player1:             match.Player{ID: row.Player1ID, Name: row.Player1Name, PlayingHcp: row.Player1Hcp},
		Player2:             match.Player{ID: row.Player2ID, Name: row.Player2Name, PlayingHcp: row.Player2Hcp},
		CourseID:            row.CourseID,
		TeeID:               row.TeeID.String,
		PlayedAt:            row.PlayedAt.UTC(),
		Status:              row.Status,
		WinnerID:            nullToInt64Ptr(row.WinnerID),
		Completed:           row.Completed,
		LeagueMatchID:       nullToInt64Ptr(row.LeagueMatchID),
		CountForHandicap:    row.CountForHandicap,
		Player1Differential: nullToFloat64Ptr(row.Player1Differential),
		Player2Differential: nullToFloat64Ptr(row.Player2Differential),
		UpdatedAt:           row.UpdatedAt,
	}
	if err := decodeJSON(row.Holes, &item.Holes); err != nil {
		return match.Match{}, fmt.Errorf("match %d holes: %w", row.ID, err)
	}
	return item, nil
}
