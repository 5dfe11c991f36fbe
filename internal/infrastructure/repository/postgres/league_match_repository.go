package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var leagueMatchColumns = []string{
	"id", "league_id", "round_number", "match_number", "player1_id", "player2_id", "winner_id", "linked_match_id", "updated_at",
}

type leagueMatchTableModel struct {
	ID            int64         `db:"id"`
	LeagueID      int64         `db:"league_id"`
	RoundNumber   int           `db:"round_number"`
	MatchNumber   int           `db:"match_number"`
	Player1ID     sql.NullInt64 `db:"player1_id"`
	Player2ID     sql.NullInt64 `db:"player2_id"`
	WinnerID      sql.NullInt64 `db:"winner_id"`
	LinkedMatchID sql.NullInt64 `db:"linked_match_id"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

type leagueMatchUpdateModel struct {
	Player1ID     sql.NullInt64 `db:"player1_id"`
	Player2ID     sql.NullInt64 `db:"player2_id"`
	WinnerID      sql.NullInt64 `db:"winner_id"`
	LinkedMatchID sql.NullInt64 `db:"linked_match_id"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// LeagueMatchRepository stores bracket nodes. Atomically wraps a bracket
// operation in one database transaction.
type LeagueMatchRepository struct {
	db *sqlx.DB
}

func NewLeagueMatchRepository(db *sqlx.DB) *LeagueMatchRepository {
	return &LeagueMatchRepository{db: db}
}

func (r *LeagueMatchRepository) Atomically(ctx context.Context, fn func(ctx context.Context, repo bracket.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx league matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, leagueMatchQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit league matches tx: %w", err)
	}
	return nil
}

func (r *LeagueMatchRepository) ListByLeague(ctx context.Context, leagueID int64) ([]league.Match, error) {
	return leagueMatchQueries{q: r.db}.ListByLeague(ctx, leagueID)
}

func (r *LeagueMatchRepository) ListByPlayer(ctx context.Context, userID int64) ([]league.Match, error) {
	query, args, err := qb.Select(leagueMatchColumns...).From("league_matches").
		Where(qb.Expr("(player1_id = ? OR player2_id = ?)", userID, userID)).
		OrderBy("league_id", "round_number", "match_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league matches by player query: %w", err)
	}
	return leagueMatchQueries{q: r.db}.selectMany(ctx, query, args)
}

type leagueMatchQueries struct {
	q sqlx.ExtContext
}

func (l leagueMatchQueries) GetMatch(ctx context.Context, id int64) (league.Match, bool, error) {
	query, args, err := qb.Select(leagueMatchColumns...).From("league_matches").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return league.Match{}, false, fmt.Errorf("build get league match query: %w", err)
	}
	return l.selectOne(ctx, query, args)
}

func (l leagueMatchQueries) FindMatch(ctx context.Context, leagueID int64, roundNumber, matchNumber int) (league.Match, bool, error) {
	query, args, err := qb.Select(leagueMatchColumns...).From("league_matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("round_number", roundNumber),
			qb.Eq("match_number", matchNumber),
		).
		ToSQL()
	if err != nil {
		return league.Match{}, false, fmt.Errorf("build find league match query: %w", err)
	}
	return l.selectOne(ctx, query, args)
}

func (l leagueMatchQueries) SaveMatch(ctx context.Context, m league.Match) error {
	query, args, err := qb.UpdateModel("league_matches", leagueMatchUpdateModel{
		Player1ID:     int64PtrToNull(m.Player1ID),
		Player2ID:     int64PtrToNull(m.Player2ID),
		WinnerID:      int64PtrToNull(m.WinnerID),
		LinkedMatchID: int64PtrToNull(m.LinkedMatchID),
		UpdatedAt:     m.UpdatedAt,
	}, nil, qb.Eq("id", m.ID))
	if err != nil {
		return fmt.Errorf("build save league match query: %w", err)
	}

	result, err := l.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save league match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected save league match: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("save league match: id %d not found", m.ID)
	}
	return nil
}

func (l leagueMatchQueries) CreateMatches(ctx context.Context, matches []league.Match) ([]league.Match, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	builder := qb.InsertInto("league_matches").Columns(
		"league_id", "round_number", "match_number", "player1_id", "player2_id", "winner_id", "linked_match_id", "updated_at",
	)
	for _, m := range matches {
		builder.Values(
			m.LeagueID, m.RoundNumber, m.MatchNumber,
			int64PtrToNull(m.Player1ID), int64PtrToNull(m.Player2ID), int64PtrToNull(m.WinnerID),
			int64PtrToNull(m.LinkedMatchID), m.UpdatedAt,
		)
	}
	query, args, err := builder.Suffix("RETURNING " + joinColumns(leagueMatchColumns)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build create league matches query: %w", err)
	}
	return l.selectMany(ctx, query, args)
}

func (l leagueMatchQueries) ListByLeague(ctx context.Context, leagueID int64) ([]league.Match, error) {
	query, args, err := qb.Select(leagueMatchColumns...).From("league_matches").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("round_number", "match_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league matches query: %w", err)
	}
	return l.selectMany(ctx, query, args)
}

func (l leagueMatchQueries) selectOne(ctx context.Context, query string, args []any) (league.Match, bool, error) {
	var row leagueMatchTableModel
	if err := sqlx.GetContext(ctx, l.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Match{}, false, nil
		}
		return league.Match{}, false, fmt.Errorf("get league match: %w", err)
	}
	return leagueMatchFromRow(row), true, nil
}

func (l leagueMatchQueries) selectMany(ctx context.Context, query string, args []any) ([]league.Match, error) {
	var rows []leagueMatchTableModel
	if err := sqlx.SelectContext(ctx, l.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league matches: %w", err)
	}

	out := make([]league.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueMatchFromRow(row))
	}
	return out, nil
}

func leagueMatchFromRow(row leagueMatchTableModel) league.Match {
	return league.Match{
		ID:            row.ID,
		LeagueID:      row.LeagueID,
		RoundNumber:   row.RoundNumber,
		MatchNumber:   row.MatchNumber,
		Player1ID:     nullToInt64Ptr(row.Player1ID),
		Player2ID:     nullToInt64Ptr(row.Player2ID),
		WinnerID:      nullToInt64Ptr(row.WinnerID),
		LinkedMatchID: nullToInt64Ptr(row.LinkedMatchID),
		UpdatedAt:     row.UpdatedAt,
	}
}
