package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var leagueColumns = []string{"id", "name", "format", "period", "owner_id", "created_at"}

type leagueTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Format    string    `db:"format"`
	Period    string    `db:"period"`
	OwnerID   int64     `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

type leagueInsertModel struct {
	Name    string `db:"name"`
	Format  string `db:"format"`
	Period  string `db:"period"`
	OwnerID int64  `db:"owner_id"`
}

type leagueMemberModel struct {
	LeagueID int64     `db:"league_id"`
	UserID   int64     `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, l league.League) (league.League, error) {
	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		Name:    l.Name,
		Format:  string(l.Format),
		Period:  string(l.Period),
		OwnerID: l.OwnerID,
	}, "RETURNING "+joinColumns(leagueColumns))
	if err != nil {
		return league.League{}, fmt.Errorf("build create league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}
	return leagueFromRow(row), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id int64) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns...).From("leagues").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, m league.Member) error {
	joinedAt := m.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("league_members", leagueMemberModel{
		LeagueID: m.LeagueID,
		UserID:   m.UserID,
		JoinedAt: joinedAt,
	}, "ON CONFLICT (league_id, user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build add league member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}
	return nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID int64) ([]league.Member, error) {
	query, args, err := qb.Select("league_id", "user_id", "joined_at").From("league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.Member{LeagueID: row.LeagueID, UserID: row.UserID, JoinedAt: row.JoinedAt})
	}
	return out, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:        row.ID,
		Name:      row.Name,
		Format:    league.Format(row.Format),
		Period:    league.Period(row.Period),
		OwnerID:   row.OwnerID,
		CreatedAt: row.CreatedAt,
	}
}

type leagueRoundModel struct {
	ID       int64     `db:"id"`
	LeagueID int64     `db:"league_id"`
	RoundID  int64     `db:"round_id"`
	UserID   int64     `db:"user_id"`
	Points   int       `db:"points"`
	PlayedAt time.Time `db:"played_at"`
}

type leagueRoundInsertModel struct {
	LeagueID int64     `db:"league_id"`
	RoundID  int64     `db:"round_id"`
	UserID   int64     `db:"user_id"`
	Points   int       `db:"points"`
	PlayedAt time.Time `db:"played_at"`
}

type LeagueRoundRepository struct {
	db *sqlx.DB
}

func NewLeagueRoundRepository(db *sqlx.DB) *LeagueRoundRepository {
	return &LeagueRoundRepository{db: db}
}

func (r *LeagueRoundRepository) Upsert(ctx context.Context, item league.Round) (league.Round, error) {
	query, args, err := qb.InsertModel("league_rounds", leagueRoundInsertModel{
		LeagueID: item.LeagueID,
		RoundID:  item.RoundID,
		UserID:   item.UserID,
		Points:   item.Points,
		PlayedAt: item.PlayedAt.UTC(),
	}, `ON CONFLICT (league_id, round_id) DO UPDATE
SET points = EXCLUDED.points, user_id = EXCLUDED.user_id, played_at = EXCLUDED.played_at
RETURNING id, league_id, round_id, user_id, points, played_at`)
	if err != nil {
		return league.Round{}, fmt.Errorf("build upsert league round query: %w", err)
	}

	var row leagueRoundModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return league.Round{}, fmt.Errorf("upsert league round: %w", err)
	}
	return league.Round{
		ID:       row.ID,
		LeagueID: row.LeagueID,
		RoundID:  row.RoundID,
		UserID:   row.UserID,
		Points:   row.Points,
		PlayedAt: row.PlayedAt.UTC(),
	}, nil
}

func (r *LeagueRoundRepository) ListByLeague(ctx context.Context, leagueID int64) ([]league.Round, error) {
	query, args, err := qb.Select("id", "league_id", "round_id", "user_id", "points", "played_at").
		From("league_rounds").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league rounds query: %w", err)
	}

	var rows []leagueRoundModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league rounds: %w", err)
	}

	out := make([]league.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.Round{
			ID:       row.ID,
			LeagueID: row.LeagueID,
			RoundID:  row.RoundID,
			UserID:   row.UserID,
			Points:   row.Points,
			PlayedAt: row.PlayedAt.UTC(),
		})
	}
	return out, nil
}
