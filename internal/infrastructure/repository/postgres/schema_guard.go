package postgres

import (
	"context"
	"fmt"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

const (
	pqUndefinedColumn = "42703"
	pqUndefinedTable  = "42P01"
	pqDuplicateColumn = "42701"
	pqDuplicateTable  = "42P07"
	pqDuplicateObject = "42710"
	pqUniqueViolation = "23505"
)

// ColumnSpec is a column added after the first schema revision. CreateTable,
// when set, is run first if the whole table is missing.
type ColumnSpec struct {
	Table       string
	Column      string
	DDL         string
	CreateTable string
}

var OptionalColumns = []ColumnSpec{
	{Table: "rounds", Column: "league_id", DDL: `ALTER TABLE rounds ADD COLUMN IF NOT EXISTS league_id BIGINT`},
	{Table: "rounds", Column: "tee_id", DDL: `ALTER TABLE rounds ADD COLUMN IF NOT EXISTS tee_id TEXT`},
	{Table: "matches", Column: "tee_id", DDL: `ALTER TABLE matches ADD COLUMN IF NOT EXISTS tee_id TEXT`},
	{Table: "matches", Column: "league_match_id", DDL: `ALTER TABLE matches ADD COLUMN IF NOT EXISTS league_match_id BIGINT`},
	{Table: "matches", Column: "count_for_handicap", DDL: `ALTER TABLE matches ADD COLUMN IF NOT EXISTS count_for_handicap BOOLEAN NOT NULL DEFAULT FALSE`},
	{Table: "matches", Column: "player1_differential", DDL: `ALTER TABLE matches ADD COLUMN IF NOT EXISTS player1_differential DOUBLE PRECISION`},
	{Table: "matches", Column: "player2_differential", DDL: `ALTER TABLE matches ADD COLUMN IF NOT EXISTS player2_differential DOUBLE PRECISION`},
	{
		Table:  "league_matches",
		Column: "linked_match_id",
		DDL:    `ALTER TABLE league_matches ADD COLUMN IF NOT EXISTS linked_match_id BIGINT`,
		CreateTable: `CREATE TABLE IF NOT EXISTS league_matches (
    id            BIGSERIAL PRIMARY KEY,
    league_id     BIGINT      NOT NULL,
    round_number  INTEGER     NOT NULL,
    match_number  INTEGER     NOT NULL,
    player1_id    BIGINT,
    player2_id    BIGINT,
    winner_id     BIGINT,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (league_id, round_number, match_number)
)`,
	},
	{Table: "users", Column: "is_placeholder", DDL: `ALTER TABLE users ADD COLUMN IF NOT EXISTS is_placeholder BOOLEAN NOT NULL DEFAULT FALSE`},
}

// SchemaGuard repairs schema drift by probing optional columns and adding the
// missing ones. EnsureSchema runs the full pass once per process; a failed
// pass is retried by the next caller.
type SchemaGuard struct {
	db      *sqlx.DB
	logger  *logging.Logger
	columns []ColumnSpec

	mu      sync.Mutex
	ensured bool
}

func NewSchemaGuard(db *sqlx.DB, logger *logging.Logger) *SchemaGuard {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchemaGuard{db: db, logger: logger, columns: OptionalColumns}
}

func (g *SchemaGuard) EnsureSchema(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ensured {
		return nil
	}
	for _, spec := range g.columns {
		if err := g.EnsureColumn(ctx, spec); err != nil {
			return err
		}
	}
	g.ensured = true
	return nil
}

// EnsureColumn probes table.column and runs the spec DDL when the probe
// reports the column or table missing.
func (g *SchemaGuard) EnsureColumn(ctx context.Context, spec ColumnSpec) error {
	probe := fmt.Sprintf("SELECT %s FROM %s LIMIT 1", pq.QuoteIdentifier(spec.Column), pq.QuoteIdentifier(spec.Table))
	rows, err := g.db.QueryContext(ctx, probe)
	if err == nil {
		return rows.Close()
	}

	code, missing := missingRelationCode(err)
	if !missing {
		return crerr.Wrapf(err, "probe %s.%s", spec.Table, spec.Column)
	}
	g.logger.WarnContext(ctx, "schema drift detected, repairing",
		"table", spec.Table,
		"column", spec.Column,
		"pq_code", code,
	)

	if code == pqUndefinedTable && spec.CreateTable != "" {
		if err := g.exec(ctx, spec.CreateTable); err != nil {
			return crerr.Wrapf(err, "create table %s", spec.Table)
		}
	}
	if err := g.exec(ctx, spec.DDL); err != nil {
		return crerr.Wrapf(err, "add column %s.%s", spec.Table, spec.Column)
	}
	return nil
}

// EnsureUserExists inserts a placeholder user for a dangling id and moves the
// id sequence past it.
func (g *SchemaGuard) EnsureUserExists(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}

	placeholder := user.Placeholder(id)
	query, args, err := qb.InsertInto("users").
		Columns("id", "name", "handicap", "is_placeholder").
		Values(placeholder.ID, placeholder.Name, placeholder.Handicap, true).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build restore user query: %w", err)
	}

	result, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return crerr.Wrapf(err, "restore user %d", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected restore user: %w", err)
	}
	if affected == 0 {
		return nil
	}

	g.logger.WarnContext(ctx, "restored missing user as placeholder", "user_id", id)
	const bumpSequence = `SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`
	if _, err := g.db.ExecContext(ctx, bumpSequence); err != nil {
		return crerr.Wrap(err, "advance users id sequence")
	}
	return nil
}

func (g *SchemaGuard) exec(ctx context.Context, ddl string) error {
	if _, err := g.db.ExecContext(ctx, ddl); err != nil {
		if isDuplicateObject(err) {
			return nil
		}
		return err
	}
	return nil
}

func missingRelationCode(err error) (string, bool) {
	var pqErr *pq.Error
	if !crerr.As(err, &pqErr) {
		return "", false
	}
	switch string(pqErr.Code) {
	case pqUndefinedColumn, pqUndefinedTable:
		return string(pqErr.Code), true
	default:
		return "", false
	}
}

// isDuplicateObject matches the errors raised when a concurrent repair won.
func isDuplicateObject(err error) bool {
	var pqErr *pq.Error
	if !crerr.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqDuplicateColumn, pqDuplicateTable, pqDuplicateObject, pqUniqueViolation:
		return true
	default:
		return false
	}
}
