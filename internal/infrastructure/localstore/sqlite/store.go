// Package sqlite is a durable localstore.Store backed by a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sqlx.DB
}

// Open creates the file if needed and applies pragmas and schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) View(ctx context.Context, fn func(tx localstore.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	return fn(&sqliteTx{ctx: ctx, tx: tx})
}

func (s *Store) Update(ctx context.Context, fn func(tx localstore.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&sqliteTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type sqliteTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

type recordRow struct {
	ID   int64  `db:"id"`
	Data []byte `db:"data"`
}

func (t *sqliteTx) Get(table localstore.Table, id int64) ([]byte, bool, error) {
	var data []byte
	err := t.tx.GetContext(t.ctx, &data, `SELECT data FROM records WHERE tbl = ? AND id = ?`, string(table), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", table, id, err)
	}
	return data, true, nil
}

func (t *sqliteTx) GetAll(table localstore.Table) ([]localstore.Record, error) {
	var rows []recordRow
	if err := t.tx.SelectContext(t.ctx, &rows, `SELECT id, data FROM records WHERE tbl = ? ORDER BY id`, string(table)); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	out := make([]localstore.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, localstore.Record{ID: row.ID, Data: row.Data})
	}
	return out, nil
}

func (t *sqliteTx) Put(table localstore.Table, id int64, data []byte) error {
	if _, err := t.tx.ExecContext(t.ctx, `
INSERT INTO records (tbl, id, data) VALUES (?, ?, ?)
ON CONFLICT (tbl, id) DO UPDATE SET data = excluded.data`, string(table), id, data); err != nil {
		return fmt.Errorf("put %s/%d: %w", table, id, err)
	}
	if _, err := t.tx.ExecContext(t.ctx, `
INSERT INTO sequences (tbl, last) VALUES (?, ?)
ON CONFLICT (tbl) DO UPDATE SET last = MAX(last, excluded.last)`, string(table), id); err != nil {
		return fmt.Errorf("bump sequence %s: %w", table, err)
	}
	return nil
}

func (t *sqliteTx) NextID(table localstore.Table) (int64, error) {
	var next int64
	err := t.tx.GetContext(t.ctx, &next, `
INSERT INTO sequences (tbl, last) VALUES (?, 1)
ON CONFLICT (tbl) DO UPDATE SET last = last + 1
RETURNING last`, string(table))
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", table, err)
	}
	return next, nil
}

func (t *sqliteTx) Delete(table localstore.Table, id int64) error {
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM records WHERE tbl = ? AND id = ?`, string(table), id); err != nil {
		return fmt.Errorf("delete %s/%d: %w", table, id, err)
	}
	return nil
}
