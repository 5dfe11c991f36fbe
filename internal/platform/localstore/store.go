// Package localstore is the offline keyed record store. Records are JSON
// documents addressed by (table, id).
package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

type Table string

const (
	TableRounds        Table = "rounds"
	TableMatches       Table = "matches"
	TableCourses       Table = "courses"
	TableSkinsGames    Table = "skins_games"
	TableUsers         Table = "users"
	TableLeagueMatches Table = "league_matches"
)

var ErrNotFound = errors.New("record not found")

type Record struct {
	ID   int64
	Data []byte
}

// Tx is a view of the store inside one transaction.
type Tx interface {
	Get(table Table, id int64) ([]byte, bool, error)
	// GetAll returns records ordered by id.
	GetAll(table Table) ([]Record, error)
	Put(table Table, id int64, data []byte) error
	NextID(table Table) (int64, error)
	Delete(table Table, id int64) error
}

type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	// Update commits when fn returns nil and discards every write otherwise.
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// keyed is satisfied by pointers to record types that carry their own id.
type keyed[T any] interface {
	*T
	Key() int64
	SetKey(id int64)
}

func Get[T any](tx Tx, table Table, id int64) (T, bool, error) {
	var out T
	data, ok, err := tx.Get(table, id)
	if err != nil || !ok {
		return out, ok, err
	}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode %s/%d: %w", table, id, err)
	}
	return out, true, nil
}

func GetAll[T any](tx Tx, table Table) ([]T, error) {
	records, err := tx.GetAll(table)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := sonic.Unmarshal(rec.Data, &item); err != nil {
			return nil, fmt.Errorf("decode %s/%d: %w", table, rec.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Put stores rec under its own key.
func Put[T any, PT keyed[T]](tx Tx, table Table, rec *T) error {
	id := PT(rec).Key()
	if id <= 0 {
		return fmt.Errorf("put %s: record has no id", table)
	}
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%d: %w", table, id, err)
	}
	return tx.Put(table, id, data)
}

// Add assigns the next id to rec, stores it and returns the id.
func Add[T any, PT keyed[T]](tx Tx, table Table, rec *T) (int64, error) {
	id, err := tx.NextID(table)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", table, err)
	}
	PT(rec).SetKey(id)
	if err := Put[T, PT](tx, table, rec); err != nil {
		return 0, err
	}
	return id, nil
}

func Delete(tx Tx, table Table, id int64) error {
	return tx.Delete(table, id)
}
