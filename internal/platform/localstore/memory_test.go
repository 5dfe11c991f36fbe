package localstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

func (n *note) Key() int64      { return n.ID }
func (n *note) SetKey(id int64) { n.ID = id }

const tableNotes Table = "notes"

func TestMemoryStoreAddGetAll(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Update(ctx, func(tx Tx) error {
		for _, text := range []string{"front nine", "back nine"} {
			n := note{Text: text}
			if _, err := Add(tx, tableNotes, &n); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var notes []note
	require.NoError(t, store.View(ctx, func(tx Tx) error {
		var err error
		notes, err = GetAll[note](tx, tableNotes)
		return err
	}))
	require.Len(t, notes, 2)
	assert.Equal(t, note{ID: 1, Text: "front nine"}, notes[0])
	assert.Equal(t, note{ID: 2, Text: "back nine"}, notes[1])
}

func TestMemoryStoreUpdateRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	errAbort := errors.New("abort")

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		n := note{Text: "kept"}
		_, err := Add(tx, tableNotes, &n)
		return err
	}))

	err := store.Update(ctx, func(tx Tx) error {
		if err := Delete(tx, tableNotes, 1); err != nil {
			return err
		}
		n := note{Text: "discarded"}
		if _, err := Add(tx, tableNotes, &n); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	require.NoError(t, store.View(ctx, func(tx Tx) error {
		got, ok, err := Get[note](tx, tableNotes, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "kept", got.Text)

		_, ok, err = Get[note](tx, tableNotes, 2)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		n := note{Text: "next"}
		id, err := Add(tx, tableNotes, &n)
		assert.Equal(t, int64(2), id)
		return err
	}))
}

func TestMemoryStorePutWithExplicitIDAdvancesSequence(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		n := note{ID: 40, Text: "server authored"}
		if err := Put(tx, tableNotes, &n); err != nil {
			return err
		}
		fresh := note{Text: "local"}
		id, err := Add(tx, tableNotes, &fresh)
		assert.Equal(t, int64(41), id)
		return err
	}))

	err := store.View(ctx, func(tx Tx) error {
		n := note{Text: "nope"}
		return Put(tx, tableNotes, &n)
	})
	require.Error(t, err)
}
