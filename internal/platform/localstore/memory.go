package localstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryState struct {
	tables map[Table]map[int64][]byte
	seq    map[Table]int64
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		tables: make(map[Table]map[int64][]byte, len(s.tables)),
		seq:    make(map[Table]int64, len(s.seq)),
	}
	for table, rows := range s.tables {
		copied := make(map[int64][]byte, len(rows))
		for id, data := range rows {
			copied[id] = data
		}
		out.tables[table] = copied
	}
	for table, v := range s.seq {
		out.seq[table] = v
	}
	return out
}

// MemoryStore keeps everything in process. Update works on a copy that is
// swapped in on success.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		tables: make(map[Table]map[int64][]byte),
		seq:    make(map[Table]int64),
	}}
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memoryTx{state: s.state, readOnly: true})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&memoryTx{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

type memoryTx struct {
	state    memoryState
	readOnly bool
}

func (t *memoryTx) Get(table Table, id int64) ([]byte, bool, error) {
	data, ok := t.state.tables[table][id]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (t *memoryTx) GetAll(table Table) ([]Record, error) {
	rows := t.state.tables[table]
	out := make([]Record, 0, len(rows))
	for id, data := range rows {
		out = append(out, Record{ID: id, Data: append([]byte(nil), data...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) Put(table Table, id int64, data []byte) error {
	if t.readOnly {
		return fmt.Errorf("put %s/%d: read-only transaction", table, id)
	}
	rows, ok := t.state.tables[table]
	if !ok {
		rows = make(map[int64][]byte)
		t.state.tables[table] = rows
	}
	rows[id] = append([]byte(nil), data...)
	if id > t.state.seq[table] {
		t.state.seq[table] = id
	}
	return nil
}

func (t *memoryTx) NextID(table Table) (int64, error) {
	if t.readOnly {
		return 0, fmt.Errorf("next id %s: read-only transaction", table)
	}
	t.state.seq[table]++
	return t.state.seq[table], nil
}

func (t *memoryTx) Delete(table Table, id int64) error {
	if t.readOnly {
		return fmt.Errorf("delete %s/%d: read-only transaction", table, id)
	}
	delete(t.state.tables[table], id)
	return nil
}
