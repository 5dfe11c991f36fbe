package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/league"
)

// LeagueMatchRepository holds bracket nodes. Atomically serialises callers
// and rolls back every write made by a failed fn.
type LeagueMatchRepository struct {
	mu     sync.RWMutex
	items  map[int64]league.Match
	nextID int64
}

func NewLeagueMatchRepository() *LeagueMatchRepository {
	return &LeagueMatchRepository{items: make(map[int64]league.Match)}
}

func (r *LeagueMatchRepository) Atomically(ctx context.Context, fn func(ctx context.Context, repo bracket.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &leagueMatchTx{items: make(map[int64]league.Match, len(r.items)), nextID: r.nextID}
	for id, m := range r.items {
		tx.items[id] = m
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.items = tx.items
	r.nextID = tx.nextID
	return nil
}

func (r *LeagueMatchRepository) ListByLeague(_ context.Context, leagueID int64) ([]league.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return listLeagueMatches(r.items, func(m league.Match) bool { return m.LeagueID == leagueID }), nil
}

func (r *LeagueMatchRepository) ListByPlayer(_ context.Context, userID int64) ([]league.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return listLeagueMatches(r.items, func(m league.Match) bool { return m.HasPlayer(userID) }), nil
}

type leagueMatchTx struct {
	items  map[int64]league.Match
	nextID int64
}

func (t *leagueMatchTx) GetMatch(_ context.Context, id int64) (league.Match, bool, error) {
	m, ok := t.items[id]
	return m, ok, nil
}

func (t *leagueMatchTx) FindMatch(_ context.Context, leagueID int64, roundNumber, matchNumber int) (league.Match, bool, error) {
	for _, m := range t.items {
		if m.LeagueID == leagueID && m.RoundNumber == roundNumber && m.MatchNumber == matchNumber {
			return m, true, nil
		}
	}
	return league.Match{}, false, nil
}

func (t *leagueMatchTx) SaveMatch(_ context.Context, m league.Match) error {
	if _, ok := t.items[m.ID]; !ok {
		return fmt.Errorf("save league match: id %d not found", m.ID)
	}
	t.items[m.ID] = m
	return nil
}

func (t *leagueMatchTx) CreateMatches(_ context.Context, matches []league.Match) ([]league.Match, error) {
	out := make([]league.Match, 0, len(matches))
	for _, m := range matches {
		t.nextID++
		m.ID = t.nextID
		t.items[m.ID] = m
		out = append(out, m)
	}
	return out, nil
}

func (t *leagueMatchTx) ListByLeague(_ context.Context, leagueID int64) ([]league.Match, error) {
	return listLeagueMatches(t.items, func(m league.Match) bool { return m.LeagueID == leagueID }), nil
}

func listLeagueMatches(items map[int64]league.Match, keep func(league.Match) bool) []league.Match {
	out := make([]league.Match, 0)
	for _, m := range items {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
