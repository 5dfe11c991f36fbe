package offline

import (
	"context"
	"sort"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
)

// BracketStore keeps bracket nodes in the local league_matches table so the
// bracket can be viewed and advanced while offline. Pulls overwrite nodes
// with the server's copy.
type BracketStore struct {
	store localstore.Store
}

func NewBracketStore(store localstore.Store) *BracketStore {
	return &BracketStore{store: store}
}

func (s *BracketStore) Atomically(ctx context.Context, fn func(ctx context.Context, repo bracket.Repository) error) error {
	return s.store.Update(ctx, func(tx localstore.Tx) error {
		return fn(ctx, bracketTx{tx: tx})
	})
}

type bracketTx struct {
	tx localstore.Tx
}

func (b bracketTx) GetMatch(_ context.Context, id int64) (league.Match, bool, error) {
	return localstore.Get[league.Match](b.tx, localstore.TableLeagueMatches, id)
}

func (b bracketTx) FindMatch(_ context.Context, leagueID int64, roundNumber, matchNumber int) (league.Match, bool, error) {
	nodes, err := b.byLeague(leagueID)
	if err != nil {
		return league.Match{}, false, err
	}
	for _, n := range nodes {
		if n.RoundNumber == roundNumber && n.MatchNumber == matchNumber {
			return n, true, nil
		}
	}
	return league.Match{}, false, nil
}

func (b bracketTx) SaveMatch(_ context.Context, m league.Match) error {
	return localstore.Put(b.tx, localstore.TableLeagueMatches, &m)
}

func (b bracketTx) CreateMatches(_ context.Context, matches []league.Match) ([]league.Match, error) {
	out := make([]league.Match, 0, len(matches))
	for _, m := range matches {
		if _, err := localstore.Add(b.tx, localstore.TableLeagueMatches, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (b bracketTx) ListByLeague(_ context.Context, leagueID int64) ([]league.Match, error) {
	return b.byLeague(leagueID)
}

func (b bracketTx) byLeague(leagueID int64) ([]league.Match, error) {
	all, err := localstore.GetAll[league.Match](b.tx, localstore.TableLeagueMatches)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, m := range all {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}
