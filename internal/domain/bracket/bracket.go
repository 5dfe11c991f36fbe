// Package bracket builds and advances single-elimination brackets.
package bracket

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/league"
)

var (
	ErrNotEnoughPlayers = errors.New("a bracket needs at least two players")
	ErrMatchNotFound    = errors.New("bracket match not found")
	ErrInvalidWinner    = errors.New("winner is not a player in this match")
	ErrUnresolvedTie    = errors.New("tied tournament match needs a playoff winner")
)

// Repository is the node storage a bracket needs. Implementations are handed
// to Engine through Store.Atomically.
type Repository interface {
	GetMatch(ctx context.Context, id int64) (league.Match, bool, error)
	FindMatch(ctx context.Context, leagueID int64, roundNumber, matchNumber int) (league.Match, bool, error)
	SaveMatch(ctx context.Context, m league.Match) error
	CreateMatches(ctx context.Context, matches []league.Match) ([]league.Match, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]league.Match, error)
}

type Store interface {
	// Atomically runs fn in a single transaction.
	Atomically(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// Slot is the next-round position a winner moves into.
type Slot struct {
	RoundNumber int
	MatchNumber int
	Player1     bool
}

// NextSlot reports where the winner of m goes. ok is false for sudden-death
// matches.
func NextSlot(m league.Match) (Slot, bool) {
	if m.RoundNumber >= league.SuddenDeathRound {
		return Slot{}, false
	}
	return Slot{
		RoundNumber: m.RoundNumber + 1,
		MatchNumber: (m.MatchNumber + 1) / 2,
		Player1:     m.MatchNumber%2 == 1,
	}, true
}

// Seed shuffles players into round one, pads with randomly placed byes up to
// the next power of two and creates every later round as empty nodes. Bye
// winners are already placed in round two.
func Seed(leagueID int64, players []int64, rng *rand.Rand) ([]league.Match, error) {
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	shuffled := append([]int64(nil), players...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	size := 1
	for size < len(shuffled) {
		size *= 2
	}
	firstRound := size / 2
	byes := size - len(shuffled)

	byeMatches := make(map[int]struct{}, byes)
	for _, idx := range rng.Perm(firstRound)[:byes] {
		byeMatches[idx+1] = struct{}{}
	}

	nodes := make([]league.Match, 0, size-1)
	next := 0
	take := func() *int64 {
		id := shuffled[next]
		next++
		return &id
	}

	for number := 1; number <= firstRound; number++ {
		node := league.Match{LeagueID: leagueID, RoundNumber: 1, MatchNumber: number}
		node.Player1ID = take()
		if _, bye := byeMatches[number]; bye {
			winner := *node.Player1ID
			node.WinnerID = &winner
		} else {
			node.Player2ID = take()
		}
		nodes = append(nodes, node)
	}

	round := 2
	for count := firstRound / 2; count >= 1; count /= 2 {
		for number := 1; number <= count; number++ {
			nodes = append(nodes, league.Match{LeagueID: leagueID, RoundNumber: round, MatchNumber: number})
		}
		round++
	}

	for _, node := range nodes[:firstRound] {
		if node.WinnerID == nil {
			continue
		}
		slot, _ := NextSlot(node)
		for i := range nodes {
			if nodes[i].RoundNumber == slot.RoundNumber && nodes[i].MatchNumber == slot.MatchNumber {
				place(&nodes[i], slot, *node.WinnerID)
				break
			}
		}
	}

	return nodes, nil
}

// Rounds is the number of rounds for a bracket of n players.
func Rounds(n int) int {
	rounds := 0
	for size := 1; size < n; size *= 2 {
		rounds++
	}
	return rounds
}

func place(node *league.Match, slot Slot, winnerID int64) {
	id := winnerID
	if slot.Player1 {
		node.Player1ID = &id
		return
	}
	node.Player2ID = &id
}

type AdvanceResult struct {
	Match    league.Match  `json:"match"`
	Next     *league.Match `json:"next,omitempty"`
	Finished bool          `json:"finished"`
}

// Engine applies seeding and advancement through a Store.
type Engine struct {
	store Store
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine(store Store, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &Engine{store: store, now: time.Now, rng: rng}
}

// Create seeds and persists a whole bracket.
func (e *Engine) Create(ctx context.Context, leagueID int64, players []int64) ([]league.Match, error) {
	e.mu.Lock()
	nodes, err := Seed(leagueID, players, e.rng)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	for i := range nodes {
		nodes[i].UpdatedAt = now
	}

	var created []league.Match
	err = e.store.Atomically(ctx, func(ctx context.Context, repo Repository) error {
		out, err := repo.CreateMatches(ctx, nodes)
		if err != nil {
			return fmt.Errorf("create bracket matches: %w", err)
		}
		created = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Advance records winnerID on the node and copies it into the next round.
// A missing next node means the final was played. Two siblings writing the
// same slot concurrently resolve as last write wins.
func (e *Engine) Advance(ctx context.Context, leagueMatchID, winnerID int64, linkedMatchID *int64) (AdvanceResult, error) {
	var result AdvanceResult
	err := e.store.Atomically(ctx, func(ctx context.Context, repo Repository) error {
		node, found, err := repo.GetMatch(ctx, leagueMatchID)
		if err != nil {
			return fmt.Errorf("get bracket match: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: id=%d", ErrMatchNotFound, leagueMatchID)
		}
		if (node.Player1ID != nil || node.Player2ID != nil) && !node.HasPlayer(winnerID) {
			return fmt.Errorf("%w: match=%d winner=%d", ErrInvalidWinner, leagueMatchID, winnerID)
		}

		now := e.now().UTC()
		winner := winnerID
		node.WinnerID = &winner
		if linkedMatchID != nil {
			linked := *linkedMatchID
			node.LinkedMatchID = &linked
		}
		node.UpdatedAt = now
		if err := repo.SaveMatch(ctx, node); err != nil {
			return fmt.Errorf("save bracket match: %w", err)
		}
		result.Match = node

		slot, ok := NextSlot(node)
		if !ok {
			return nil
		}
		next, found, err := repo.FindMatch(ctx, node.LeagueID, slot.RoundNumber, slot.MatchNumber)
		if err != nil {
			return fmt.Errorf("find next bracket match: %w", err)
		}
		if !found {
			result.Finished = true
			return nil
		}

		place(&next, slot, winnerID)
		next.UpdatedAt = now
		if err := repo.SaveMatch(ctx, next); err != nil {
			return fmt.Errorf("save next bracket match: %w", err)
		}
		result.Next = &next
		return nil
	})
	if err != nil {
		return AdvanceResult{}, err
	}
	return result, nil
}

// List returns the league's nodes ordered by round and match number.
func (e *Engine) List(ctx context.Context, leagueID int64) ([]league.Match, error) {
	var out []league.Match
	err := e.store.Atomically(ctx, func(ctx context.Context, repo Repository) error {
		items, err := repo.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		out = items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bracket matches: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}
