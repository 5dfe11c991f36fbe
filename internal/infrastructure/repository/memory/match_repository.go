package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
)

type MatchRepository struct {
	mu     sync.RWMutex
	items  map[int64]match.Match
	nextID int64
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[int64]match.Match)}
}

func (r *MatchRepository) FindByNaturalKey(_ context.Context, player1ID, player2ID, courseID int64, playedAt time.Time) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at := round.NaturalTime(playedAt)
	for _, item := range r.items {
		if item.Player1.ID == player1ID && item.Player2.ID == player2ID &&
			item.CourseID == courseID && round.NaturalTime(item.PlayedAt).Equal(at) {
			return cloneMatch(item), true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	item.PlayedAt = round.NaturalTime(item.PlayedAt)
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = cloneMatch(item)
	return cloneMatch(item), nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("update match: id %d not found", item.ID)
	}
	item.PlayedAt = round.NaturalTime(item.PlayedAt)
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = cloneMatch(item)
	return nil
}

func (r *MatchRepository) ListByPlayer(_ context.Context, userID int64) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.Player1.ID == userID || item.Player2.ID == userID {
			out = append(out, cloneMatch(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.After(out[j].PlayedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	copied.Holes = maps.Clone(m.Holes)
	return copied
}
