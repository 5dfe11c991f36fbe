package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
)

type SkinsRepository struct {
	mu     sync.RWMutex
	items  map[int64]skins.Game
	nextID int64
}

func NewSkinsRepository() *SkinsRepository {
	return &SkinsRepository{items: make(map[int64]skins.Game)}
}

func (r *SkinsRepository) FindByNaturalKey(_ context.Context, userID, courseID int64, playedAt time.Time) (skins.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at := round.NaturalTime(playedAt)
	for _, item := range r.items {
		if item.UserID == userID && item.CourseID == courseID && round.NaturalTime(item.PlayedAt).Equal(at) {
			return cloneGame(item), true, nil
		}
	}
	return skins.Game{}, false, nil
}

func (r *SkinsRepository) Create(_ context.Context, g skins.Game) (skins.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	g.ID = r.nextID
	g.PlayedAt = round.NaturalTime(g.PlayedAt)
	g.UpdatedAt = time.Now().UTC()
	r.items[g.ID] = cloneGame(g)
	return cloneGame(g), nil
}

func (r *SkinsRepository) Update(_ context.Context, g skins.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[g.ID]; !ok {
		return fmt.Errorf("update skins game: id %d not found", g.ID)
	}
	g.PlayedAt = round.NaturalTime(g.PlayedAt)
	g.UpdatedAt = time.Now().UTC()
	r.items[g.ID] = cloneGame(g)
	return nil
}

func (r *SkinsRepository) ListByUser(_ context.Context, userID int64) ([]skins.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]skins.Game, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, cloneGame(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func cloneGame(g skins.Game) skins.Game {
	copied := g
	copied.Players = append([]string(nil), g.Players...)
	copied.Results = append([]skins.HoleSkin(nil), g.Results...)
	copied.Scores = make(map[string]map[int]int, len(g.Scores))
	for name, holes := range g.Scores {
		copied.Scores[name] = maps.Clone(holes)
	}
	return copied
}
