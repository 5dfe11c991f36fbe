package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/round"
)

type RoundRepository struct {
	mu     sync.RWMutex
	items  map[int64]round.Round
	nextID int64
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{items: make(map[int64]round.Round)}
}

func (r *RoundRepository) FindByNaturalKey(_ context.Context, userID, courseID int64, playedAt time.Time) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at := round.NaturalTime(playedAt)
	for _, item := range r.items {
		if item.UserID == userID && item.CourseID == courseID && round.NaturalTime(item.PlayedAt).Equal(at) {
			return cloneRound(item), true, nil
		}
	}
	return round.Round{}, false, nil
}

func (r *RoundRepository) Create(_ context.Context, item round.Round) (round.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	item.PlayedAt = round.NaturalTime(item.PlayedAt)
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = cloneRound(item)
	return cloneRound(item), nil
}

func (r *RoundRepository) Update(_ context.Context, item round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("update round: id %d not found", item.ID)
	}
	item.PlayedAt = round.NaturalTime(item.PlayedAt)
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = cloneRound(item)
	return nil
}

func (r *RoundRepository) ListByUser(_ context.Context, userID int64) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, cloneRound(item))
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

func cloneRound(r round.Round) round.Round {
	copied := r
	copied.HoleStrokes = maps.Clone(r.HoleStrokes)
	return copied
}
