package skins

import (
	"context"
	"sort"
	"time"
)

type HoleSkin struct {
	Hole   int    `json:"hole"`
	Winner string `json:"winner,omitempty"`
	Skins  int    `json:"skins"`
}

// Game is a skins game scored by one user for a group of named players.
type Game struct {
	ID        int64                  `json:"id"`
	ServerID  *int64                 `json:"serverId,omitempty"`
	Synced    bool                   `json:"synced"`
	UserID    int64                  `json:"userId"`
	CourseID  int64                  `json:"courseId"`
	PlayedAt  time.Time              `json:"playedAt"`
	Players   []string               `json:"players"`
	Scores    map[string]map[int]int `json:"scores"`
	SkinValue float64                `json:"skinValue"`
	Results   []HoleSkin             `json:"results,omitempty"`
	Completed bool                   `json:"completed"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (g *Game) Key() int64 {
	return g.ID
}

func (g *Game) SetKey(id int64) {
	g.ID = id
}

// Tally awards one skin per hole to an outright low score. Tied holes carry
// their skins to the next hole; skins still carried after the last hole are
// left unawarded.
func Tally(players []string, scores map[string]map[int]int, holes int) ([]HoleSkin, map[string]int) {
	results := make([]HoleSkin, 0, holes)
	totals := make(map[string]int, len(players))
	for _, p := range players {
		totals[p] = 0
	}

	carry := 0
	for hole := 1; hole <= holes; hole++ {
		carry++

		best := 0
		winners := make([]string, 0, 1)
		complete := true
		for _, p := range players {
			strokes := scores[p][hole]
			if strokes <= 0 {
				complete = false
				break
			}
			switch {
			case len(winners) == 0 || strokes < best:
				best = strokes
				winners = winners[:0]
				winners = append(winners, p)
			case strokes == best:
				winners = append(winners, p)
			}
		}
		if !complete {
			carry--
			break
		}

		if len(winners) == 1 {
			results = append(results, HoleSkin{Hole: hole, Winner: winners[0], Skins: carry})
			totals[winners[0]] += carry
			carry = 0
			continue
		}
		results = append(results, HoleSkin{Hole: hole})
	}

	return results, totals
}

// Standings orders players by skins won, then by name.
func Standings(totals map[string]int) []string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

type Repository interface {
	FindByNaturalKey(ctx context.Context, userID, courseID int64, playedAt time.Time) (Game, bool, error)
	Create(ctx context.Context, g Game) (Game, error)
	Update(ctx context.Context, g Game) error
	ListByUser(ctx context.Context, userID int64) ([]Game, error)
}
