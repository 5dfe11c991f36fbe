package offline

import (
	"context"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/handicap"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
)

type HandicapSummary struct {
	Index  float64 `json:"index"`
	Delta  float64 `json:"delta"`
	Rounds int     `json:"rounds"`
}

// Handicap computes a user's index and its change since the previous round
// from the local store.
func Handicap(ctx context.Context, store localstore.Store, userID int64) (HandicapSummary, error) {
	var out HandicapSummary
	err := store.View(ctx, func(tx localstore.Tx) error {
		var err error
		out, err = handicapFor(tx, userID)
		return err
	})
	return out, err
}

func handicapFor(tx localstore.Tx, userID int64) (HandicapSummary, error) {
	rounds, err := localstore.GetAll[round.Round](tx, localstore.TableRounds)
	if err != nil {
		return HandicapSummary{}, err
	}
	courses, err := localstore.GetAll[course.Course](tx, localstore.TableCourses)
	if err != nil {
		return HandicapSummary{}, err
	}
	byID := courseIndex(courses)

	own := make([]round.Round, 0, len(rounds))
	for _, r := range rounds {
		if r.UserID != userID || !r.Completed {
			continue
		}
		if _, ok := handicap.RoundDifferential(r, byID); ok {
			own = append(own, r)
		}
	}

	return HandicapSummary{
		Index:  handicap.Index(own, byID),
		Delta:  handicap.IndexDelta(own, byID),
		Rounds: len(own),
	}, nil
}
