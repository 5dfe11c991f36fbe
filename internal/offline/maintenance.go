package offline

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
)

type roundKey struct {
	userID   int64
	courseID int64
	playedAt time.Time
}

// DedupRounds removes local rounds that share user, course and start time.
// The survivor is the one holding a server id, then the one with more holes
// scored, then the oldest. Runs in one transaction.
func DedupRounds(ctx context.Context, store localstore.Store) (int, error) {
	removed := 0
	err := store.Update(ctx, func(tx localstore.Tx) error {
		removed = 0
		rounds, err := localstore.GetAll[round.Round](tx, localstore.TableRounds)
		if err != nil {
			return err
		}

		keep := make(map[roundKey]round.Round, len(rounds))
		for _, r := range rounds {
			key := roundKey{userID: r.UserID, courseID: r.CourseID, playedAt: round.NaturalTime(r.PlayedAt)}
			current, seen := keep[key]
			if !seen {
				keep[key] = r
				continue
			}

			loser := r
			if preferRound(r, current) {
				keep[key] = r
				loser = current
			}
			if err := localstore.Delete(tx, localstore.TableRounds, loser.ID); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("dedup rounds: %w", err)
	}
	return removed, nil
}

// preferRound reports whether a should survive over b. Rounds arrive in id
// order, so b is always the older one.
func preferRound(a, b round.Round) bool {
	if (a.ServerID != nil) != (b.ServerID != nil) {
		return a.ServerID != nil
	}
	return len(a.HoleStrokes) > len(b.HoleStrokes)
}

type ResyncCounts struct {
	Rounds     int `json:"rounds"`
	Matches    int `json:"matches"`
	SkinsGames int `json:"skinsGames"`
}

// ForceResync marks every round, match and skins game unsynced so the next
// sync pushes all of them again. Server ids are kept and the server upserts
// by natural key, so nothing is duplicated.
func ForceResync(ctx context.Context, store localstore.Store) (ResyncCounts, error) {
	var counts ResyncCounts
	err := store.Update(ctx, func(tx localstore.Tx) error {
		counts = ResyncCounts{}

		rounds, err := localstore.GetAll[round.Round](tx, localstore.TableRounds)
		if err != nil {
			return err
		}
		for _, r := range rounds {
			if !r.Synced {
				continue
			}
			r.Synced = false
			if err := localstore.Put(tx, localstore.TableRounds, &r); err != nil {
				return err
			}
			counts.Rounds++
		}

		matches, err := localstore.GetAll[match.Match](tx, localstore.TableMatches)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if !m.Synced {
				continue
			}
			m.Synced = false
			if err := localstore.Put(tx, localstore.TableMatches, &m); err != nil {
				return err
			}
			counts.Matches++
		}

		games, err := localstore.GetAll[skins.Game](tx, localstore.TableSkinsGames)
		if err != nil {
			return err
		}
		for _, g := range games {
			if !g.Synced {
				continue
			}
			g.Synced = false
			if err := localstore.Put(tx, localstore.TableSkinsGames, &g); err != nil {
				return err
			}
			counts.SkinsGames++
		}
		return nil
	})
	if err != nil {
		return ResyncCounts{}, fmt.Errorf("force resync: %w", err)
	}
	return counts, nil
}
