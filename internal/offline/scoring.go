package offline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/handicap"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

var (
	ErrCompleted     = errors.New("record is already completed")
	ErrUnknownCourse = errors.New("course not found in local store")
	ErrUnknownHole   = errors.New("hole is not on this course")
	ErrInvalidScore  = errors.New("strokes must be zero or positive")
	ErrUnknownPlayer = errors.New("player is not in this game")
	ErrNoOwner       = errors.New("record needs the owning user id")
)

// PlayoffPrompter asks the operator whether candidate won the playoff of a
// tied tournament match.
type PlayoffPrompter interface {
	ConfirmPlayoffWinner(ctx context.Context, m match.Match, candidate match.Player) (bool, error)
}

// Scorebook records scores into the local store. Every write flips the
// record back to unsynced.
type Scorebook struct {
	store   localstore.Store
	bracket *bracket.Engine
	logger  *logging.Logger
	now     func() time.Time
}

func NewScorebook(store localstore.Store, logger *logging.Logger) *Scorebook {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scorebook{
		store:   store,
		bracket: bracket.NewEngine(NewBracketStore(store), nil),
		logger:  logger,
		now:     time.Now,
	}
}

func loadCourse(tx localstore.Tx, id int64) (course.Course, error) {
	c, ok, err := localstore.Get[course.Course](tx, localstore.TableCourses, id)
	if err != nil {
		return course.Course{}, err
	}
	if !ok {
		return course.Course{}, fmt.Errorf("%w: id=%d", ErrUnknownCourse, id)
	}
	return c, nil
}

// StartRound stores a new round and returns it with its local id.
func (b *Scorebook) StartRound(ctx context.Context, r round.Round) (round.Round, error) {
	if r.UserID <= 0 {
		return round.Round{}, fmt.Errorf("start round: %w", ErrNoOwner)
	}
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		c, err := loadCourse(tx, r.CourseID)
		if err != nil {
			return err
		}
		if r.HoleStrokes == nil {
			r.HoleStrokes = map[int]int{}
		}
		applyScorecard(&r, c)
		r.ID, r.ServerID, r.Synced, r.Completed = 0, nil, false, false
		if r.PlayedAt.IsZero() {
			r.PlayedAt = b.now()
		}
		r.PlayedAt = round.NaturalTime(r.PlayedAt)
		r.UpdatedAt = b.now().UTC()
		_, err = localstore.Add(tx, localstore.TableRounds, &r)
		return err
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("start round: %w", err)
	}
	return r, nil
}

// RecordHoleScore sets the strokes for one hole and recomputes the totals.
// Zero strokes clears the hole.
func (b *Scorebook) RecordHoleScore(ctx context.Context, roundID int64, hole, strokes int) (round.Round, error) {
	if strokes < 0 {
		return round.Round{}, ErrInvalidScore
	}

	var out round.Round
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		r, ok, err := localstore.Get[round.Round](tx, localstore.TableRounds, roundID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("round %d: %w", roundID, localstore.ErrNotFound)
		}
		if r.Completed {
			return fmt.Errorf("round %d: %w", roundID, ErrCompleted)
		}
		c, err := loadCourse(tx, r.CourseID)
		if err != nil {
			return err
		}
		if _, ok := c.Hole(hole); !ok {
			return fmt.Errorf("%w: hole %d", ErrUnknownHole, hole)
		}

		if r.HoleStrokes == nil {
			r.HoleStrokes = map[int]int{}
		}
		if strokes == 0 {
			delete(r.HoleStrokes, hole)
		} else {
			r.HoleStrokes[hole] = strokes
		}
		applyScorecard(&r, c)
		r.Synced = false
		r.UpdatedAt = b.now().UTC()
		out = r
		return localstore.Put(tx, localstore.TableRounds, &r)
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("record hole score: %w", err)
	}
	return out, nil
}

// CompleteRound freezes the scorecard. Only completed rounds are pushed.
func (b *Scorebook) CompleteRound(ctx context.Context, roundID int64) (round.Round, error) {
	var out round.Round
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		r, ok, err := localstore.Get[round.Round](tx, localstore.TableRounds, roundID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("round %d: %w", roundID, localstore.ErrNotFound)
		}
		if r.Completed {
			out = r
			return nil
		}
		c, err := loadCourse(tx, r.CourseID)
		if err != nil {
			return err
		}
		applyScorecard(&r, c)
		r.Completed = true
		r.Synced = false
		r.UpdatedAt = b.now().UTC()
		out = r
		return localstore.Put(tx, localstore.TableRounds, &r)
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("complete round: %w", err)
	}
	return out, nil
}

func applyScorecard(r *round.Round, c course.Course) {
	card := handicap.Score(c, r.TeeID, r.HcpIndex, r.HoleStrokes)
	r.TotalStrokes = card.TotalStrokes
	r.TotalStableford = card.TotalStableford
	r.PlayingHcp = card.PlayingHcp
}

func (b *Scorebook) StartMatch(ctx context.Context, m match.Match) (match.Match, error) {
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		c, err := loadCourse(tx, m.CourseID)
		if err != nil {
			return err
		}
		if m.Holes == nil {
			m.Holes = map[int]match.HoleResult{}
		}
		m.ID, m.ServerID, m.Synced, m.Completed, m.WinnerID = 0, nil, false, false, nil
		m.Status = match.Status(m.Holes, len(c.Holes))
		if m.PlayedAt.IsZero() {
			m.PlayedAt = b.now()
		}
		m.PlayedAt = round.NaturalTime(m.PlayedAt)
		m.UpdatedAt = b.now().UTC()
		_, err = localstore.Add(tx, localstore.TableMatches, &m)
		return err
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("start match: %w", err)
	}
	return m, nil
}

// RecordMatchHole scores one hole of a match and refreshes the status label.
func (b *Scorebook) RecordMatchHole(ctx context.Context, matchID int64, hole, p1Gross, p2Gross int) (match.Match, error) {
	if p1Gross <= 0 || p2Gross <= 0 {
		return match.Match{}, ErrInvalidScore
	}

	var out match.Match
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		m, c, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}
		if m.Completed {
			return fmt.Errorf("match %d: %w", matchID, ErrCompleted)
		}
		h, ok := c.Hole(hole)
		if !ok {
			return fmt.Errorf("%w: hole %d", ErrUnknownHole, hole)
		}

		if m.Holes == nil {
			m.Holes = map[int]match.HoleResult{}
		}
		m.Holes[hole] = match.ScoreHole(h, m.Player1, m.Player2, p1Gross, p2Gross)
		m.Status = match.Status(m.Holes, len(c.Holes))
		m.Synced = false
		m.UpdatedAt = b.now().UTC()
		out = m
		return localstore.Put(tx, localstore.TableMatches, &m)
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("record match hole: %w", err)
	}
	return out, nil
}

func loadMatch(tx localstore.Tx, matchID int64) (match.Match, course.Course, error) {
	m, ok, err := localstore.Get[match.Match](tx, localstore.TableMatches, matchID)
	if err != nil {
		return match.Match{}, course.Course{}, err
	}
	if !ok {
		return match.Match{}, course.Course{}, fmt.Errorf("match %d: %w", matchID, localstore.ErrNotFound)
	}
	c, err := loadCourse(tx, m.CourseID)
	if err != nil {
		return match.Match{}, course.Course{}, err
	}
	return m, c, nil
}

// CompleteMatch settles a match: the leader wins, a level match is halved.
// Differentials are stored when the match counts for handicap.
func (b *Scorebook) CompleteMatch(ctx context.Context, matchID int64) (match.Match, error) {
	return b.finish(ctx, matchID, nil)
}

// FinishMatch is CompleteMatch for matches that may feed a bracket. A level
// tournament match asks prompter about player 1 and then player 2; with no
// winner confirmed nothing is saved and ErrUnresolvedTie is returned.
func (b *Scorebook) FinishMatch(ctx context.Context, matchID int64, prompter PlayoffPrompter) (match.Match, error) {
	var current match.Match
	err := b.store.View(ctx, func(tx localstore.Tx) error {
		m, _, err := loadMatch(tx, matchID)
		current = m
		return err
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("finish match: %w", err)
	}

	var playoff *int64
	if _, leads := current.Leader(); !leads && current.LeagueMatchID != nil {
		if prompter == nil {
			return match.Match{}, fmt.Errorf("finish match %d: %w", matchID, bracket.ErrUnresolvedTie)
		}
		for _, candidate := range []match.Player{current.Player1, current.Player2} {
			won, err := prompter.ConfirmPlayoffWinner(ctx, current, candidate)
			if err != nil {
				return match.Match{}, fmt.Errorf("finish match %d: playoff prompt: %w", matchID, err)
			}
			if won {
				id := candidate.ID
				playoff = &id
				break
			}
		}
		if playoff == nil {
			return match.Match{}, fmt.Errorf("finish match %d: %w", matchID, bracket.ErrUnresolvedTie)
		}
	}

	m, err := b.finish(ctx, matchID, playoff)
	if err != nil {
		return match.Match{}, err
	}

	if m.LeagueMatchID != nil && m.WinnerID != nil && *m.WinnerID > 0 {
		if _, err := b.bracket.Advance(ctx, *m.LeagueMatchID, *m.WinnerID, m.ServerID); err != nil {
			// the server re-applies the advance on push
			b.logger.WarnContext(ctx, "local bracket advance failed",
				"league_match_id", *m.LeagueMatchID,
				"winner_id", *m.WinnerID,
				"error", err,
			)
		}
	}
	return m, nil
}

func (b *Scorebook) finish(ctx context.Context, matchID int64, playoff *int64) (match.Match, error) {
	var out match.Match
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		m, c, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}
		if m.Completed {
			return fmt.Errorf("match %d: %w", matchID, ErrCompleted)
		}

		m.Status = match.Status(m.Holes, len(c.Holes))
		m.WinnerID = nil
		if leader, ok := m.Leader(); ok {
			id := leader
			m.WinnerID = &id
		} else if playoff != nil {
			id := *playoff
			m.WinnerID = &id
			m.Status = match.StatusPlayoff
		}

		m.Player1Differential, m.Player2Differential = nil, nil
		if m.CountForHandicap {
			if rating, slope, ok := c.RatingFor(m.TeeID); ok {
				p1, p2 := m.GrossTotals()
				if p1 > 0 {
					d := handicap.Differential(p1, slope, rating)
					m.Player1Differential = &d
				}
				if p2 > 0 {
					d := handicap.Differential(p2, slope, rating)
					m.Player2Differential = &d
				}
			}
		}

		m.Completed = true
		m.Synced = false
		m.UpdatedAt = b.now().UTC()
		out = m
		return localstore.Put(tx, localstore.TableMatches, &m)
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("complete match: %w", err)
	}
	return out, nil
}

func (b *Scorebook) StartSkinsGame(ctx context.Context, g skins.Game) (skins.Game, error) {
	if len(g.Players) < 2 {
		return skins.Game{}, fmt.Errorf("start skins game: need at least two players")
	}
	if g.UserID <= 0 {
		return skins.Game{}, fmt.Errorf("start skins game: %w", ErrNoOwner)
	}
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		if _, err := loadCourse(tx, g.CourseID); err != nil {
			return err
		}
		if g.Scores == nil {
			g.Scores = map[string]map[int]int{}
		}
		g.ID, g.ServerID, g.Synced, g.Completed, g.Results = 0, nil, false, false, nil
		if g.PlayedAt.IsZero() {
			g.PlayedAt = b.now()
		}
		g.PlayedAt = round.NaturalTime(g.PlayedAt)
		g.UpdatedAt = b.now().UTC()
		_, err := localstore.Add(tx, localstore.TableSkinsGames, &g)
		return err
	})
	if err != nil {
		return skins.Game{}, fmt.Errorf("start skins game: %w", err)
	}
	return g, nil
}

// CompleteSkinsGame runs the final tally and queues the game for push.
func (b *Scorebook) CompleteSkinsGame(ctx context.Context, gameID int64) (skins.Game, error) {
	var out skins.Game
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		g, ok, err := localstore.Get[skins.Game](tx, localstore.TableSkinsGames, gameID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("skins game %d: %w", gameID, localstore.ErrNotFound)
		}
		if g.Completed {
			out = g
			return nil
		}
		c, err := loadCourse(tx, g.CourseID)
		if err != nil {
			return err
		}
		g.Results, _ = skins.Tally(g.Players, g.Scores, len(c.Holes))
		g.Completed = true
		g.Synced = false
		g.UpdatedAt = b.now().UTC()
		out = g
		return localstore.Put(tx, localstore.TableSkinsGames, &g)
	})
	if err != nil {
		return skins.Game{}, fmt.Errorf("complete skins game: %w", err)
	}
	return out, nil
}

// RecordSkins stores one player's strokes on a hole and re-tallies the game.
func (b *Scorebook) RecordSkins(ctx context.Context, gameID int64, player string, hole, strokes int) (skins.Game, error) {
	if strokes < 0 {
		return skins.Game{}, ErrInvalidScore
	}

	var out skins.Game
	err := b.store.Update(ctx, func(tx localstore.Tx) error {
		g, ok, err := localstore.Get[skins.Game](tx, localstore.TableSkinsGames, gameID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("skins game %d: %w", gameID, localstore.ErrNotFound)
		}
		if g.Completed {
			return fmt.Errorf("skins game %d: %w", gameID, ErrCompleted)
		}
		c, err := loadCourse(tx, g.CourseID)
		if err != nil {
			return err
		}
		if _, ok := c.Hole(hole); !ok {
			return fmt.Errorf("%w: hole %d", ErrUnknownHole, hole)
		}

		if !slices.Contains(g.Players, player) {
			return fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
		}
		if g.Scores == nil {
			g.Scores = map[string]map[int]int{}
		}
		if g.Scores[player] == nil {
			g.Scores[player] = map[int]int{}
		}
		g.Scores[player][hole] = strokes
		g.Results, _ = skins.Tally(g.Players, g.Scores, len(c.Holes))
		g.Synced = false
		g.UpdatedAt = b.now().UTC()
		out = g
		return localstore.Put(tx, localstore.TableSkinsGames, &g)
	})
	if err != nil {
		return skins.Game{}, fmt.Errorf("record skins: %w", err)
	}
	return out, nil
}
