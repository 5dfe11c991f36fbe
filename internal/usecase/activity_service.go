package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type ActivityService struct {
	rounds        round.Repository
	matches       match.Repository
	skins         skins.Repository
	leagueMatches league.MatchRepository
}

func NewActivityService(
	rounds round.Repository,
	matches match.Repository,
	skinsRepo skins.Repository,
	leagueMatches league.MatchRepository,
) *ActivityService {
	return &ActivityService{
		rounds:        rounds,
		matches:       matches,
		skins:         skinsRepo,
		leagueMatches: leagueMatches,
	}
}

// Activity loads everything the server holds for a user. The four reads run
// concurrently and the first failure cancels the rest.
func (s *ActivityService) Activity(ctx context.Context, userID int64) (syncapi.Activity, error) {
	ctx, span := startSpan(ctx, "ActivityService.Activity", attribute.Int64("user_id", userID))
	defer span.End()

	if userID <= 0 {
		return syncapi.Activity{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var (
		rounds        []round.Round
		matches       []match.Match
		games         []skins.Game
		leagueMatches []league.Match
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.rounds.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list rounds: %w", err)
		}
		rounds = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.matches.ListByPlayer(ctx, userID)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		matches = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.skins.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list skins games: %w", err)
		}
		games = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.leagueMatches.ListByPlayer(ctx, userID)
		if err != nil {
			return fmt.Errorf("list league matches: %w", err)
		}
		leagueMatches = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return syncapi.Activity{}, err
	}

	out := syncapi.Activity{
		Rounds:        make([]syncapi.Round, 0, len(rounds)),
		Matches:       make([]syncapi.Match, 0, len(matches)),
		SkinsGames:    make([]syncapi.SkinsGame, 0, len(games)),
		LeagueMatches: make([]syncapi.LeagueMatch, 0, len(leagueMatches)),
	}
	for _, r := range rounds {
		out.Rounds = append(out.Rounds, syncapi.ServerRound(r))
	}
	for _, m := range matches {
		out.Matches = append(out.Matches, syncapi.ServerMatch(m))
	}
	for _, g := range games {
		out.SkinsGames = append(out.SkinsGames, syncapi.ServerSkinsGame(g))
	}
	for _, m := range leagueMatches {
		out.LeagueMatches = append(out.LeagueMatches, syncapi.LeagueMatchFrom(m))
	}
	return out, nil
}
