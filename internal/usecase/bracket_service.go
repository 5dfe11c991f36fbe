package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type BracketEngine interface {
	BracketAdvancer
	Create(ctx context.Context, leagueID int64, players []int64) ([]league.Match, error)
	List(ctx context.Context, leagueID int64) ([]league.Match, error)
}

type StartTournamentInput struct {
	LeagueID int64
	// Players defaults to the league members when empty.
	Players []int64
}

type AdvanceMatchInput struct {
	LeagueID      int64
	LeagueMatchID int64
	WinnerID      int64
	LinkedMatchID *int64
}

type BracketService struct {
	leagueRepo league.Repository
	engine     BracketEngine
	logger     *logging.Logger
}

func NewBracketService(leagueRepo league.Repository, engine BracketEngine, logger *logging.Logger) *BracketService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BracketService{leagueRepo: leagueRepo, engine: engine, logger: logger}
}

// StartTournament seeds the bracket once; a league that already has nodes is
// rejected.
func (s *BracketService) StartTournament(ctx context.Context, input StartTournamentInput) ([]league.Match, error) {
	ctx, span := startSpan(ctx, "BracketService.StartTournament", attribute.Int64("league_id", input.LeagueID))
	defer span.End()

	l, err := s.bracketLeague(ctx, input.LeagueID)
	if err != nil {
		return nil, err
	}

	existing, err := s.engine.List(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("list bracket: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: league %d already has a bracket", ErrConflict, l.ID)
	}

	players := input.Players
	if len(players) == 0 {
		members, err := s.leagueRepo.ListMembers(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("list league members: %w", err)
		}
		for _, m := range members {
			players = append(players, m.UserID)
		}
	}
	players = dedupeIDs(players)

	nodes, err := s.engine.Create(ctx, l.ID, players)
	if err != nil {
		if errors.Is(err, bracket.ErrNotEnoughPlayers) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("create bracket: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament started",
		"league_id", l.ID,
		"players", len(players),
		"rounds", bracket.Rounds(len(players)),
	)
	return nodes, nil
}

func (s *BracketService) AdvanceMatch(ctx context.Context, input AdvanceMatchInput) (bracket.AdvanceResult, error) {
	ctx, span := startSpan(ctx, "BracketService.AdvanceMatch", attribute.Int64("league_id", input.LeagueID), attribute.Int64("league_match_id", input.LeagueMatchID))
	defer span.End()

	if input.LeagueMatchID <= 0 || input.WinnerID <= 0 {
		return bracket.AdvanceResult{}, fmt.Errorf("%w: league match id and winner id are required", ErrInvalidInput)
	}
	if _, err := s.bracketLeague(ctx, input.LeagueID); err != nil {
		return bracket.AdvanceResult{}, err
	}

	nodes, err := s.engine.List(ctx, input.LeagueID)
	if err != nil {
		return bracket.AdvanceResult{}, fmt.Errorf("list bracket: %w", err)
	}
	if !containsNode(nodes, input.LeagueMatchID) {
		return bracket.AdvanceResult{}, fmt.Errorf("%w: league match %d is not in league %d", ErrNotFound, input.LeagueMatchID, input.LeagueID)
	}

	result, err := s.engine.Advance(ctx, input.LeagueMatchID, input.WinnerID, input.LinkedMatchID)
	switch {
	case errors.Is(err, bracket.ErrMatchNotFound):
		return bracket.AdvanceResult{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, bracket.ErrInvalidWinner):
		return bracket.AdvanceResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return bracket.AdvanceResult{}, fmt.Errorf("advance bracket: %w", err)
	}

	if result.Finished {
		s.logger.InfoContext(ctx, "tournament finished", "league_id", input.LeagueID, "winner_id", input.WinnerID)
	}
	return result, nil
}

func (s *BracketService) Bracket(ctx context.Context, leagueID int64) ([]league.Match, error) {
	if _, err := s.bracketLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	nodes, err := s.engine.List(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list bracket: %w", err)
	}
	return nodes, nil
}

func (s *BracketService) bracketLeague(ctx context.Context, leagueID int64) (league.League, error) {
	if leagueID <= 0 {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	l, found, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league=%d", ErrNotFound, leagueID)
	}
	if l.Format != league.FormatBracket {
		return league.League{}, fmt.Errorf("%w: league %d is not a bracket league", ErrInvalidInput, leagueID)
	}
	return l, nil
}

func containsNode(nodes []league.Match, id int64) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
