package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/domain/standings"
	"github.com/riskibarqy/golf-league/internal/domain/user"
)

type LeagueDetail struct {
	League  league.League   `json:"league"`
	Members []league.Member `json:"members"`
}

type LeagueService struct {
	leagueRepo league.Repository
	roundRepo  league.RoundRepository
	userRepo   user.Repository
}

func NewLeagueService(leagueRepo league.Repository, roundRepo league.RoundRepository, userRepo user.Repository) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		roundRepo:  roundRepo,
		userRepo:   userRepo,
	}
}

// Create stores the league and enrols its owner.
func (s *LeagueService) Create(ctx context.Context, l league.League) (league.League, error) {
	ctx, span := startSpan(ctx, "LeagueService.Create")
	defer span.End()

	l.Name = strings.TrimSpace(l.Name)
	if l.Period == "" {
		l.Period = league.PeriodWeek
	}
	if err := l.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.requireUser(ctx, l.OwnerID); err != nil {
		return league.League{}, err
	}

	created, err := s.leagueRepo.Create(ctx, l)
	if err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}
	if err := s.leagueRepo.AddMember(ctx, league.Member{LeagueID: created.ID, UserID: created.OwnerID}); err != nil {
		return league.League{}, fmt.Errorf("add league owner: %w", err)
	}
	return created, nil
}

func (s *LeagueService) Get(ctx context.Context, leagueID int64) (LeagueDetail, error) {
	l, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return LeagueDetail{}, err
	}
	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return LeagueDetail{}, fmt.Errorf("list league members: %w", err)
	}
	return LeagueDetail{League: l, Members: members}, nil
}

// Join is idempotent.
func (s *LeagueService) Join(ctx context.Context, leagueID, userID int64) error {
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.leagueRepo.AddMember(ctx, league.Member{LeagueID: leagueID, UserID: userID}); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}
	return nil
}

// Standings scores a stroke-play league over its linked rounds.
func (s *LeagueService) Standings(ctx context.Context, leagueID int64) (standings.Table, error) {
	ctx, span := startSpan(ctx, "LeagueService.Standings")
	defer span.End()

	l, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return standings.Table{}, err
	}
	if l.Format != league.FormatStroke {
		return standings.Table{}, fmt.Errorf("%w: league %d is not a stroke-play league", ErrInvalidInput, leagueID)
	}

	rounds, err := s.roundRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return standings.Table{}, fmt.Errorf("list league rounds: %w", err)
	}
	return standings.Compute(rounds, l.Period), nil
}

func (s *LeagueService) getLeague(ctx context.Context, leagueID int64) (league.League, error) {
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
	return l, nil
}

func (s *LeagueService) requireUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	_, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}
	return nil
}
