package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/handicap"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"go.opentelemetry.io/otel/attribute"
)

var errMissingOpponent = errors.New("match has no opponent id")

type SyncServiceDeps struct {
	Guard        SchemaGuard
	Users        user.Repository
	Courses      course.Repository
	Rounds       round.Repository
	Matches      match.Repository
	Skins        skins.Repository
	LeagueRounds league.RoundRepository
	Bracket      BracketAdvancer
	Logger       *logging.Logger
}

// SyncService ingests client pushes. Every record is upserted by its natural
// key so a repeated push never creates a second row.
type SyncService struct {
	guard        SchemaGuard
	users        user.Repository
	courses      course.Repository
	rounds       round.Repository
	matches      match.Repository
	skins        skins.Repository
	leagueRounds league.RoundRepository
	bracket      BracketAdvancer
	logger       *logging.Logger
}

func NewSyncService(deps SyncServiceDeps) *SyncService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		guard:        deps.Guard,
		users:        deps.Users,
		courses:      deps.Courses,
		rounds:       deps.Rounds,
		matches:      deps.Matches,
		skins:        deps.Skins,
		leagueRounds: deps.LeagueRounds,
		bracket:      deps.Bracket,
		logger:       logger,
	}
}

// Ingest applies one client push. Only schema repair and acting-user restore
// are fatal; per-record failures are tallied in the response.
func (s *SyncService) Ingest(ctx context.Context, req syncapi.SyncRequest) (syncapi.SyncResponse, error) {
	ctx, span := startSpan(ctx, "SyncService.Ingest", attribute.Int64("user_id", req.UserID))
	defer span.End()

	if req.UserID <= 0 {
		return syncapi.SyncResponse{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := s.guard.EnsureSchema(ctx); err != nil {
		return syncapi.SyncResponse{}, fmt.Errorf("%w: ensure schema: %v", ErrDependencyUnavailable, err)
	}
	if err := s.guard.EnsureUserExists(ctx, req.UserID); err != nil {
		return syncapi.SyncResponse{}, fmt.Errorf("%w: ensure user %d: %v", ErrDependencyUnavailable, req.UserID, err)
	}

	results := syncapi.SyncResults{
		Rounds:     syncapi.RecordResults{Errors: []string{}},
		Matches:    syncapi.RecordResults{Errors: []string{}},
		SkinsGames: syncapi.RecordResults{Errors: []string{}},
	}
	courses := newCourseLookup(s.courses)

	for _, payload := range req.Rounds {
		serverID, err := s.ingestRound(ctx, req.UserID, payload, courses)
		if err != nil {
			s.logger.WarnContext(ctx, "sync round failed", "user_id", req.UserID, "client_id", payload.ClientID, "error", err)
			results.Rounds.Fail(payload.ClientID, err)
			continue
		}
		results.Rounds.Succeeded(payload.ClientID, serverID)
	}

	guestID := s.guestID(ctx)
	for _, payload := range req.Matches {
		outcome, err := s.ingestMatch(ctx, payload, guestID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "sync match failed", "user_id", req.UserID, "client_id", payload.ClientID, "error", err)
			results.Matches.Fail(payload.ClientID, err)
		case outcome.advanceErr != nil:
			results.Matches.Warn(payload.ClientID, outcome.serverID, outcome.advanceErr)
		default:
			results.Matches.Succeeded(payload.ClientID, outcome.serverID)
		}
	}

	for _, payload := range req.SkinsGames {
		serverID, err := s.ingestSkinsGame(ctx, req.UserID, payload, courses)
		if err != nil {
			s.logger.WarnContext(ctx, "sync skins game failed", "user_id", req.UserID, "client_id", payload.ClientID, "error", err)
			results.SkinsGames.Fail(payload.ClientID, err)
			continue
		}
		results.SkinsGames.Succeeded(payload.ClientID, serverID)
	}

	s.logger.InfoContext(ctx, "sync ingested",
		"user_id", req.UserID,
		"rounds_ok", results.Rounds.Success,
		"rounds_failed", results.Rounds.Failed,
		"matches_ok", results.Matches.Success,
		"matches_failed", results.Matches.Failed,
		"skins_ok", results.SkinsGames.Success,
		"skins_failed", results.SkinsGames.Failed,
	)
	return syncapi.SyncResponse{Success: true, Results: results}, nil
}

func (s *SyncService) ingestRound(ctx context.Context, userID int64, payload syncapi.Round, courses *courseLookup) (int64, error) {
	r := payload.ToDomain()
	if r.UserID <= 0 {
		r.UserID = userID
	}
	if r.UserID != userID {
		if err := s.guard.EnsureUserExists(ctx, r.UserID); err != nil {
			return 0, fmt.Errorf("ensure round owner %d: %w", r.UserID, err)
		}
	}

	c, known, err := courses.get(ctx, r.CourseID)
	if err != nil {
		return 0, err
	}
	if known {
		card := handicap.Score(c, r.TeeID, r.HcpIndex, r.HoleStrokes)
		r.TotalStrokes = card.TotalStrokes
		r.TotalStableford = card.TotalStableford
		r.PlayingHcp = card.PlayingHcp
	}

	existing, found, err := s.rounds.FindByNaturalKey(ctx, r.UserID, r.CourseID, r.PlayedAt)
	if err != nil {
		return 0, fmt.Errorf("find round: %w", err)
	}
	if found {
		r.ID = existing.ID
		if err := s.rounds.Update(ctx, r); err != nil {
			return 0, fmt.Errorf("update round: %w", err)
		}
	} else {
		created, err := s.rounds.Create(ctx, r)
		if err != nil {
			return 0, fmt.Errorf("create round: %w", err)
		}
		r.ID = created.ID
	}

	if r.LeagueID != nil && r.Completed {
		if _, err := s.leagueRounds.Upsert(ctx, league.Round{
			LeagueID: *r.LeagueID,
			RoundID:  r.ID,
			UserID:   r.UserID,
			Points:   r.TotalStableford,
			PlayedAt: r.PlayedAt,
		}); err != nil {
			return 0, fmt.Errorf("link round %d to league %d: %w", r.ID, *r.LeagueID, err)
		}
	}
	return r.ID, nil
}

// ingestMatch stores the match and then advances its bracket node. A failed
// advance leaves the match stored and is reported on the outcome.
type matchOutcome struct {
	serverID   int64
	advanceErr error
}

func (s *SyncService) ingestMatch(ctx context.Context, payload syncapi.Match, guestID int64) (matchOutcome, error) {
	m := payload.ToDomain()
	if m.Player1.ID <= 0 || m.Player2.ID <= 0 {
		return matchOutcome{}, errMissingOpponent
	}
	for _, id := range []int64{m.Player1.ID, m.Player2.ID} {
		if err := s.guard.EnsureUserExists(ctx, id); err != nil {
			return matchOutcome{}, fmt.Errorf("ensure player %d: %w", id, err)
		}
	}

	existing, found, err := s.matches.FindByNaturalKey(ctx, m.Player1.ID, m.Player2.ID, m.CourseID, m.PlayedAt)
	if err != nil {
		return matchOutcome{}, fmt.Errorf("find match: %w", err)
	}
	if !found && guestID > 0 && m.Player2.ID != guestID {
		existing, found, err = s.matches.FindByNaturalKey(ctx, m.Player1.ID, guestID, m.CourseID, m.PlayedAt)
		if err != nil {
			return matchOutcome{}, fmt.Errorf("find guest match: %w", err)
		}
		if found {
			s.logger.InfoContext(ctx, "claiming guest match", "match_id", existing.ID, "player2_id", m.Player2.ID)
		}
	}

	if found {
		m.ID = existing.ID
		if err := s.matches.Update(ctx, m); err != nil {
			return matchOutcome{}, fmt.Errorf("update match: %w", err)
		}
	} else {
		created, err := s.matches.Create(ctx, m)
		if err != nil {
			return matchOutcome{}, fmt.Errorf("create match: %w", err)
		}
		m.ID = created.ID
	}

	if m.LeagueMatchID == nil || !m.Completed || m.WinnerID == nil || match.IsHalved(m.Status) || s.bracket == nil {
		return matchOutcome{serverID: m.ID}, nil
	}
	linked := m.ID
	if _, err := s.bracket.Advance(ctx, *m.LeagueMatchID, *m.WinnerID, &linked); err != nil {
		s.logger.WarnContext(ctx, "bracket advance failed",
			"league_match_id", *m.LeagueMatchID,
			"winner_id", *m.WinnerID,
			"error", err,
		)
		return matchOutcome{serverID: m.ID, advanceErr: fmt.Errorf("advance league match %d: %w", *m.LeagueMatchID, err)}, nil
	}
	return matchOutcome{serverID: m.ID}, nil
}

func (s *SyncService) ingestSkinsGame(ctx context.Context, userID int64, payload syncapi.SkinsGame, courses *courseLookup) (int64, error) {
	g := payload.ToDomain()
	if g.UserID <= 0 {
		g.UserID = userID
	}
	if len(g.Players) < 2 {
		return 0, fmt.Errorf("%w: skins game needs at least two players", ErrInvalidInput)
	}

	holes := 0
	if c, known, err := courses.get(ctx, g.CourseID); err != nil {
		return 0, err
	} else if known {
		holes = len(c.Holes)
	}
	if holes == 0 {
		holes = maxHole(g.Scores)
	}
	g.Results, _ = skins.Tally(g.Players, g.Scores, holes)

	existing, found, err := s.skins.FindByNaturalKey(ctx, g.UserID, g.CourseID, g.PlayedAt)
	if err != nil {
		return 0, fmt.Errorf("find skins game: %w", err)
	}
	if found {
		g.ID = existing.ID
		if err := s.skins.Update(ctx, g); err != nil {
			return 0, fmt.Errorf("update skins game: %w", err)
		}
		return g.ID, nil
	}

	created, err := s.skins.Create(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("create skins game: %w", err)
	}
	return created.ID, nil
}

// guestID resolves the canonical guest user, creating it on first use. A
// failure disables the guest claim rule for this push only.
func (s *SyncService) guestID(ctx context.Context) int64 {
	guest, found, err := s.users.FindByName(ctx, user.GuestName)
	if err == nil && found {
		return guest.ID
	}
	if err != nil {
		s.logger.WarnContext(ctx, "lookup guest user failed", "error", err)
		return 0
	}
	created, err := s.users.Create(ctx, user.User{Name: user.GuestName, Handicap: user.DefaultHandicap})
	if err != nil {
		s.logger.WarnContext(ctx, "create guest user failed", "error", err)
		return 0
	}
	return created.ID
}

// courseLookup memoises course reads for one push. Unknown ids are cached as
// misses.
type courseLookup struct {
	repo  course.Repository
	items map[int64]*course.Course
}

func newCourseLookup(repo course.Repository) *courseLookup {
	return &courseLookup{repo: repo, items: make(map[int64]*course.Course)}
}

func (l *courseLookup) get(ctx context.Context, id int64) (course.Course, bool, error) {
	if cached, ok := l.items[id]; ok {
		if cached == nil {
			return course.Course{}, false, nil
		}
		return *cached, true, nil
	}

	c, found, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return course.Course{}, false, fmt.Errorf("get course %d: %w", id, err)
	}
	if !found {
		l.items[id] = nil
		return course.Course{}, false, nil
	}
	l.items[id] = &c
	return c, true, nil
}

func maxHole(scores map[string]map[int]int) int {
	highest := 0
	for _, holes := range scores {
		for n := range holes {
			if n > highest {
				highest = n
			}
		}
	}
	return highest
}
