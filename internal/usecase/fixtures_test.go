package usecase

import (
	"context"
	"math/rand/v2"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type serverFixture struct {
	users         *memory.UserRepository
	courses       *memory.CourseRepository
	rounds        *memory.RoundRepository
	matches       *memory.MatchRepository
	skins         *memory.SkinsRepository
	leagues       *memory.LeagueRepository
	leagueRounds  *memory.LeagueRoundRepository
	leagueMatches *memory.LeagueMatchRepository
	guard         *memory.SchemaGuard
	engine        *bracket.Engine
	logger        *logging.Logger
}

func newServerFixture() *serverFixture {
	users := memory.NewUserRepository([]user.User{
		{ID: 1, Name: user.GuestName, Handicap: user.DefaultHandicap},
		{ID: 2, Name: "Alice", Handicap: 12.4},
		{ID: 3, Name: "Bob", Handicap: 18.0},
	})
	leagueMatches := memory.NewLeagueMatchRepository()
	logger := logging.NewNop()
	return &serverFixture{
		users:         users,
		courses:       memory.NewCourseRepository([]course.Course{testCourse()}),
		rounds:        memory.NewRoundRepository(),
		matches:       memory.NewMatchRepository(),
		skins:         memory.NewSkinsRepository(),
		leagues:       memory.NewLeagueRepository(),
		leagueRounds:  memory.NewLeagueRoundRepository(),
		leagueMatches: leagueMatches,
		guard:         memory.NewSchemaGuard(users, logger),
		engine:        bracket.NewEngine(leagueMatches, rand.New(rand.NewPCG(7, 11))),
		logger:        logger,
	}
}

func (f *serverFixture) syncService(guard SchemaGuard) *SyncService {
	if guard == nil {
		guard = f.guard
	}
	return NewSyncService(SyncServiceDeps{
		Guard:        guard,
		Users:        f.users,
		Courses:      f.courses,
		Rounds:       f.rounds,
		Matches:      f.matches,
		Skins:        f.skins,
		LeagueRounds: f.leagueRounds,
		Bracket:      f.engine,
		Logger:       f.logger,
	})
}

// testCourse is a nine hole par 36 layout with a single 113 slope tee.
func testCourse() course.Course {
	pars := []int{4, 4, 3, 5, 4, 4, 3, 4, 5}
	holes := make([]course.Hole, 0, len(pars))
	for i, par := range pars {
		holes = append(holes, course.Hole{Number: i + 1, Par: par, StrokeIndex: i*2 + 1})
	}
	return course.Course{
		ID:     10,
		Name:   "Test Nine",
		Holes:  holes,
		Tees:   []course.Tee{{ID: "white", Name: "White", Slope: 113, Rating: 36}},
		Rating: 36,
		Slope:  113,
		Par:    36,
	}
}

type mockSchemaGuard struct {
	mock.Mock
}

func (m *mockSchemaGuard) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockSchemaGuard) EnsureUserExists(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func int64Ptr(v int64) *int64 {
	return &v
}
