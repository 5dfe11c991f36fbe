package offline

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)
	teeTime  = time.Date(2026, 5, 12, 7, 0, 0, 0, time.UTC)
)

const aliceID int64 = 2

type remoteMock struct {
	mock.Mock
}

func (m *remoteMock) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *remoteMock) EnsureUser(ctx context.Context, req syncapi.EnsureUserRequest) (syncapi.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(syncapi.User), args.Error(1)
}

func (m *remoteMock) GetUser(ctx context.Context, userID int64) (syncapi.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(syncapi.User), args.Error(1)
}

func (m *remoteMock) ListCourses(ctx context.Context) ([]syncapi.Course, error) {
	args := m.Called(ctx)
	return args.Get(0).([]syncapi.Course), args.Error(1)
}

func (m *remoteMock) CreateCourse(ctx context.Context, in syncapi.Course) (syncapi.CreatedCourse, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(syncapi.CreatedCourse), args.Error(1)
}

func (m *remoteMock) Sync(ctx context.Context, req syncapi.SyncRequest) (syncapi.SyncResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(syncapi.SyncResponse), args.Error(1)
}

func (m *remoteMock) Activity(ctx context.Context, userID int64) (syncapi.Activity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(syncapi.Activity), args.Error(1)
}

// expectUsers stubs the user phase and the post-sync profile refresh.
func (m *remoteMock) expectUsers(guestID int64) {
	m.On("EnsureUser", mock.Anything, syncapi.EnsureUserRequest{ID: aliceID}).
		Return(syncapi.User{ID: aliceID, Name: "Alice", Handicap: 12.4}, nil).Maybe()
	m.On("EnsureUser", mock.Anything, syncapi.EnsureUserRequest{Name: "Guest"}).
		Return(syncapi.User{ID: guestID, Name: "Guest", Handicap: 28}, nil).Maybe()
	m.On("GetUser", mock.Anything, aliceID).
		Return(syncapi.User{ID: aliceID, Name: "Alice", Handicap: 12.4}, nil).Maybe()
}

type fixedIDs struct{}

func (fixedIDs) NewID() (string, error) {
	return "run-1", nil
}

func newTestEngine(t *testing.T, remote RemoteAPI, store localstore.Store) *Engine {
	t.Helper()

	engine, err := NewEngine(remote, store, EngineConfig{
		UserID: aliceID,
		Logger: logging.NewNop(),
		IDs:    fixedIDs{},
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return engine
}

func testCourse(name string) course.Course {
	pars := []int{4, 4, 3, 5, 4, 4, 3, 4, 5}
	holes := make([]course.Hole, 0, len(pars))
	for i, par := range pars {
		holes = append(holes, course.Hole{Number: i + 1, Par: par, StrokeIndex: i*2 + 1})
	}
	return course.Course{
		Name:  name,
		Holes: holes,
		Tees:  []course.Tee{{ID: "white", Name: "White", Slope: 113, Rating: 36}},
	}
}

func allFours() map[int]int {
	out := make(map[int]int, 9)
	for hole := 1; hole <= 9; hole++ {
		out[hole] = 4
	}
	return out
}

func int64Ptr(v int64) *int64 {
	return &v
}

func seed(t *testing.T, store localstore.Store, fn func(tx localstore.Tx) error) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), fn))
}

func load[T any](t *testing.T, store localstore.Store, table localstore.Table, id int64) T {
	t.Helper()

	var out T
	require.NoError(t, store.View(context.Background(), func(tx localstore.Tx) error {
		item, ok, err := localstore.Get[T](tx, table, id)
		require.True(t, ok, "%s/%d missing", table, id)
		out = item
		return err
	}))
	return out
}

type prompterMock struct {
	mock.Mock
}

func (p *prompterMock) ConfirmPlayoffWinner(ctx context.Context, m match.Match, candidate match.Player) (bool, error) {
	args := p.Called(ctx, m, candidate)
	return args.Bool(0), args.Error(1)
}

func playerWithID(id int64) any {
	return mock.MatchedBy(func(p match.Player) bool { return p.ID == id })
}
