package offline

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// seedPendingRound stores an unsynced course, a completed round on it and a
// running match against a guest.
func seedPendingRound(t *testing.T, store localstore.Store) {
	t.Helper()
	seed(t, store, func(tx localstore.Tx) error {
		c := testCourse("Test Nine")
		if _, err := localstore.Add(tx, localstore.TableCourses, &c); err != nil {
			return err
		}
		r := round.Round{
			UserID:          aliceID,
			CourseID:        c.ID,
			TeeID:           "white",
			PlayedAt:        teeTime,
			HoleStrokes:     allFours(),
			TotalStrokes:    36,
			TotalStableford: 18,
			Completed:       true,
			UpdatedAt:       fixedNow,
		}
		if _, err := localstore.Add(tx, localstore.TableRounds, &r); err != nil {
			return err
		}
		m := match.Match{
			Player1:   match.Player{ID: aliceID, Name: "Alice"},
			Player2:   match.Player{Name: "Guest"},
			CourseID:  c.ID,
			PlayedAt:  teeTime,
			Holes:     map[int]match.HoleResult{},
			Status:    match.StatusAllSquare,
			UpdatedAt: fixedNow,
		}
		_, err := localstore.Add(tx, localstore.TableMatches, &m)
		return err
	})
}

func acceptedResponse() syncapi.SyncResponse {
	resp := syncapi.SyncResponse{Success: true}
	resp.Results.Rounds.Succeeded(1, 900)
	resp.Results.Matches.Succeeded(1, 901)
	return resp
}

func serverActivity() syncapi.Activity {
	return syncapi.Activity{
		Rounds: []syncapi.Round{{
			ID:              900,
			UserID:          aliceID,
			CourseID:        501,
			TeeID:           "white",
			Date:            teeTime,
			Scores:          allFours(),
			TotalStrokes:    36,
			TotalStableford: 18,
			Completed:       true,
		}},
	}
}

func TestEngineSync_PushesAndStampsServerIDs(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seedPendingRound(t, store)

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c syncapi.Course) bool {
		return c.Name == "Test Nine" && len(c.Holes) == 9
	})).Return(syncapi.CreatedCourse{ID: 501}, nil).Once()
	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req syncapi.SyncRequest) bool {
		return req.UserID == aliceID &&
			len(req.Rounds) == 1 && req.Rounds[0].CourseID == 501 && req.Rounds[0].ClientID == 1 &&
			len(req.Matches) == 1 && req.Matches[0].Player2.ID == 7 && req.Matches[0].CourseID == 501
	})).Return(acceptedResponse(), nil).Once()
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{{ID: 501, Name: "Test Nine"}}, nil)
	remote.On("Activity", mock.Anything, aliceID).Return(serverActivity(), nil)

	engine := newTestEngine(t, remote, store)
	res, err := engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Pulled.Updated)
	assert.Equal(t, 0.0, res.Handicap)

	c := load[course.Course](t, store, localstore.TableCourses, 1)
	require.NotNil(t, c.ServerID)
	assert.Equal(t, int64(501), *c.ServerID)
	assert.True(t, c.Synced)

	r := load[round.Round](t, store, localstore.TableRounds, 1)
	require.NotNil(t, r.ServerID)
	assert.Equal(t, int64(900), *r.ServerID)
	assert.True(t, r.Synced)
	assert.Equal(t, int64(1), r.CourseID)

	m := load[match.Match](t, store, localstore.TableMatches, 1)
	require.NotNil(t, m.ServerID)
	assert.Equal(t, int64(901), *m.ServerID)
	assert.True(t, m.Synced)

	u := load[user.User](t, store, localstore.TableUsers, aliceID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 0.0, u.Handicap)

	remote.AssertExpectations(t)
}

func TestEngineSync_SecondRunPushesNothing(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seedPendingRound(t, store)

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("CreateCourse", mock.Anything, mock.Anything).Return(syncapi.CreatedCourse{ID: 501}, nil).Once()
	remote.On("Sync", mock.Anything, mock.Anything).Return(acceptedResponse(), nil).Once()
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{{ID: 501, Name: "Test Nine"}}, nil)
	remote.On("Activity", mock.Anything, aliceID).Return(serverActivity(), nil)

	engine := newTestEngine(t, remote, store)
	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Success)
	assert.Equal(t, 0, res.Failed)

	remote.AssertNumberOfCalls(t, "Sync", 1)
	remote.AssertNumberOfCalls(t, "CreateCourse", 1)
}

func TestEngineSync_PushesInProgressRound(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seed(t, store, func(tx localstore.Tx) error {
		c := testCourse("Test Nine")
		c.ServerID, c.Synced = int64Ptr(501), true
		if _, err := localstore.Add(tx, localstore.TableCourses, &c); err != nil {
			return err
		}
		r := round.Round{
			UserID:      aliceID,
			CourseID:    c.ID,
			TeeID:       "white",
			PlayedAt:    teeTime,
			HoleStrokes: map[int]int{1: 4, 2: 5},
			UpdatedAt:   fixedNow,
		}
		_, err := localstore.Add(tx, localstore.TableRounds, &r)
		return err
	})

	resp := syncapi.SyncResponse{Success: true}
	resp.Results.Rounds.Succeeded(1, 900)

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req syncapi.SyncRequest) bool {
		return len(req.Rounds) == 1 && !req.Rounds[0].Completed &&
			req.Rounds[0].CourseID == 501 && len(req.Rounds[0].Scores) == 2
	})).Return(resp, nil).Once()
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{{ID: 501, Name: "Test Nine"}}, nil)
	remote.On("Activity", mock.Anything, aliceID).Return(syncapi.Activity{}, nil)

	engine := newTestEngine(t, remote, store)
	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 0, res.Failed)

	r := load[round.Round](t, store, localstore.TableRounds, 1)
	require.NotNil(t, r.ServerID)
	assert.Equal(t, int64(900), *r.ServerID)
	assert.True(t, r.Synced)
	assert.False(t, r.Completed)

	remote.AssertExpectations(t)
}

func TestEngineSync_ConcurrentCallIsSkipped(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})

	remote := &remoteMock{}
	remote.On("EnsureSchema", mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(errors.New("server offline")).Once()

	engine := newTestEngine(t, remote, localstore.NewMemoryStore())

	done := make(chan error, 1)
	go func() {
		_, err := engine.Sync(context.Background())
		done <- err
	}()

	<-entered
	assert.True(t, engine.Running())

	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(release)
	require.ErrorContains(t, <-done, "schema repair")
	assert.False(t, engine.Running())
	remote.AssertNumberOfCalls(t, "EnsureSchema", 1)
}

func TestEngineSync_UserPhaseFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seedPendingRound(t, store)

	remote := &remoteMock{}
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("CreateCourse", mock.Anything, mock.Anything).Return(syncapi.CreatedCourse{ID: 501}, nil)
	remote.On("EnsureUser", mock.Anything, syncapi.EnsureUserRequest{ID: aliceID}).
		Return(syncapi.User{}, errors.New("connection refused"))

	engine := newTestEngine(t, remote, store)
	_, err := engine.Sync(context.Background())
	require.ErrorContains(t, err, "ensure users")

	remote.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	r := load[round.Round](t, store, localstore.TableRounds, 1)
	assert.False(t, r.Synced)
}

func TestEngineSync_CourseFailureSendsStaleID(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seedPendingRound(t, store)

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("CreateCourse", mock.Anything, mock.Anything).Return(syncapi.CreatedCourse{}, errors.New("validation failed"))
	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req syncapi.SyncRequest) bool {
		return len(req.Rounds) == 1 && req.Rounds[0].CourseID == 1
	})).Return(syncapi.SyncResponse{Success: true}, nil).Once()
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{}, nil)
	remote.On("Activity", mock.Anything, aliceID).Return(syncapi.Activity{}, nil)

	engine := newTestEngine(t, remote, store)
	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "Test Nine")

	c := load[course.Course](t, store, localstore.TableCourses, 1)
	assert.Nil(t, c.ServerID)
	assert.False(t, c.Synced)
	remote.AssertExpectations(t)
}

func TestEngineSync_MatchWithoutOpponentIsCountedFailed(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seed(t, store, func(tx localstore.Tx) error {
		c := testCourse("Test Nine")
		sid := int64(501)
		c.ServerID, c.Synced = &sid, true
		if _, err := localstore.Add(tx, localstore.TableCourses, &c); err != nil {
			return err
		}
		m := match.Match{
			Player1:  match.Player{ID: aliceID, Name: "Alice"},
			Player2:  match.Player{Name: "Bob"},
			CourseID: c.ID,
			PlayedAt: teeTime,
		}
		_, err := localstore.Add(tx, localstore.TableMatches, &m)
		return err
	})

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{}, nil)
	remote.On("Activity", mock.Anything, aliceID).Return(syncapi.Activity{}, nil)

	engine := newTestEngine(t, remote, store)
	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "no resolved opponent")

	remote.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestEngineSync_PushFailureLeavesRecordsUnsynced(t *testing.T) {
	t.Parallel()

	store := localstore.NewMemoryStore()
	seedPendingRound(t, store)

	remote := &remoteMock{}
	remote.expectUsers(7)
	remote.On("EnsureSchema", mock.Anything).Return(nil)
	remote.On("CreateCourse", mock.Anything, mock.Anything).Return(syncapi.CreatedCourse{ID: 501}, nil)
	remote.On("Sync", mock.Anything, mock.Anything).Return(syncapi.SyncResponse{}, errors.New("503 from server"))
	remote.On("ListCourses", mock.Anything).Return([]syncapi.Course{}, errors.New("503 from server"))
	remote.On("Activity", mock.Anything, aliceID).Return(syncapi.Activity{}, errors.New("503 from server"))

	engine := newTestEngine(t, remote, store)
	res, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 3)

	r := load[round.Round](t, store, localstore.TableRounds, 1)
	assert.False(t, r.Synced)
	assert.Nil(t, r.ServerID)
}

func TestNewEngine_RequiresUser(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(&remoteMock{}, localstore.NewMemoryStore(), EngineConfig{})
	require.Error(t, err)
}
