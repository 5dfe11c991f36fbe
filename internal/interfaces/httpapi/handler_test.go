package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/riskibarqy/golf-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	users := memory.NewUserRepository(memory.SeedUsers())
	courses := memory.NewCourseRepository(memory.SeedCourses())
	rounds := memory.NewRoundRepository()
	matches := memory.NewMatchRepository()
	skinsRepo := memory.NewSkinsRepository()
	leagues := memory.NewLeagueRepository()
	leagueRounds := memory.NewLeagueRoundRepository()
	leagueMatches := memory.NewLeagueMatchRepository()
	guard := memory.NewSchemaGuard(users, logger)
	engine := bracket.NewEngine(leagueMatches, nil)

	handler := NewHandler(
		usecase.NewSyncService(usecase.SyncServiceDeps{
			Guard:        guard,
			Users:        users,
			Courses:      courses,
			Rounds:       rounds,
			Matches:      matches,
			Skins:        skinsRepo,
			LeagueRounds: leagueRounds,
			Bracket:      engine,
			Logger:       logger,
		}),
		usecase.NewActivityService(rounds, matches, skinsRepo, leagueMatches),
		usecase.NewCourseService(courses),
		usecase.NewUserService(guard, users),
		usecase.NewLeagueService(leagues, leagueRounds, users),
		usecase.NewBracketService(leagues, engine, logger),
		usecase.NewHandicapJobService(users, rounds, courses, logger),
		logger,
	)
	return NewRouter(handler, logger, RouterOptions{InternalJobToken: testJobToken})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(raw)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) {
	t.Helper()

	var env struct {
		Data  sonic.NoCopyRawMessage `json:"data"`
		Error *googleErrorBody       `json:"error"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env))
	require.Nil(t, env.Error)
	require.NoError(t, sonic.Unmarshal(env.Data, data))
}

func TestSyncRoute_BareContractAndActivity(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	scores := map[int]int{}
	for hole := 1; hole <= 9; hole++ {
		scores[hole] = 5
	}
	push := syncapi.SyncRequest{
		UserID: 5,
		Rounds: []syncapi.Round{{
			ClientID: 11, UserID: 5, CourseID: memory.CourseIDLinksNine,
			Date: time.Date(2024, 5, 2, 7, 30, 0, 0, time.UTC), Scores: scores, Completed: true,
		}},
	}

	rec := doJSON(t, router, http.MethodPost, "/sync", push)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp syncapi.SyncResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Results.Rounds.Success)
	assert.NotNil(t, resp.Results.Matches.Errors)

	rec = doJSON(t, router, http.MethodGet, "/api/user/5/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activity syncapi.Activity
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &activity))
	require.Len(t, activity.Rounds, 1)
	assert.Equal(t, 45, activity.Rounds[0].TotalStrokes)
}

func TestSyncRoute_RejectsMissingUser(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/sync", map[string]any{"rounds": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	holes := make([]syncapi.Hole, 0, 9)
	for i := 1; i <= 9; i++ {
		holes = append(holes, syncapi.Hole{Number: i, Par: 4, StrokeIndex: i})
	}

	rec := doJSON(t, router, http.MethodPost, "/courses", syncapi.Course{Name: "Harbour Town", Holes: holes, Rating: 35, Slope: 120, Par: 36})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created syncapi.CreatedCourse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []syncapi.Course
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestLeagueRoutes_BracketFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, name := range []string{"Ann", "Ben"} {
		rec := doJSON(t, router, http.MethodPost, "/api/users/ensure", syncapi.EnsureUserRequest{Name: name})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodPost, "/api/leagues", createLeagueRequest{Name: "Club Cup", Format: "bracket", OwnerID: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	decodeEnvelope(t, rec, &created)

	rec = doJSON(t, router, http.MethodPost, "/api/leagues/1/members", joinLeagueRequest{UserID: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/leagues/1/start-tournament", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var nodes []syncapi.LeagueMatch
	decodeEnvelope(t, rec, &nodes)
	require.Len(t, nodes, 1)

	rec = doJSON(t, router, http.MethodPost, "/api/leagues/1/start-tournament", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/leagues/1/advance-match", advanceMatchRequest{LeagueMatchID: nodes[0].ID, WinnerID: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var advanced advanceMatchResponse
	decodeEnvelope(t, rec, &advanced)
	require.NotNil(t, advanced.Match.WinnerID)
	assert.Equal(t, int64(3), *advanced.Match.WinnerID)

	rec = doJSON(t, router, http.MethodGet, "/api/leagues/1/standings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalJobRoute_RequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/v1/internal/jobs/recompute-handicaps", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/internal/jobs/recompute-handicaps", nil, "X-Internal-Job-Token", testJobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result usecase.RecomputeHandicapsResult
	decodeEnvelope(t, rec, &result)
	assert.Equal(t, 1, result.TaskCount)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestGetUser_NotFoundUsesEnvelope(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/api/users/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	errorObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errorObj["status"])
}
