package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var playedAt = time.Date(2024, 7, 4, 8, 0, 0, 0, time.UTC)

func allFours() map[int]int {
	scores := make(map[int]int, 9)
	for hole := 1; hole <= 9; hole++ {
		scores[hole] = 4
	}
	return scores
}

func TestSyncService_Ingest_RoundUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	service := f.syncService(nil)
	req := syncapi.SyncRequest{
		UserID: 2,
		Rounds: []syncapi.Round{{
			ClientID: 5, UserID: 2, CourseID: 10, Date: playedAt, Scores: allFours(),
			TotalStableford: 99, Completed: true,
		}},
	}

	first, err := service.Ingest(ctx, req)
	require.NoError(t, err)
	second, err := service.Ingest(ctx, req)
	require.NoError(t, err)

	require.Equal(t, 1, first.Results.Rounds.Success)
	require.Len(t, first.Results.Rounds.Items, 1)
	assert.Equal(t, first.Results.Rounds.Items[0].ServerID, second.Results.Rounds.Items[0].ServerID)
	assert.Equal(t, int64(5), first.Results.Rounds.Items[0].ClientID)

	rounds, err := f.rounds.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	// Par 36 all fours with index 0: 36 strokes, 2 points on pars, 3 on par 5s, 1 on par 3s.
	assert.Equal(t, 36, rounds[0].TotalStrokes)
	assert.Equal(t, 18, rounds[0].TotalStableford)
}

func TestSyncService_Ingest_LeagueRoundStaysUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	service := f.syncService(nil)
	l, err := f.leagues.Create(ctx, league.League{Name: "Tuesday", Format: league.FormatStroke, Period: league.PeriodWeek, OwnerID: 2})
	require.NoError(t, err)

	req := syncapi.SyncRequest{
		UserID: 2,
		Rounds: []syncapi.Round{{ClientID: 1, UserID: 2, CourseID: 10, Date: playedAt, Scores: allFours(), LeagueID: &l.ID, Completed: true}},
	}
	for i := 0; i < 3; i++ {
		_, err := service.Ingest(ctx, req)
		require.NoError(t, err)
	}

	rows, err := f.leagueRounds.ListByLeague(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 18, rows[0].Points)
}

func TestSyncService_Ingest_RestoresMissingUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	service := f.syncService(nil)

	_, err := service.Ingest(ctx, syncapi.SyncRequest{UserID: 77})
	require.NoError(t, err)

	restored, found, err := f.users.GetByID(ctx, 77)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Restored_User_77", restored.Name)
}

func TestSyncService_Ingest_SchemaFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newServerFixture()
	guard := &mockSchemaGuard{}
	guard.On("EnsureSchema", mock.Anything).Return(errors.New("connection refused")).Once()

	_, err := f.syncService(guard).Ingest(context.Background(), syncapi.SyncRequest{UserID: 2})
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	guard.AssertExpectations(t)
	guard.AssertNotCalled(t, "EnsureUserExists", mock.Anything, mock.Anything)
}

func TestSyncService_Ingest_MatchWithoutOpponentFails(t *testing.T) {
	t.Parallel()

	f := newServerFixture()
	resp, err := f.syncService(nil).Ingest(context.Background(), syncapi.SyncRequest{
		UserID: 2,
		Matches: []syncapi.Match{{
			ClientID: 3,
			Player1:  syncapi.MatchPlayer{ID: 2, Name: "Alice"},
			Player2:  syncapi.MatchPlayer{Name: "Unknown"},
			CourseID: 10,
			Date:     playedAt,
		}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Results.Matches.Failed)
	assert.Equal(t, syncapi.ItemFailed, resp.Results.Matches.Items[0].Status)
}

func TestSyncService_Ingest_ClaimsGuestMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	service := f.syncService(nil)

	guestMatch := syncapi.Match{
		ClientID: 1,
		Player1:  syncapi.MatchPlayer{ID: 2, Name: "Alice"},
		Player2:  syncapi.MatchPlayer{ID: 1, Name: "Guest"},
		CourseID: 10,
		Date:     playedAt,
		Status:   "1 UP",
	}
	first, err := service.Ingest(ctx, syncapi.SyncRequest{UserID: 2, Matches: []syncapi.Match{guestMatch}})
	require.NoError(t, err)

	claimed := guestMatch
	claimed.Player2 = syncapi.MatchPlayer{ID: 3, Name: "Bob"}
	second, err := service.Ingest(ctx, syncapi.SyncRequest{UserID: 2, Matches: []syncapi.Match{claimed}})
	require.NoError(t, err)

	assert.Equal(t, first.Results.Matches.Items[0].ServerID, second.Results.Matches.Items[0].ServerID)
	matches, err := f.matches.ListByPlayer(ctx, 2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(3), matches[0].Player2.ID)
}

func TestSyncService_Ingest_AdvancesBracketOnDecidedLeagueMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	l, err := f.leagues.Create(ctx, league.League{Name: "Cup", Format: league.FormatBracket, Period: league.PeriodWeek, OwnerID: 2})
	require.NoError(t, err)
	nodes, err := f.engine.Create(ctx, l.ID, []int64{2, 3})
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	resp, err := f.syncService(nil).Ingest(ctx, syncapi.SyncRequest{
		UserID: 2,
		Matches: []syncapi.Match{{
			ClientID:      4,
			Player1:       syncapi.MatchPlayer{ID: 2, Name: "Alice"},
			Player2:       syncapi.MatchPlayer{ID: 3, Name: "Bob"},
			CourseID:      10,
			Date:          playedAt,
			Status:        "3 & 2",
			WinnerID:      int64Ptr(3),
			Completed:     true,
			LeagueMatchID: &nodes[0].ID,
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Results.Matches.Success)
	assert.Empty(t, resp.Results.Matches.Items[0].Error)

	bracketNodes, err := f.engine.List(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, bracketNodes[0].WinnerID)
	assert.Equal(t, int64(3), *bracketNodes[0].WinnerID)
	require.NotNil(t, bracketNodes[0].LinkedMatchID)
	assert.Equal(t, resp.Results.Matches.Items[0].ServerID, *bracketNodes[0].LinkedMatchID)
}

func TestSyncService_Ingest_AdvanceFailureKeepsMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	resp, err := f.syncService(nil).Ingest(ctx, syncapi.SyncRequest{
		UserID: 2,
		Matches: []syncapi.Match{{
			ClientID:      4,
			Player1:       syncapi.MatchPlayer{ID: 2, Name: "Alice"},
			Player2:       syncapi.MatchPlayer{ID: 3, Name: "Bob"},
			CourseID:      10,
			Date:          playedAt,
			Status:        "2 UP",
			WinnerID:      int64Ptr(2),
			Completed:     true,
			LeagueMatchID: int64Ptr(999),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Results.Matches.Success)
	assert.Equal(t, 0, resp.Results.Matches.Failed)
	assert.NotEmpty(t, resp.Results.Matches.Items[0].Error)
	assert.NotZero(t, resp.Results.Matches.Items[0].ServerID)
}

func TestSyncService_Ingest_SkinsGameTallied(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	resp, err := f.syncService(nil).Ingest(ctx, syncapi.SyncRequest{
		UserID: 2,
		SkinsGames: []syncapi.SkinsGame{{
			ClientID: 8,
			UserID:   2,
			CourseID: 10,
			Date:     playedAt,
			Players:  []string{"Alice", "Bob"},
			Scores: map[string]map[int]int{
				"Alice": {1: 4, 2: 5},
				"Bob":   {1: 4, 2: 4},
			},
			Completed: true,
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Results.SkinsGames.Success)

	games, err := f.skins.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Len(t, games[0].Results, 2)
	assert.Equal(t, "Bob", games[0].Results[1].Winner)
	assert.Equal(t, 2, games[0].Results[1].Skins)
}
