package usecase

import (
	"context"
	"testing"

	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBracketLeague(t *testing.T, f *serverFixture, members ...int64) league.League {
	t.Helper()

	ctx := context.Background()
	l, err := f.leagues.Create(ctx, league.League{Name: "Club Cup", Format: league.FormatBracket, Period: league.PeriodWeek, OwnerID: members[0]})
	require.NoError(t, err)
	for _, id := range members {
		require.NoError(t, f.leagues.AddMember(ctx, league.Member{LeagueID: l.ID, UserID: id}))
	}
	return l
}

func TestBracketService_StartTournamentFromMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	for _, name := range []string{"Cara", "Dev"} {
		_, err := f.users.Create(ctx, userNamed(name))
		require.NoError(t, err)
	}
	l := newBracketLeague(t, f, 2, 3, 4, 5)
	service := NewBracketService(f.leagues, f.engine, f.logger)

	nodes, err := service.StartTournament(ctx, StartTournamentInput{LeagueID: l.ID})
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	seeded := map[int64]bool{}
	for _, n := range nodes {
		if n.RoundNumber != 1 {
			continue
		}
		require.NotNil(t, n.Player1ID)
		require.NotNil(t, n.Player2ID)
		seeded[*n.Player1ID] = true
		seeded[*n.Player2ID] = true
	}
	assert.Len(t, seeded, 4)

	_, err = service.StartTournament(ctx, StartTournamentInput{LeagueID: l.ID})
	require.ErrorIs(t, err, ErrConflict)
}

func TestBracketService_AdvanceMatchFillsNextRound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	for _, name := range []string{"Cara", "Dev"} {
		_, err := f.users.Create(ctx, userNamed(name))
		require.NoError(t, err)
	}
	l := newBracketLeague(t, f, 2, 3, 4, 5)
	service := NewBracketService(f.leagues, f.engine, f.logger)

	nodes, err := service.StartTournament(ctx, StartTournamentInput{LeagueID: l.ID})
	require.NoError(t, err)
	first := nodes[0]
	require.Equal(t, 1, first.RoundNumber)
	require.Equal(t, 1, first.MatchNumber)

	result, err := service.AdvanceMatch(ctx, AdvanceMatchInput{LeagueID: l.ID, LeagueMatchID: first.ID, WinnerID: *first.Player1ID})
	require.NoError(t, err)
	require.NotNil(t, result.Next)
	assert.Equal(t, 2, result.Next.RoundNumber)
	require.NotNil(t, result.Next.Player1ID)
	assert.Equal(t, *first.Player1ID, *result.Next.Player1ID)
	assert.False(t, result.Finished)
}

func TestBracketService_AdvanceMatchErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServerFixture()
	l := newBracketLeague(t, f, 2, 3)
	service := NewBracketService(f.leagues, f.engine, f.logger)
	nodes, err := service.StartTournament(ctx, StartTournamentInput{LeagueID: l.ID})
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	_, err = service.AdvanceMatch(ctx, AdvanceMatchInput{LeagueID: l.ID, LeagueMatchID: nodes[0].ID, WinnerID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.AdvanceMatch(ctx, AdvanceMatchInput{LeagueID: l.ID, LeagueMatchID: 9999, WinnerID: 2})
	require.ErrorIs(t, err, ErrNotFound)

	stroke, err := f.leagues.Create(ctx, league.League{Name: "Stroke", Format: league.FormatStroke, Period: league.PeriodWeek, OwnerID: 2})
	require.NoError(t, err)
	_, err = service.Bracket(ctx, stroke.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBracketService_StartTournamentNeedsTwoPlayers(t *testing.T) {
	t.Parallel()

	f := newServerFixture()
	l := newBracketLeague(t, f, 2)
	service := NewBracketService(f.leagues, f.engine, f.logger)

	_, err := service.StartTournament(context.Background(), StartTournamentInput{LeagueID: l.ID})
	require.ErrorIs(t, err, ErrInvalidInput)
}
