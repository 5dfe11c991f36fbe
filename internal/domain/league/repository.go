package league

import "context"

type Repository interface {
	Create(ctx context.Context, l League) (League, error)
	GetByID(ctx context.Context, id int64) (League, bool, error)
	AddMember(ctx context.Context, m Member) error
	ListMembers(ctx context.Context, leagueID int64) ([]Member, error)
}

type RoundRepository interface {
	// Upsert keys on (LeagueID, RoundID).
	Upsert(ctx context.Context, r Round) (Round, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Round, error)
}

type MatchRepository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Match, error)
	ListByPlayer(ctx context.Context, userID int64) ([]Match, error)
}
