package usecase

import (
	"context"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
)

// SchemaGuard repairs schema drift and dangling user references before writes.
type SchemaGuard interface {
	EnsureSchema(ctx context.Context) error
	EnsureUserExists(ctx context.Context, id int64) error
}

type BracketAdvancer interface {
	Advance(ctx context.Context, leagueMatchID, winnerID int64, linkedMatchID *int64) (bracket.AdvanceResult, error)
}
