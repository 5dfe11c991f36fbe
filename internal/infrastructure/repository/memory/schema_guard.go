package memory

import (
	"context"

	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

// SchemaGuard is the in-memory counterpart of the postgres guard. There is
// no schema to repair; only missing users are restored.
type SchemaGuard struct {
	users  *UserRepository
	logger *logging.Logger
}

func NewSchemaGuard(users *UserRepository, logger *logging.Logger) *SchemaGuard {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchemaGuard{users: users, logger: logger}
}

func (g *SchemaGuard) EnsureSchema(_ context.Context) error {
	return nil
}

func (g *SchemaGuard) EnsureUserExists(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	if g.users.restore(id) {
		g.logger.WarnContext(ctx, "restored missing user as placeholder", "user_id", id)
	}
	return nil
}
