// Package offline is the client side of the golf sync: local score entry,
// identity reconciliation and the push/pull sync engine.
package offline

import (
	"context"

	"github.com/riskibarqy/golf-league/internal/syncapi"
)

// RemoteAPI is the subset of the sync server the engine talks to.
// *golfapi.Client satisfies it.
type RemoteAPI interface {
	EnsureSchema(ctx context.Context) error
	EnsureUser(ctx context.Context, req syncapi.EnsureUserRequest) (syncapi.User, error)
	GetUser(ctx context.Context, userID int64) (syncapi.User, error)
	ListCourses(ctx context.Context) ([]syncapi.Course, error)
	CreateCourse(ctx context.Context, in syncapi.Course) (syncapi.CreatedCourse, error)
	Sync(ctx context.Context, req syncapi.SyncRequest) (syncapi.SyncResponse, error)
	Activity(ctx context.Context, userID int64) (syncapi.Activity, error)
}
