package round

import (
	"context"
	"time"
)

// Round is one user's scorecard. CourseID is in the id space of the store that
// holds the round.
type Round struct {
	ID              int64       `json:"id"`
	ServerID        *int64      `json:"serverId,omitempty"`
	Synced          bool        `json:"synced"`
	UserID          int64       `json:"userId"`
	CourseID        int64       `json:"courseId"`
	TeeID           string      `json:"teeId,omitempty"`
	PlayedAt        time.Time   `json:"playedAt"`
	HoleStrokes     map[int]int `json:"holeStrokes"`
	TotalStrokes    int         `json:"totalStrokes"`
	TotalStableford int         `json:"totalStableford"`
	HcpIndex        float64     `json:"hcpIndex"`
	PlayingHcp      int         `json:"playingHcp"`
	LeagueID        *int64      `json:"leagueId,omitempty"`
	Completed       bool        `json:"completed"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (r *Round) Key() int64 {
	return r.ID
}

func (r *Round) SetKey(id int64) {
	r.ID = id
}

// NaturalTime normalises a play time to the precision used by natural keys.
func NaturalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

type Repository interface {
	// FindByNaturalKey matches on user, course and play time.
	FindByNaturalKey(ctx context.Context, userID, courseID int64, playedAt time.Time) (Round, bool, error)
	Create(ctx context.Context, r Round) (Round, error)
	Update(ctx context.Context, r Round) error
	ListByUser(ctx context.Context, userID int64) ([]Round, error)
}
