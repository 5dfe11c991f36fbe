package match

import (
	"context"
	"time"
)

const (
	WinnerPlayer1 = "p1"
	WinnerPlayer2 = "p2"
	WinnerHalved  = "halved"
)

type Player struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	PlayingHcp int    `json:"playingHcp"`
}

type HoleResult struct {
	P1Score int    `json:"p1Score"`
	P2Score int    `json:"p2Score"`
	Winner  string `json:"winner"`
}

// Match is a 1v1 match-play game. Winner and differentials are only set once
// the match is completed.
type Match struct {
	ID                  int64              `json:"id"`
	ServerID            *int64             `json:"serverId,omitempty"`
	Synced              bool               `json:"synced"`
	Player1             Player             `json:"player1"`
	Player2             Player             `json:"player2"`
	CourseID            int64              `json:"courseId"`
	TeeID               string             `json:"teeId,omitempty"`
	PlayedAt            time.Time          `json:"playedAt"`
	Holes               map[int]HoleResult `json:"holes"`
	Status              string             `json:"status"`
	WinnerID            *int64             `json:"winnerId,omitempty"`
	Completed           bool               `json:"completed"`
	LeagueMatchID       *int64             `json:"leagueMatchId,omitempty"`
	CountForHandicap    bool               `json:"countForHandicap"`
	Player1Differential *float64           `json:"player1Differential,omitempty"`
	Player2Differential *float64           `json:"player2Differential,omitempty"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func (m *Match) Key() int64 {
	return m.ID
}

func (m *Match) SetKey(id int64) {
	m.ID = id
}

type Repository interface {
	// FindByNaturalKey matches on both players, course and play time.
	FindByNaturalKey(ctx context.Context, player1ID, player2ID, courseID int64, playedAt time.Time) (Match, bool, error)
	Create(ctx context.Context, m Match) (Match, error)
	Update(ctx context.Context, m Match) error
	ListByPlayer(ctx context.Context, userID int64) ([]Match, error)
}
