package league

import (
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatStroke  Format = "stroke"
	FormatBracket Format = "bracket"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// League is a season-long competition between members.
type League struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Format    Format    `json:"format"`
	Period    Period    `json:"period"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	switch l.Format {
	case FormatStroke, FormatBracket:
	default:
		return fmt.Errorf("unsupported league format %q", l.Format)
	}
	switch l.Period {
	case PeriodWeek, PeriodMonth:
	default:
		return fmt.Errorf("unsupported league period %q", l.Period)
	}
	return nil
}

type Member struct {
	LeagueID int64     `json:"leagueId"`
	UserID   int64     `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Round links a completed round to a stroke-play league. There is at most one
// per (LeagueID, RoundID).
type Round struct {
	ID       int64     `json:"id"`
	LeagueID int64     `json:"leagueId"`
	RoundID  int64     `json:"roundId"`
	UserID   int64     `json:"userId"`
	Points   int       `json:"points"`
	PlayedAt time.Time `json:"playedAt"`
}

// SuddenDeathRound holds overflow matches that never feed another round.
const SuddenDeathRound = 99

type NodeState string

const (
	NodePending NodeState = "pending"
	NodeReady   NodeState = "ready"
	NodeBye     NodeState = "bye"
	NodeDecided NodeState = "decided"
)

// Match is one node of a single-elimination bracket.
type Match struct {
	ID            int64     `json:"id"`
	LeagueID      int64     `json:"leagueId"`
	RoundNumber   int       `json:"roundNumber"`
	MatchNumber   int       `json:"matchNumber"`
	Player1ID     *int64    `json:"player1Id,omitempty"`
	Player2ID     *int64    `json:"player2Id,omitempty"`
	WinnerID      *int64    `json:"winnerId,omitempty"`
	LinkedMatchID *int64    `json:"linkedMatchId,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (m *Match) Key() int64 {
	return m.ID
}

func (m *Match) SetKey(id int64) {
	m.ID = id
}

func (m Match) State() NodeState {
	players := 0
	if m.Player1ID != nil {
		players++
	}
	if m.Player2ID != nil {
		players++
	}

	switch {
	case m.WinnerID != nil && players == 1:
		return NodeBye
	case m.WinnerID != nil:
		return NodeDecided
	case players == 2:
		return NodeReady
	default:
		return NodePending
	}
}

// HasPlayer reports whether userID occupies either slot.
func (m Match) HasPlayer(userID int64) bool {
	return (m.Player1ID != nil && *m.Player1ID == userID) ||
		(m.Player2ID != nil && *m.Player2ID == userID)
}
