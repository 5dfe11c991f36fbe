// Package syncapi holds the JSON contract between the offline client and the
// sync server.
package syncapi

import "time"

const (
	ItemSuccess = "success"
	ItemFailed  = "failed"
	ItemSkipped = "skipped"
)

type SyncRequest struct {
	UserID     int64       `json:"userId" validate:"required,gt=0"`
	Rounds     []Round     `json:"rounds" validate:"dive"`
	Matches    []Match     `json:"matches" validate:"dive"`
	SkinsGames []SkinsGame `json:"skinsGames" validate:"dive"`
}

type ItemResult struct {
	ClientID int64  `json:"clientId"`
	ServerID int64  `json:"serverId,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type RecordResults struct {
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Errors  []string     `json:"errors"`
	Items   []ItemResult `json:"items,omitempty"`
}

func (r *RecordResults) Succeeded(clientID, serverID int64) {
	r.Success++
	r.Items = append(r.Items, ItemResult{ClientID: clientID, ServerID: serverID, Status: ItemSuccess})
}

// Warn counts the record as stored while reporting a follow-up failure.
func (r *RecordResults) Warn(clientID, serverID int64, err error) {
	r.Success++
	r.Errors = append(r.Errors, err.Error())
	r.Items = append(r.Items, ItemResult{ClientID: clientID, ServerID: serverID, Status: ItemSuccess, Error: err.Error()})
}

func (r *RecordResults) Fail(clientID int64, err error) {
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
	r.Items = append(r.Items, ItemResult{ClientID: clientID, Status: ItemFailed, Error: err.Error()})
}

type SyncResults struct {
	Rounds     RecordResults `json:"rounds"`
	Matches    RecordResults `json:"matches"`
	SkinsGames RecordResults `json:"skinsGames"`
}

type SyncResponse struct {
	Success bool        `json:"success"`
	Results SyncResults `json:"results"`
}

type Round struct {
	ClientID        int64       `json:"clientId"`
	ID              int64       `json:"id,omitempty"`
	UserID          int64       `json:"userId" validate:"required,gt=0"`
	CourseID        int64       `json:"courseId" validate:"required,gt=0"`
	TeeID           string      `json:"teeId,omitempty"`
	Date            time.Time   `json:"date" validate:"required"`
	Scores          map[int]int `json:"scores"`
	TotalStrokes    int         `json:"totalStrokes" validate:"gte=0"`
	TotalStableford int         `json:"totalStableford" validate:"gte=0"`
	HcpIndex        float64     `json:"hcpIndex"`
	PlayingHcp      int         `json:"playingHcp"`
	LeagueID        *int64      `json:"leagueId,omitempty"`
	Completed       bool        `json:"completed"`
}

type MatchPlayer struct {
	ID         int64  `json:"id" validate:"gt=0"`
	Name       string `json:"name" validate:"max=120"`
	PlayingHcp int    `json:"playingHcp"`
}

type HoleResult struct {
	P1Score int    `json:"p1Score"`
	P2Score int    `json:"p2Score"`
	Winner  string `json:"winner" validate:"omitempty,oneof=p1 p2 halved"`
}

type Match struct {
	ClientID            int64              `json:"clientId"`
	ID                  int64              `json:"id,omitempty"`
	Player1             MatchPlayer        `json:"player1"`
	Player2             MatchPlayer        `json:"player2"`
	CourseID            int64              `json:"courseId" validate:"required,gt=0"`
	TeeID               string             `json:"teeId,omitempty"`
	Date                time.Time          `json:"date" validate:"required"`
	Holes               map[int]HoleResult `json:"holes" validate:"dive"`
	Status              string             `json:"status"`
	WinnerID            *int64             `json:"winnerId,omitempty"`
	Completed           bool               `json:"completed"`
	LeagueMatchID       *int64             `json:"leagueMatchId,omitempty"`
	CountForHandicap    bool               `json:"countForHandicap"`
	Player1Differential *float64           `json:"player1Differential,omitempty"`
	Player2Differential *float64           `json:"player2Differential,omitempty"`
}

type SkinResult struct {
	Hole   int    `json:"hole"`
	Winner string `json:"winner,omitempty"`
	Skins  int    `json:"skins"`
}

type SkinsGame struct {
	ClientID  int64                  `json:"clientId"`
	ID        int64                  `json:"id,omitempty"`
	UserID    int64                  `json:"userId" validate:"required,gt=0"`
	CourseID  int64                  `json:"courseId" validate:"required,gt=0"`
	Date      time.Time              `json:"date" validate:"required"`
	Players   []string               `json:"players" validate:"required,min=2,dive,required"`
	Scores    map[string]map[int]int `json:"scores"`
	SkinValue float64                `json:"skinValue" validate:"gte=0"`
	Results   []SkinResult           `json:"results,omitempty"`
	Completed bool                   `json:"completed"`
}

type LeagueMatch struct {
	ID            int64  `json:"id"`
	LeagueID      int64  `json:"leagueId"`
	RoundNumber   int    `json:"roundNumber"`
	MatchNumber   int    `json:"matchNumber"`
	Player1ID     *int64 `json:"player1Id,omitempty"`
	Player2ID     *int64 `json:"player2Id,omitempty"`
	WinnerID      *int64 `json:"winnerId,omitempty"`
	LinkedMatchID *int64 `json:"linkedMatchId,omitempty"`
}

type Activity struct {
	Rounds        []Round       `json:"rounds"`
	Matches       []Match       `json:"matches"`
	SkinsGames    []SkinsGame   `json:"skinsGames"`
	LeagueMatches []LeagueMatch `json:"leagueMatches,omitempty"`
}

type Hole struct {
	Number      int `json:"number" validate:"gte=1,lte=18"`
	Par         int `json:"par" validate:"gte=3,lte=6"`
	StrokeIndex int `json:"strokeIndex" validate:"gte=1,lte=18"`
	Distance    int `json:"distance,omitempty" validate:"gte=0"`
}

type Tee struct {
	ID     string  `json:"id" validate:"required,max=40"`
	Name   string  `json:"name" validate:"max=80"`
	Slope  float64 `json:"slope" validate:"gte=55,lte=155"`
	Rating float64 `json:"rating" validate:"gt=0"`
}

type Course struct {
	ID     int64   `json:"id,omitempty"`
	Name   string  `json:"name" validate:"required,max=120"`
	Holes  []Hole  `json:"holes" validate:"required,dive"`
	Tees   []Tee   `json:"tees,omitempty" validate:"dive"`
	Rating float64 `json:"rating" validate:"gte=0"`
	Slope  float64 `json:"slope" validate:"gte=0"`
	Par    int     `json:"par" validate:"gte=0"`
}

type CreatedCourse struct {
	ID int64 `json:"id"`
}

type User struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Handicap    float64 `json:"handicap"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// EnsureUserRequest restores a user by id, or finds-or-creates one by name
// when ID is zero.
type EnsureUserRequest struct {
	ID       int64    `json:"id" validate:"gte=0"`
	Name     string   `json:"name" validate:"required_without=ID,max=120"`
	Handicap *float64 `json:"handicap,omitempty"`
}
