package syncapi

import (
	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/domain/user"
)

func serverIDOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// RoundFrom builds the payload for a local round. courseID must already be in
// the server's id space.
func RoundFrom(r round.Round, courseID int64) Round {
	return Round{
		ClientID:        r.ID,
		ID:              serverIDOrZero(r.ServerID),
		UserID:          r.UserID,
		CourseID:        courseID,
		TeeID:           r.TeeID,
		Date:            round.NaturalTime(r.PlayedAt),
		Scores:          copyScores(r.HoleStrokes),
		TotalStrokes:    r.TotalStrokes,
		TotalStableford: r.TotalStableford,
		HcpIndex:        r.HcpIndex,
		PlayingHcp:      r.PlayingHcp,
		LeagueID:        r.LeagueID,
		Completed:       r.Completed,
	}
}

// ToDomain returns a round in the server's id space.
func (r Round) ToDomain() round.Round {
	return round.Round{
		ID:              r.ID,
		UserID:          r.UserID,
		CourseID:        r.CourseID,
		TeeID:           r.TeeID,
		PlayedAt:        round.NaturalTime(r.Date),
		HoleStrokes:     copyScores(r.Scores),
		TotalStrokes:    r.TotalStrokes,
		TotalStableford: r.TotalStableford,
		HcpIndex:        r.HcpIndex,
		PlayingHcp:      r.PlayingHcp,
		LeagueID:        r.LeagueID,
		Completed:       r.Completed,
	}
}

// ServerRound builds the payload for a round owned by the server store.
func ServerRound(r round.Round) Round {
	out := RoundFrom(r, r.CourseID)
	out.ClientID, out.ID = 0, r.ID
	return out
}

func MatchFrom(m match.Match, courseID int64) Match {
	holes := make(map[int]HoleResult, len(m.Holes))
	for n, h := range m.Holes {
		holes[n] = HoleResult{P1Score: h.P1Score, P2Score: h.P2Score, Winner: h.Winner}
	}
	return Match{
		ClientID:            m.ID,
		ID:                  serverIDOrZero(m.ServerID),
		Player1:             MatchPlayer{ID: m.Player1.ID, Name: m.Player1.Name, PlayingHcp: m.Player1.PlayingHcp},
		Player2:             MatchPlayer{ID: m.Player2.ID, Name: m.Player2.Name, PlayingHcp: m.Player2.PlayingHcp},
		CourseID:            courseID,
		TeeID:               m.TeeID,
		Date:                round.NaturalTime(m.PlayedAt),
		Holes:               holes,
		Status:              m.Status,
		WinnerID:            m.WinnerID,
		Completed:           m.Completed,
		LeagueMatchID:       m.LeagueMatchID,
		CountForHandicap:    m.CountForHandicap,
		Player1Differential: m.Player1Differential,
		Player2Differential: m.Player2Differential,
	}
}

func (m Match) ToDomain() match.Match {
	holes := make(map[int]match.HoleResult, len(m.Holes))
	for n, h := range m.Holes {
		holes[n] = match.HoleResult{P1Score: h.P1Score, P2Score: h.P2Score, Winner: h.Winner}
	}
	return match.Match{
		ID:                  m.ID,
		Player1:             match.Player{ID: m.Player1.ID, Name: m.Player1.Name, PlayingHcp: m.Player1.PlayingHcp},
		Player2:             match.Player{ID: m.Player2.ID, Name: m.Player2.Name, PlayingHcp: m.Player2.PlayingHcp},
		CourseID:            m.CourseID,
		TeeID:               m.TeeID,
		PlayedAt:            round.NaturalTime(m.Date),
		Holes:               holes,
		Status:              m.Status,
		WinnerID:            m.WinnerID,
		Completed:           m.Completed,
		LeagueMatchID:       m.LeagueMatchID,
		CountForHandicap:    m.CountForHandicap,
		Player1Differential: m.Player1Differential,
		Player2Differential: m.Player2Differential,
	}
}

func ServerMatch(m match.Match) Match {
	out := MatchFrom(m, m.CourseID)
	out.ClientID, out.ID = 0, m.ID
	return out
}

func SkinsGameFrom(g skins.Game, courseID int64) SkinsGame {
	results := make([]SkinResult, 0, len(g.Results))
	for _, r := range g.Results {
		results = append(results, SkinResult{Hole: r.Hole, Winner: r.Winner, Skins: r.Skins})
	}
	return SkinsGame{
		ClientID:  g.ID,
		ID:        serverIDOrZero(g.ServerID),
		UserID:    g.UserID,
		CourseID:  courseID,
		Date:      round.NaturalTime(g.PlayedAt),
		Players:   append([]string(nil), g.Players...),
		Scores:    copyPlayerScores(g.Scores),
		SkinValue: g.SkinValue,
		Results:   results,
		Completed: g.Completed,
	}
}

func (g SkinsGame) ToDomain() skins.Game {
	results := make([]skins.HoleSkin, 0, len(g.Results))
	for _, r := range g.Results {
		results = append(results, skins.HoleSkin{Hole: r.Hole, Winner: r.Winner, Skins: r.Skins})
	}
	return skins.Game{
		ID:        g.ID,
		UserID:    g.UserID,
		CourseID:  g.CourseID,
		PlayedAt:  round.NaturalTime(g.Date),
		Players:   append([]string(nil), g.Players...),
		Scores:    copyPlayerScores(g.Scores),
		SkinValue: g.SkinValue,
		Results:   results,
		Completed: g.Completed,
	}
}

func ServerSkinsGame(g skins.Game) SkinsGame {
	out := SkinsGameFrom(g, g.CourseID)
	out.ClientID, out.ID = 0, g.ID
	return out
}

func CourseFrom(c course.Course) Course {
	out := Course{
		ID:     c.ID,
		Name:   c.Name,
		Holes:  make([]Hole, 0, len(c.Holes)),
		Tees:   make([]Tee, 0, len(c.Tees)),
		Rating: c.Rating,
		Slope:  c.Slope,
		Par:    c.TotalPar(),
	}
	for _, h := range c.Holes {
		out.Holes = append(out.Holes, Hole{Number: h.Number, Par: h.Par, StrokeIndex: h.StrokeIndex, Distance: h.Distance})
	}
	for _, t := range c.Tees {
		out.Tees = append(out.Tees, Tee{ID: t.ID, Name: t.Name, Slope: t.Slope, Rating: t.Rating})
	}
	return out
}

func (c Course) ToDomain() course.Course {
	out := course.Course{
		ID:     c.ID,
		Name:   c.Name,
		Holes:  make([]course.Hole, 0, len(c.Holes)),
		Tees:   make([]course.Tee, 0, len(c.Tees)),
		Rating: c.Rating,
		Slope:  c.Slope,
		Par:    c.Par,
	}
	for _, h := range c.Holes {
		out.Holes = append(out.Holes, course.Hole{Number: h.Number, Par: h.Par, StrokeIndex: h.StrokeIndex, Distance: h.Distance})
	}
	for _, t := range c.Tees {
		out.Tees = append(out.Tees, course.Tee{ID: t.ID, Name: t.Name, Slope: t.Slope, Rating: t.Rating})
	}
	return out
}

func LeagueMatchFrom(m league.Match) LeagueMatch {
	return LeagueMatch{
		ID:            m.ID,
		LeagueID:      m.LeagueID,
		RoundNumber:   m.RoundNumber,
		MatchNumber:   m.MatchNumber,
		Player1ID:     m.Player1ID,
		Player2ID:     m.Player2ID,
		WinnerID:      m.WinnerID,
		LinkedMatchID: m.LinkedMatchID,
	}
}

func (m LeagueMatch) ToDomain() league.Match {
	return league.Match{
		ID:            m.ID,
		LeagueID:      m.LeagueID,
		RoundNumber:   m.RoundNumber,
		MatchNumber:   m.MatchNumber,
		Player1ID:     m.Player1ID,
		Player2ID:     m.Player2ID,
		WinnerID:      m.WinnerID,
		LinkedMatchID: m.LinkedMatchID,
	}
}

func UserFrom(u user.User) User {
	return User{ID: u.ID, Name: u.Name, Handicap: u.Handicap, Placeholder: u.Placeholder}
}

func (u User) ToDomain() user.User {
	return user.User{ID: u.ID, Name: u.Name, Handicap: u.Handicap, Placeholder: u.Placeholder}
}

func copyScores(in map[int]int) map[int]int {
	out := make(map[int]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyPlayerScores(in map[string]map[int]int) map[string]map[int]int {
	out := make(map[string]map[int]int, len(in))
	for player, holes := range in {
		out[player] = copyScores(holes)
	}
	return out
}
