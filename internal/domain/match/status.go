package match

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/handicap"
)

const (
	StatusAllSquare = "AS"
	// StatusPlayoff marks a tied match decided by a playoff.
	StatusPlayoff = "PLAYOFF"
)

// ScoreHole nets both gross scores and decides the hole. The lower playing
// handicap plays off scratch and the other player receives the difference.
func ScoreHole(hole course.Hole, p1, p2 Player, p1Gross, p2Gross int) HoleResult {
	diff := p1.PlayingHcp - p2.PlayingHcp
	p1Net, p2Net := p1Gross, p2Gross
	if diff > 0 {
		p1Net -= handicap.StrokesReceived(diff, hole.StrokeIndex)
	} else if diff < 0 {
		p2Net -= handicap.StrokesReceived(-diff, hole.StrokeIndex)
	}

	result := HoleResult{P1Score: p1Gross, P2Score: p2Gross, Winner: WinnerHalved}
	switch {
	case p1Net < p2Net:
		result.Winner = WinnerPlayer1
	case p2Net < p1Net:
		result.Winner = WinnerPlayer2
	}
	return result
}

// Lead is positive when player 1 is ahead.
func Lead(holes map[int]HoleResult) (lead, played int) {
	for _, h := range holes {
		switch h.Winner {
		case WinnerPlayer1:
			lead++
		case WinnerPlayer2:
			lead--
		case WinnerHalved:
		default:
			continue
		}
		played++
	}
	return lead, played
}

// Status renders "AS", "N UP" while live, or "N & M" once the lead is larger
// than the holes left.
func Status(holes map[int]HoleResult, totalHoles int) string {
	lead, played := Lead(holes)
	if lead == 0 {
		return StatusAllSquare
	}

	margin := lead
	if margin < 0 {
		margin = -margin
	}
	remaining := totalHoles - played
	if remaining > 0 && margin > remaining {
		return fmt.Sprintf("%d & %d", margin, remaining)
	}
	return fmt.Sprintf("%d UP", margin)
}

// IsHalved reports whether a status label means nobody won.
func IsHalved(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "as", "a/s", "halved", "push", "tie":
		return true
	default:
		return false
	}
}

// Decided reports whether the outcome can no longer change.
func Decided(holes map[int]HoleResult, totalHoles int) bool {
	lead, played := Lead(holes)
	if lead < 0 {
		lead = -lead
	}
	return played >= totalHoles || lead > totalHoles-played
}

// Leader returns the leading player's id, or false when all square.
func (m Match) Leader() (int64, bool) {
	lead, _ := Lead(m.Holes)
	switch {
	case lead > 0:
		return m.Player1.ID, true
	case lead < 0:
		return m.Player2.ID, true
	default:
		return 0, false
	}
}

// GrossTotals sums each player's gross strokes.
func (m Match) GrossTotals() (p1, p2 int) {
	for _, h := range m.Holes {
		p1 += h.P1Score
		p2 += h.P2Score
	}
	return p1, p2
}
