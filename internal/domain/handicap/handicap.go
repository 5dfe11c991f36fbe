// Package handicap computes playing handicaps, stableford points and the
// rolling handicap index. Everything here is pure.
package handicap

import (
	"math"
	"sort"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/round"
)

const (
	StandardSlope = 113.0
	// DefaultIndex applies when no round qualifies.
	DefaultIndex = 54.0
	// WindowSize is how many recent rounds feed the index.
	WindowSize = 20
	// BestFraction is the share of the window that counts. This is a
	// simplified allowance, not the official sliding table.
	BestFraction = 0.4
)

// PlayingHandicap is round(index * slope/113 + (rating - par)).
func PlayingHandicap(index, slope, rating float64, par int) int {
	return roundHalfUp(index*slope/StandardSlope + (rating - float64(par)))
}

// StrokesReceived spreads a playing handicap across holes by stroke index.
// Plus handicaps receive nothing.
func StrokesReceived(playingHcp, strokeIndex int) int {
	if playingHcp <= 0 {
		return 0
	}
	received := playingHcp / 18
	if strokeIndex <= playingHcp%18 {
		received++
	}
	return received
}

// StablefordPoints returns 0 for a hole that was not played.
func StablefordPoints(par, strokes, strokesReceived int) int {
	if strokes == 0 {
		return 0
	}
	points := par - (strokes - strokesReceived) + 2
	if points < 0 {
		return 0
	}
	return points
}

// Differential is (113/slope) * (score - rating) rounded to one decimal.
func Differential(adjustedGross int, slope, rating float64) float64 {
	if slope <= 0 {
		slope = StandardSlope
	}
	return round1(StandardSlope / slope * (float64(adjustedGross) - rating))
}

// RoundDifferential resolves the round's course and tee. ok is false when the
// round has no score or its course is unknown.
func RoundDifferential(r round.Round, courses map[int64]course.Course) (float64, bool) {
	if r.TotalStrokes <= 0 {
		return 0, false
	}
	c, found := courses[r.CourseID]
	if !found {
		return 0, false
	}
	rating, slope, ok := c.RatingFor(r.TeeID)
	if !ok {
		return 0, false
	}
	return Differential(r.TotalStrokes, slope, rating), true
}

// Index averages the best 40% (at least one) of the differentials from the
// 20 most recent rounds.
func Index(rounds []round.Round, courses map[int64]course.Course) float64 {
	recent := append([]round.Round(nil), rounds...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].PlayedAt.After(recent[j].PlayedAt)
	})
	if len(recent) > WindowSize {
		recent = recent[:WindowSize]
	}

	diffs := make([]float64, 0, len(recent))
	for _, r := range recent {
		if d, ok := RoundDifferential(r, courses); ok {
			diffs = append(diffs, d)
		}
	}
	return IndexFromDifferentials(diffs)
}

func IndexFromDifferentials(diffs []float64) float64 {
	if len(diffs) == 0 {
		return DefaultIndex
	}

	sorted := append([]float64(nil), diffs...)
	sort.Float64s(sorted)

	count := int(math.Ceil(float64(len(sorted)) * BestFraction))
	if count < 1 {
		count = 1
	}

	sum := 0.0
	for _, d := range sorted[:count] {
		sum += d
	}
	return round1(sum / float64(count))
}

// IndexDelta is the change caused by the most recent round.
func IndexDelta(rounds []round.Round, courses map[int64]course.Course) float64 {
	if len(rounds) == 0 {
		return 0
	}

	ordered := append([]round.Round(nil), rounds...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt.After(ordered[j].PlayedAt)
	})

	return round1(Index(ordered, courses) - Index(ordered[1:], courses))
}

type Scorecard struct {
	TotalStrokes    int
	TotalStableford int
	PlayingHcp      int
	HolesPlayed     int
}

// Score recomputes a round's totals from its hole strokes and index. Holes
// missing from the layout contribute strokes but no points.
func Score(c course.Course, teeID string, hcpIndex float64, holeStrokes map[int]int) Scorecard {
	card := Scorecard{}
	if rating, slope, ok := c.RatingFor(teeID); ok {
		card.PlayingHcp = PlayingHandicap(hcpIndex, slope, rating, c.TotalPar())
	}

	for number, strokes := range holeStrokes {
		if strokes <= 0 {
			continue
		}
		card.TotalStrokes += strokes
		card.HolesPlayed++

		hole, ok := c.Hole(number)
		if !ok {
			continue
		}
		card.TotalStableford += StablefordPoints(hole.Par, strokes, StrokesReceived(card.PlayingHcp, hole.StrokeIndex))
	}
	return card
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
