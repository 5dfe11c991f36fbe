package match

import (
	"testing"

	"github.com/riskibarqy/golf-league/internal/domain/course"
)

func TestScoreHoleAppliesHandicapDifference(t *testing.T) {
	t.Parallel()

	hole := course.Hole{Number: 1, Par: 4, StrokeIndex: 3}
	p1 := Player{ID: 1, PlayingHcp: 4}
	p2 := Player{ID: 2, PlayingHcp: 0}

	if got := ScoreHole(hole, p1, p2, 5, 4); got.Winner != WinnerHalved {
		t.Fatalf("expected stroke to halve the hole, got=%s", got.Winner)
	}
	if got := ScoreHole(hole, p1, p2, 4, 4); got.Winner != WinnerPlayer1 {
		t.Fatalf("expected net win for player 1, got=%s", got.Winner)
	}

	hard := course.Hole{Number: 2, Par: 4, StrokeIndex: 10}
	if got := ScoreHole(hard, p1, p2, 5, 4); got.Winner != WinnerPlayer2 {
		t.Fatalf("expected player 2 to win without stroke, got=%s", got.Winner)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	holes := map[int]HoleResult{
		1: {Winner: WinnerPlayer1},
		2: {Winner: WinnerPlayer2},
	}
	if got := Status(holes, 18); got != StatusAllSquare {
		t.Fatalf("expected AS, got=%s", got)
	}

	holes[3] = HoleResult{Winner: WinnerPlayer2}
	holes[4] = HoleResult{Winner: WinnerHalved}
	if got := Status(holes, 18); got != "1 UP" {
		t.Fatalf("expected 1 UP, got=%s", got)
	}

	closing := map[int]HoleResult{}
	for i := 1; i <= 15; i++ {
		closing[i] = HoleResult{Winner: WinnerHalved}
	}
	closing[16] = HoleResult{Winner: WinnerPlayer1}
	for i := 1; i <= 4; i++ {
		closing[i] = HoleResult{Winner: WinnerPlayer1}
	}
	if got := Status(closing, 18); got != "5 & 2" {
		t.Fatalf("expected 5 & 2, got=%s", got)
	}
	if !Decided(closing, 18) {
		t.Fatalf("expected closed-out match to be decided")
	}
}

func TestIsHalved(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"AS", "halved", "Push", " a/s "} {
		if !IsHalved(status) {
			t.Fatalf("expected %q to be halved", status)
		}
	}
	if IsHalved("2 UP") {
		t.Fatalf("expected 2 UP not to be halved")
	}
}

func TestLeader(t *testing.T) {
	t.Parallel()

	m := Match{
		Player1: Player{ID: 10},
		Player2: Player{ID: 20},
		Holes:   map[int]HoleResult{1: {Winner: WinnerPlayer2}},
	}
	id, ok := m.Leader()
	if !ok || id != 20 {
		t.Fatalf("expected player 2 leading, got=%d ok=%v", id, ok)
	}

	m.Holes[2] = HoleResult{Winner: WinnerPlayer1}
	if _, ok := m.Leader(); ok {
		t.Fatalf("expected no leader when all square")
	}
}
