package course

import (
	"errors"
	"testing"
)

func nineHoles() []Hole {
	holes := make([]Hole, 0, 9)
	for i := 1; i <= 9; i++ {
		holes = append(holes, Hole{Number: i, Par: 4, StrokeIndex: i * 2})
	}
	return holes
}

func TestNameKeyFoldsCaseAndSpace(t *testing.T) {
	t.Parallel()

	if NameKey("  Pebble BEACH ") != NameKey("pebble beach") {
		t.Fatalf("expected folded names to match")
	}
	if NameKey("Straße") != NameKey("STRASSE") {
		t.Fatalf("expected full case folding, got %q vs %q", NameKey("Straße"), NameKey("STRASSE"))
	}
}

func TestRatingForFallsBack(t *testing.T) {
	t.Parallel()

	c := Course{
		Rating: 70, Slope: 120,
		Tees: []Tee{{ID: "white", Rating: 69.1, Slope: 118}, {ID: "blue", Rating: 71.4, Slope: 127}},
	}

	rating, slope, ok := c.RatingFor("blue")
	if !ok || rating != 71.4 || slope != 127 {
		t.Fatalf("unexpected blue tee rating=%v slope=%v ok=%v", rating, slope, ok)
	}
	rating, slope, ok = c.RatingFor("missing")
	if !ok || rating != 69.1 || slope != 118 {
		t.Fatalf("expected first tee fallback, got rating=%v slope=%v", rating, slope)
	}

	c.Tees = nil
	rating, slope, ok = c.RatingFor("")
	if !ok || rating != 70 || slope != 120 {
		t.Fatalf("expected course level fallback, got rating=%v slope=%v", rating, slope)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Course{Name: "Nine", Holes: nineHoles()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid.TotalPar() != 36 {
		t.Fatalf("expected par 36, got %d", valid.TotalPar())
	}

	short := Course{Name: "Short", Holes: nineHoles()[:5]}
	if err := short.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}

	dup := Course{Name: "Dup", Holes: nineHoles()}
	dup.Holes[8].Number = 1
	if err := dup.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected duplicate hole error, got %v", err)
	}
}
