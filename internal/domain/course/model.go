package course

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var ErrInvalidLayout = errors.New("invalid course layout")

type Hole struct {
	Number      int `json:"number"`
	Par         int `json:"par"`
	StrokeIndex int `json:"strokeIndex"`
	Distance    int `json:"distance,omitempty"`
}

type Tee struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Slope  float64 `json:"slope"`
	Rating float64 `json:"rating"`
}

// Course is shared by the server store and the offline store. On the client
// ID is the local key and ServerID is set once the server has acknowledged it.
type Course struct {
	ID        int64     `json:"id"`
	ServerID  *int64    `json:"serverId,omitempty"`
	Synced    bool      `json:"synced"`
	Name      string    `json:"name"`
	Holes     []Hole    `json:"holes"`
	Tees      []Tee     `json:"tees,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	Slope     float64   `json:"slope,omitempty"`
	Par       int       `json:"par,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Course) Key() int64 {
	return c.ID
}

func (c *Course) SetKey(id int64) {
	c.ID = id
}

// NameKey folds a course name for case-insensitive matching.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// TotalPar prefers the stored par and falls back to the hole layout.
func (c Course) TotalPar() int {
	if c.Par > 0 {
		return c.Par
	}
	total := 0
	for _, h := range c.Holes {
		total += h.Par
	}
	return total
}

func (c Course) Hole(number int) (Hole, bool) {
	for _, h := range c.Holes {
		if h.Number == number {
			return h, true
		}
	}
	return Hole{}, false
}

// RatingFor resolves rating and slope for a tee, falling back to the first
// tee and then to the course level values.
func (c Course) RatingFor(teeID string) (rating, slope float64, ok bool) {
	if teeID != "" {
		for _, t := range c.Tees {
			if t.ID == teeID && t.Slope > 0 {
				return t.Rating, t.Slope, true
			}
		}
	}
	if len(c.Tees) > 0 && c.Tees[0].Slope > 0 {
		return c.Tees[0].Rating, c.Tees[0].Slope, true
	}
	if c.Slope > 0 && c.Rating > 0 {
		return c.Rating, c.Slope, true
	}
	return 0, 0, false
}

func (c Course) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLayout)
	}
	if n := len(c.Holes); n != 9 && n != 18 {
		return fmt.Errorf("%w: expected 9 or 18 holes, got %d", ErrInvalidLayout, n)
	}

	seen := make(map[int]struct{}, len(c.Holes))
	for _, h := range c.Holes {
		if h.Number < 1 || h.Number > len(c.Holes) {
			return fmt.Errorf("%w: hole number %d out of range", ErrInvalidLayout, h.Number)
		}
		if _, dup := seen[h.Number]; dup {
			return fmt.Errorf("%w: duplicate hole %d", ErrInvalidLayout, h.Number)
		}
		seen[h.Number] = struct{}{}
		if h.StrokeIndex < 1 || h.StrokeIndex > 18 {
			return fmt.Errorf("%w: hole %d stroke index %d", ErrInvalidLayout, h.Number, h.StrokeIndex)
		}
		if h.Par < 3 || h.Par > 6 {
			return fmt.Errorf("%w: hole %d par %d", ErrInvalidLayout, h.Number, h.Par)
		}
	}
	return nil
}
