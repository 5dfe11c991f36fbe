package memory

import (
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/user"
)

const (
	GuestUserID       int64 = 1
	CourseIDLinksNine int64 = 1
)

// SeedUsers returns the canonical guest so in-memory servers start with it.
func SeedUsers() []user.User {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []user.User{
		{ID: GuestUserID, Name: user.GuestName, Handicap: user.DefaultHandicap, CreatedAt: now, UpdatedAt: now},
	}
}

func SeedCourses() []course.Course {
	pars := []int{4, 4, 3, 5, 4, 4, 3, 4, 5}
	indexes := []int{7, 3, 17, 1, 11, 5, 15, 9, 13}
	holes := make([]course.Hole, 0, len(pars))
	for i, par := range pars {
		holes = append(holes, course.Hole{Number: i + 1, Par: par, StrokeIndex: indexes[i]})
	}

	return []course.Course{
		{
			ID:        CourseIDLinksNine,
			Name:      "Municipal Links (9)",
			Holes:     holes,
			Tees:      []course.Tee{{ID: "white", Name: "White", Slope: 113, Rating: 35.5}},
			Rating:    35.5,
			Slope:     113,
			Par:       36,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
