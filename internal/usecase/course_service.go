package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/golf-league/internal/domain/course"
)

type CourseService struct {
	repo course.Repository
}

func NewCourseService(repo course.Repository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) List(ctx context.Context) ([]course.Course, error) {
	ctx, span := startSpan(ctx, "CourseService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return items, nil
}

func (s *CourseService) Get(ctx context.Context, id int64) (course.Course, error) {
	c, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return course.Course{}, fmt.Errorf("get course: %w", err)
	}
	if !found {
		return course.Course{}, fmt.Errorf("%w: course=%d", ErrNotFound, id)
	}
	return c, nil
}

// Create stores a course pushed by a client. A course with the same folded
// name and hole count is returned instead of creating a duplicate.
func (s *CourseService) Create(ctx context.Context, c course.Course) (course.Course, error) {
	ctx, span := startSpan(ctx, "CourseService.Create")
	defer span.End()

	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		if errors.Is(err, course.ErrInvalidLayout) {
			return course.Course{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return course.Course{}, err
	}

	existing, found, err := s.repo.FindByName(ctx, c.Name)
	if err != nil {
		return course.Course{}, fmt.Errorf("find course by name: %w", err)
	}
	if found && len(existing.Holes) == len(c.Holes) {
		return existing, nil
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return course.Course{}, fmt.Errorf("create course: %w", err)
	}
	return created, nil
}
