package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
)

type CourseRepository struct {
	mu     sync.RWMutex
	items  map[int64]course.Course
	orders []int64
	nextID int64
}

func NewCourseRepository(courses []course.Course) *CourseRepository {
	r := &CourseRepository{items: make(map[int64]course.Course, len(courses))}
	for _, c := range courses {
		r.items[c.ID] = cloneCourse(c)
		r.orders = append(r.orders, c.ID)
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *CourseRepository) List(_ context.Context) ([]course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.Course, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, cloneCourse(r.items[id]))
	}
	return out, nil
}

func (r *CourseRepository) GetByID(_ context.Context, id int64) (course.Course, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return course.Course{}, false, nil
	}
	return cloneCourse(c), true, nil
}

func (r *CourseRepository) FindByName(_ context.Context, name string) (course.Course, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := course.NameKey(name)
	for _, id := range r.orders {
		if course.NameKey(r.items[id].Name) == key {
			return cloneCourse(r.items[id]), true, nil
		}
	}
	return course.Course{}, false, nil
}

func (r *CourseRepository) Create(_ context.Context, c course.Course) (course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	c.ServerID = nil
	c.Synced = false
	c.CreatedAt = time.Now().UTC()
	r.items[c.ID] = cloneCourse(c)
	r.orders = append(r.orders, c.ID)
	return cloneCourse(c), nil
}

func cloneCourse(c course.Course) course.Course {
	copied := c
	copied.Holes = append([]course.Hole(nil), c.Holes...)
	copied.Tees = append([]course.Tee(nil), c.Tees...)
	return copied
}
