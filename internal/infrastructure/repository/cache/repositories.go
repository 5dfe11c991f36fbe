package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	basecache "github.com/riskibarqy/golf-league/internal/platform/cache"
)

const coursePrefix = "course:"

// CourseRepository is a read-through cache over course reads. Creates drop
// every cached course entry.
type CourseRepository struct {
	next  course.Repository
	cache *basecache.Store
}

func NewCourseRepository(next course.Repository, cache *basecache.Store) *CourseRepository {
	return &CourseRepository{next: next, cache: cache}
}

func (r *CourseRepository) List(ctx context.Context) ([]course.Course, error) {
	items, err := basecache.Load(ctx, r.cache, coursePrefix+"list", func(ctx context.Context) ([]course.Course, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]course.Course(nil), items...), nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (course.Course, bool, error) {
	key := coursePrefix + "id:" + strconv.FormatInt(id, 10)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedCourse, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		return cachedCourse{value: item, exists: exists}, err
	})
	if err != nil {
		return course.Course{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *CourseRepository) FindByName(ctx context.Context, name string) (course.Course, bool, error) {
	key := coursePrefix + "name:" + course.NameKey(name)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedCourse, error) {
		item, exists, err := r.next.FindByName(ctx, name)
		return cachedCourse{value: item, exists: exists}, err
	})
	if err != nil {
		return course.Course{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *CourseRepository) Create(ctx context.Context, c course.Course) (course.Course, error) {
	created, err := r.next.Create(ctx, c)
	if err != nil {
		return course.Course{}, err
	}
	r.cache.Invalidate(coursePrefix)
	return created, nil
}

type cachedCourse struct {
	value  course.Course
	exists bool
}
