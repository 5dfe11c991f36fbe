package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	basecache "github.com/riskibarqy/golf-league/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCourses struct {
	listCalls int
	items     []course.Course
}

func (c *countingCourses) List(context.Context) ([]course.Course, error) {
	c.listCalls++
	return append([]course.Course(nil), c.items...), nil
}

func (c *countingCourses) GetByID(_ context.Context, id int64) (course.Course, bool, error) {
	for _, item := range c.items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return course.Course{}, false, nil
}

func (c *countingCourses) FindByName(_ context.Context, name string) (course.Course, bool, error) {
	for _, item := range c.items {
		if course.NameKey(item.Name) == course.NameKey(name) {
			return item, true, nil
		}
	}
	return course.Course{}, false, nil
}

func (c *countingCourses) Create(_ context.Context, item course.Course) (course.Course, error) {
	item.ID = int64(len(c.items) + 1)
	c.items = append(c.items, item)
	return item, nil
}

func TestCourseRepositoryCachesListUntilCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingCourses{items: []course.Course{{ID: 1, Name: "Old Course"}}}
	repo := NewCourseRepository(next, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, 1, next.listCalls)

	_, err := repo.Create(ctx, course.Course{Name: "New Course"})
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, next.listCalls)
}

func TestCourseRepositoryCachesMissingName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewCourseRepository(&countingCourses{}, basecache.NewStore(time.Minute))

	_, ok, err := repo.FindByName(ctx, "Nowhere")
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := repo.Create(ctx, course.Course{Name: "Nowhere"})
	require.NoError(t, err)

	found, ok, err := repo.FindByName(ctx, "NOWHERE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)
}
