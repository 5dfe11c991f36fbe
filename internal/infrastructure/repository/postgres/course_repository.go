package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-league/internal/domain/course"
	qb "github.com/riskibarqy/golf-league/internal/platform/querybuilder"
)

var courseColumns = []string{"id", "name", "holes", "tees", "rating", "slope", "par", "created_at"}

type courseTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Holes     string    `db:"holes"`
	Tees      string    `db:"tees"`
	Rating    float64   `db:"rating"`
	Slope     float64   `db:"slope"`
	Par       int       `db:"par"`
	CreatedAt time.Time `db:"created_at"`
}

type courseInsertModel struct {
	Name   string  `db:"name"`
	Holes  string  `db:"holes"`
	Tees   string  `db:"tees"`
	Rating float64 `db:"rating"`
	Slope  float64 `db:"slope"`
	Par    int     `db:"par"`
}

type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) List(ctx context.Context) ([]course.Course, error) {
	query, args, err := qb.Select(courseColumns...).From("courses").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list courses query: %w", err)
	}

	var rows []courseTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	out := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		c, err := courseFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (course.Course, bool, error) {
	query, args, err := qb.Select(courseColumns...).From("courses").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return course.Course{}, false, fmt.Errorf("build get course query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *CourseRepository) FindByName(ctx context.Context, name string) (course.Course, bool, error) {
	query, args, err := qb.Select(courseColumns...).From("courses").
		Where(qb.LowerEq("name", name)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return course.Course{}, false, fmt.Errorf("build find course by name query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *CourseRepository) Create(ctx context.Context, c course.Course) (course.Course, error) {
	holes, err := encodeJSON(c.Holes)
	if err != nil {
		return course.Course{}, err
	}
	tees := "[]"
	if len(c.Tees) > 0 {
		if tees, err = encodeJSON(c.Tees); err != nil {
			return course.Course{}, err
		}
	}

	query, args, err := qb.InsertModel("courses", courseInsertModel{
		Name:   c.Name,
		Holes:  holes,
		Tees:   tees,
		Rating: c.Rating,
		Slope:  c.Slope,
		Par:    c.TotalPar(),
	}, "RETURNING "+joinColumns(courseColumns))
	if err != nil {
		return course.Course{}, fmt.Errorf("build create course query: %w", err)
	}

	var row courseTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return course.Course{}, fmt.Errorf("create course: %w", err)
	}
	return courseFromRow(row)
}

func (r *CourseRepository) getOne(ctx context.Context, query string, args []any) (course.Course, bool, error) {
	var row courseTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return course.Course{}, false, nil
		}
		return course.Course{}, false, fmt.Errorf("get course: %w", err)
	}
	c, err := courseFromRow(row)
	if err != nil {
		return course.Course{}, false, err
	}
	return c, true, nil
}

func courseFromRow(row courseTableModel) (course.Course, error) {
	c := course.Course{
		ID:        row.ID,
		Name:      row.Name,
		Rating:    row.Rating,
		Slope:     row.Slope,
		Par:       row.Par,
		CreatedAt: row.CreatedAt,
	}
	if err := decodeJSON(row.Holes, &c.Holes); err != nil {
		return course.Course{}, fmt.Errorf("course %d holes: %w", row.ID, err)
	}
	if err := decodeJSON(row.Tees, &c.Tees); err != nil {
		return course.Course{}, fmt.Errorf("course %d tees: %w", row.ID, err)
	}
	return c, nil
}
