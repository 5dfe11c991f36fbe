package offline

import (
	"context"
	"fmt"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
)

// CourseMap translates local course ids to server ids for one sync run.
type CourseMap map[int64]int64

// Translate falls back to the local id when the course never resolved. The
// server repairs or rejects such records and the next run retries them.
func (m CourseMap) Translate(localID int64) int64 {
	if serverID, ok := m[localID]; ok {
		return serverID
	}
	return localID
}

// IdentityReconciler maps locally created courses onto server courses.
type IdentityReconciler struct {
	remote RemoteAPI
	store  localstore.Store
	logger *logging.Logger
}

func NewIdentityReconciler(remote RemoteAPI, store localstore.Store, logger *logging.Logger) *IdentityReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IdentityReconciler{remote: remote, store: store, logger: logger}
}

// Reconcile builds a fresh CourseMap. Synced courses seed the map and the
// name index; every unsynced course is then resolved by ResolveCourseID.
// A course that fails to resolve is reported and left out of the map.
func (r *IdentityReconciler) Reconcile(ctx context.Context) (CourseMap, []error) {
	var courses []course.Course
	err := r.store.View(ctx, func(tx localstore.Tx) error {
		var err error
		courses, err = localstore.GetAll[course.Course](tx, localstore.TableCourses)
		return err
	})
	if err != nil {
		return CourseMap{}, []error{fmt.Errorf("load local courses: %w", err)}
	}

	mapping := make(CourseMap, len(courses))
	byName := make(map[string]int64, len(courses))
	for _, c := range courses {
		if c.Synced && c.ServerID != nil {
			mapping[c.ID] = *c.ServerID
			byName[course.NameKey(c.Name)] = *c.ServerID
		}
	}

	var errs []error
	for _, c := range courses {
		if c.Synced && c.ServerID != nil {
			continue
		}
		serverID, err := r.resolve(ctx, c, byName)
		if err != nil {
			r.logger.WarnContext(ctx, "course resolution failed", "course_id", c.ID, "name", c.Name, "error", err)
			errs = append(errs, fmt.Errorf("course %d %q: %w", c.ID, c.Name, err))
			continue
		}
		mapping[c.ID] = serverID
		byName[course.NameKey(c.Name)] = serverID
	}
	return mapping, errs
}

// ResolveCourseID returns the server id for a single local course.
func (r *IdentityReconciler) ResolveCourseID(ctx context.Context, c course.Course) (int64, error) {
	if c.ServerID != nil {
		return *c.ServerID, nil
	}

	byName := make(map[string]int64)
	err := r.store.View(ctx, func(tx localstore.Tx) error {
		courses, err := localstore.GetAll[course.Course](tx, localstore.TableCourses)
		if err != nil {
			return err
		}
		for _, other := range courses {
			if other.Synced && other.ServerID != nil {
				byName[course.NameKey(other.Name)] = *other.ServerID
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("load local courses: %w", err)
	}
	return r.resolve(ctx, c, byName)
}

func (r *IdentityReconciler) resolve(ctx context.Context, c course.Course, byName map[string]int64) (int64, error) {
	if c.ServerID != nil {
		if err := r.persist(ctx, c.ID, *c.ServerID); err != nil {
			return 0, err
		}
		return *c.ServerID, nil
	}

	if serverID, ok := byName[course.NameKey(c.Name)]; ok {
		r.logger.InfoContext(ctx, "course merged by name", "course_id", c.ID, "server_id", serverID)
		if err := r.persist(ctx, c.ID, serverID); err != nil {
			return 0, err
		}
		return serverID, nil
	}

	created, err := r.remote.CreateCourse(ctx, syncapi.CourseFrom(c))
	if err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("create course: server returned no id")
	}
	if err := r.persist(ctx, c.ID, created.ID); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (r *IdentityReconciler) persist(ctx context.Context, localID, serverID int64) error {
	err := r.store.Update(ctx, func(tx localstore.Tx) error {
		c, ok, err := localstore.Get[course.Course](tx, localstore.TableCourses, localID)
		if err != nil {
			return err
		}
		if !ok {
			return localstore.ErrNotFound
		}
		id := serverID
		c.ServerID = &id
		c.Synced = true
		return localstore.Put(tx, localstore.TableCourses, &c)
	})
	if err != nil {
		return fmt.Errorf("store course mapping %d->%d: %w", localID, serverID, err)
	}
	return nil
}
