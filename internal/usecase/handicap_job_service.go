package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/handicap"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

const (
	jobStatusSuccess = "success"
	jobStatusFailed  = "failed"
	jobStatusSkipped = "skipped"

	defaultHandicapWorkers = 4
	maxHandicapWorkers     = 32
)

type RecomputeHandicapsInput struct {
	// UserIDs narrows the run; empty means every user.
	UserIDs    []int64
	MaxWorkers int
	// DryRun computes indexes without writing them.
	DryRun bool
}

type RecomputeHandicapsResult struct {
	TaskCount    int                      `json:"task_count"`
	SuccessCount int                      `json:"success_count"`
	FailedCount  int                      `json:"failed_count"`
	SkippedCount int                      `json:"skipped_count"`
	WorkerCount  int                      `json:"worker_count"`
	Tasks        []RecomputeHandicapsTask `json:"tasks"`
}

type RecomputeHandicapsTask struct {
	UserID     int64   `json:"user_id"`
	Status     string  `json:"status"`
	Rounds     int     `json:"rounds"`
	Previous   float64 `json:"previous"`
	Index      float64 `json:"index"`
	DurationMs int64   `json:"duration_ms"`
	Message    string  `json:"message,omitempty"`
}

type HandicapJobService struct {
	users   user.Repository
	rounds  round.Repository
	courses course.Repository
	logger  *logging.Logger

	defaultWorkers int
}

func NewHandicapJobService(users user.Repository, rounds round.Repository, courses course.Repository, logger *logging.Logger) *HandicapJobService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HandicapJobService{users: users, rounds: rounds, courses: courses, logger: logger}
}

// WithDefaultWorkers sets the pool size used when a request leaves
// MaxWorkers unset.
func (s *HandicapJobService) WithDefaultWorkers(n int) *HandicapJobService {
	s.defaultWorkers = n
	return s
}

// RecomputeHandicaps rebuilds stored handicap indexes from completed rounds on
// a bounded worker pool. Users without an eligible round are skipped.
func (s *HandicapJobService) RecomputeHandicaps(ctx context.Context, input RecomputeHandicapsInput) (RecomputeHandicapsResult, error) {
	ctx, span := startSpan(ctx, "HandicapJobService.RecomputeHandicaps")
	defer span.End()

	targets, err := s.resolveTargets(ctx, input.UserIDs)
	if err != nil {
		return RecomputeHandicapsResult{}, err
	}

	courseList, err := s.courses.List(ctx)
	if err != nil {
		return RecomputeHandicapsResult{}, fmt.Errorf("list courses: %w", err)
	}
	courses := make(map[int64]course.Course, len(courseList))
	for _, c := range courseList {
		courses[c.ID] = c
	}

	requested := input.MaxWorkers
	if requested <= 0 {
		requested = s.defaultWorkers
	}
	workerCount := normalizeWorkerCount(requested, len(targets))
	result := RecomputeHandicapsResult{
		TaskCount:   len(targets),
		WorkerCount: workerCount,
		Tasks:       make([]RecomputeHandicapsTask, 0, len(targets)),
	}
	if len(targets) == 0 {
		return result, nil
	}

	results := make(chan RecomputeHandicapsTask, len(targets))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeHandicapsResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.recomputeOne(ctx, target, courses, input.DryRun)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case jobStatusSuccess:
				successCount.Add(1)
			case jobStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return RecomputeHandicapsResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].UserID < result.Tasks[j].UserID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "handicap recompute finished",
		"tasks", result.TaskCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"dry_run", input.DryRun,
	)
	return result, nil
}

func (s *HandicapJobService) recomputeOne(ctx context.Context, target user.User, courses map[int64]course.Course, dryRun bool) RecomputeHandicapsTask {
	row := RecomputeHandicapsTask{UserID: target.ID, Previous: target.Handicap}

	rounds, err := s.rounds.ListByUser(ctx, target.ID)
	if err != nil {
		row.Status, row.Message = jobStatusFailed, err.Error()
		return row
	}

	completed := rounds[:0:0]
	for _, r := range rounds {
		if r.Completed {
			completed = append(completed, r)
		}
	}
	eligible := 0
	for _, r := range completed {
		if _, ok := handicap.RoundDifferential(r, courses); ok {
			eligible++
		}
	}
	row.Rounds = eligible
	if eligible == 0 {
		row.Status, row.Index, row.Message = jobStatusSkipped, target.Handicap, "no eligible rounds"
		return row
	}

	row.Index = handicap.Index(completed, courses)
	if row.Index == target.Handicap {
		row.Status, row.Message = jobStatusSkipped, "unchanged"
		return row
	}
	if dryRun {
		row.Status = jobStatusSuccess
		return row
	}
	if err := s.users.UpdateHandicap(ctx, target.ID, row.Index); err != nil {
		row.Status, row.Message = jobStatusFailed, err.Error()
		return row
	}
	row.Status = jobStatusSuccess
	return row
}

func (s *HandicapJobService) resolveTargets(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		items, err := s.users.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out := make([]user.User, 0, len(items))
		for _, u := range items {
			if !u.Placeholder {
				out = append(out, u)
			}
		}
		return out, nil
	}

	out := make([]user.User, 0, len(ids))
	for _, id := range dedupeIDs(ids) {
		u, found, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", id, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: user=%d", ErrNotFound, id)
		}
		out = append(out, u)
	}
	return out, nil
}

func normalizeWorkerCount(requested, tasks int) int {
	workers := requested
	if workers <= 0 {
		workers = defaultHandicapWorkers
	}
	if workers > maxHandicapWorkers {
		workers = maxHandicapWorkers
	}
	if tasks > 0 && workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
