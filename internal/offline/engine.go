package offline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/platform/id"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
)

var errNoOpponent = errors.New("match has no resolved opponent")

type EngineConfig struct {
	UserID int64
	Logger *logging.Logger
	IDs    id.Generator
	Now    func() time.Time
}

// Engine runs one push/pull cycle at a time. A call that arrives while a run
// is active returns a skipped Result.
type Engine struct {
	remote     RemoteAPI
	store      localstore.Store
	reconciler *IdentityReconciler
	userID     int64
	logger     *logging.Logger
	ids        id.Generator
	now        func() time.Time

	running atomic.Bool
}

type PullCounts struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Stamped  int `json:"stamped"`
}

type Result struct {
	RunID    string     `json:"runId,omitempty"`
	Skipped  bool       `json:"skipped"`
	Success  int        `json:"success"`
	Failed   int        `json:"failed"`
	Pulled   PullCounts `json:"pulled"`
	Handicap float64    `json:"handicap"`
	Errors   []string   `json:"errors"`
}

func (r *Result) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
}

func (r *Result) note(err error) {
	r.Errors = append(r.Errors, err.Error())
}

func NewEngine(remote RemoteAPI, store localstore.Store, cfg EngineConfig) (*Engine, error) {
	if remote == nil || store == nil {
		return nil, fmt.Errorf("offline engine needs a remote and a store")
	}
	if cfg.UserID <= 0 {
		return nil, fmt.Errorf("offline engine needs a user id")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		remote:     remote,
		store:      store,
		reconciler: NewIdentityReconciler(remote, store, logger),
		userID:     cfg.UserID,
		logger:     logger,
		ids:        ids,
		now:        now,
	}, nil
}

// Running reports whether a sync is in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Sync runs schema repair, course resolution, user existence, push, pull and
// the post-sync handicap refresh. Only the first and third phases return an
// error; everything else is tallied on the Result.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.DebugContext(ctx, "sync already running")
		return Result{Skipped: true}, nil
	}
	defer e.running.Store(false)

	runID, err := e.ids.NewID()
	if err != nil {
		return Result{}, err
	}
	logger := e.logger.With("sync_run_id", runID, "user_id", e.userID)
	result := Result{RunID: runID, Errors: []string{}}
	started := e.now()

	if err := e.remote.EnsureSchema(ctx); err != nil {
		logger.ErrorContext(ctx, "schema repair failed", "error", err)
		return result, fmt.Errorf("schema repair: %w", err)
	}

	courses, courseErrs := e.reconciler.Reconcile(ctx)
	for _, err := range courseErrs {
		result.note(err)
	}

	users, err := e.ensureUsers(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "user existence failed", "error", err)
		return result, fmt.Errorf("ensure users: %w", err)
	}

	e.push(ctx, logger, courses, users, &result)
	e.pull(ctx, logger, &result)
	e.postSync(ctx, logger, &result)

	logger.InfoContext(ctx, "sync finished",
		"success", result.Success,
		"failed", result.Failed,
		"imported", result.Pulled.Imported,
		"updated", result.Pulled.Updated,
		"stamped", result.Pulled.Stamped,
		"errors", len(result.Errors),
		"duration_ms", e.now().Sub(started).Milliseconds(),
	)
	return result, nil
}

// userSet holds the server ids that are known to exist for this run.
type userSet struct {
	guestID   int64
	opponents map[int64]error
}

func (e *Engine) ensureUsers(ctx context.Context) (userSet, error) {
	if _, err := e.remote.EnsureUser(ctx, syncapi.EnsureUserRequest{ID: e.userID}); err != nil {
		return userSet{}, fmt.Errorf("user %d: %w", e.userID, err)
	}
	guest, err := e.remote.EnsureUser(ctx, syncapi.EnsureUserRequest{Name: user.GuestName})
	if err != nil {
		return userSet{}, fmt.Errorf("guest user: %w", err)
	}

	set := userSet{guestID: guest.ID, opponents: map[int64]error{}}

	var pending []match.Match
	err = e.store.View(ctx, func(tx localstore.Tx) error {
		var err error
		pending, err = unsynced[match.Match](tx, localstore.TableMatches, func(m match.Match) bool { return m.Synced })
		return err
	})
	if err != nil {
		return userSet{}, fmt.Errorf("load local matches: %w", err)
	}

	for _, m := range pending {
		for _, pid := range []int64{m.Player1.ID, m.Player2.ID} {
			if pid <= 0 || pid == e.userID || pid == set.guestID {
				continue
			}
			if _, seen := set.opponents[pid]; seen {
				continue
			}
			_, err := e.remote.EnsureUser(ctx, syncapi.EnsureUserRequest{ID: pid})
			set.opponents[pid] = err
		}
	}
	return set, nil
}

// opponentID resolves the server id for player 2. A nameless or Guest
// opponent plays as the shared guest user.
func (s userSet) opponentID(p match.Player) (int64, error) {
	if p.ID > 0 {
		if err := s.opponents[p.ID]; err != nil {
			return 0, fmt.Errorf("opponent %d: %w", p.ID, err)
		}
		return p.ID, nil
	}
	name := strings.TrimSpace(p.Name)
	if (name == "" || strings.EqualFold(name, user.GuestName)) && s.guestID > 0 {
		return s.guestID, nil
	}
	return 0, errNoOpponent
}

type pushSnapshot struct {
	rounds  map[int64]time.Time
	matches map[int64]time.Time
	skins   map[int64]time.Time
}

func (e *Engine) push(ctx context.Context, logger *logging.Logger, courses CourseMap, users userSet, result *Result) {
	req := syncapi.SyncRequest{UserID: e.userID}
	snap := pushSnapshot{
		rounds:  map[int64]time.Time{},
		matches: map[int64]time.Time{},
		skins:   map[int64]time.Time{},
	}

	err := e.store.View(ctx, func(tx localstore.Tx) error {
		rounds, err := unsynced[round.Round](tx, localstore.TableRounds, func(r round.Round) bool { return r.Synced })
		if err != nil {
			return err
		}
		for _, r := range rounds {
			if r.UserID <= 0 {
				r.UserID = e.userID
			}
			req.Rounds = append(req.Rounds, syncapi.RoundFrom(r, courses.Translate(r.CourseID)))
			snap.rounds[r.ID] = r.UpdatedAt
		}

		matches, err := unsynced[match.Match](tx, localstore.TableMatches, func(m match.Match) bool { return m.Synced })
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.Player1.ID <= 0 {
				m.Player1.ID = e.userID
			}
			opponent, err := users.opponentID(m.Player2)
			if err != nil {
				logger.WarnContext(ctx, "match skipped", "match_id", m.ID, "error", err)
				result.fail(fmt.Errorf("match %d: %w", m.ID, err))
				continue
			}
			m.Player2.ID = opponent
			req.Matches = append(req.Matches, syncapi.MatchFrom(m, courses.Translate(m.CourseID)))
			snap.matches[m.ID] = m.UpdatedAt
		}

		games, err := unsynced[skins.Game](tx, localstore.TableSkinsGames, func(g skins.Game) bool { return g.Synced || !g.Completed })
		if err != nil {
			return err
		}
		for _, g := range games {
			if g.UserID <= 0 {
				g.UserID = e.userID
			}
			req.SkinsGames = append(req.SkinsGames, syncapi.SkinsGameFrom(g, courses.Translate(g.CourseID)))
			snap.skins[g.ID] = g.UpdatedAt
		}
		return nil
	})
	if err != nil {
		result.note(fmt.Errorf("load unsynced records: %w", err))
		return
	}

	total := len(req.Rounds) + len(req.Matches) + len(req.SkinsGames)
	if total == 0 {
		logger.DebugContext(ctx, "nothing to push")
		return
	}

	resp, err := e.remote.Sync(ctx, req)
	if err != nil {
		logger.WarnContext(ctx, "push failed", "records", total, "error", err)
		result.Failed += total
		result.note(fmt.Errorf("push: %w", err))
		return
	}

	results := []struct {
		table localstore.Table
		res   syncapi.RecordResults
		snap  map[int64]time.Time
	}{
		{localstore.TableRounds, resp.Results.Rounds, snap.rounds},
		{localstore.TableMatches, resp.Results.Matches, snap.matches},
		{localstore.TableSkinsGames, resp.Results.SkinsGames, snap.skins},
	}
	for _, group := range results {
		result.Success += group.res.Success
		result.Failed += group.res.Failed
		result.Errors = append(result.Errors, group.res.Errors...)
		if err := e.stamp(ctx, group.table, group.res.Items, group.snap); err != nil {
			result.note(fmt.Errorf("stamp %s: %w", group.table, err))
		}
	}
}

// stamp records server ids for accepted items. A record edited after it was
// read for the push keeps synced=false so the edit goes out next run.
func (e *Engine) stamp(ctx context.Context, table localstore.Table, items []syncapi.ItemResult, snap map[int64]time.Time) error {
	if len(items) == 0 {
		return nil
	}
	return e.store.Update(ctx, func(tx localstore.Tx) error {
		for _, item := range items {
			if item.Status != syncapi.ItemSuccess || item.ServerID <= 0 {
				continue
			}
			seen, ok := snap[item.ClientID]
			if !ok {
				continue
			}
			if err := markSynced(tx, table, item.ClientID, item.ServerID, seen); err != nil {
				return err
			}
		}
		return nil
	})
}

func markSynced(tx localstore.Tx, table localstore.Table, localID, serverID int64, seen time.Time) error {
	sid := serverID
	switch table {
	case localstore.TableRounds:
		r, ok, err := localstore.Get[round.Round](tx, table, localID)
		if err != nil || !ok {
			return err
		}
		r.ServerID = &sid
		r.Synced = r.UpdatedAt.Equal(seen)
		return localstore.Put(tx, table, &r)
	case localstore.TableMatches:
		m, ok, err := localstore.Get[match.Match](tx, table, localID)
		if err != nil || !ok {
			return err
		}
		m.ServerID = &sid
		m.Synced = m.UpdatedAt.Equal(seen)
		return localstore.Put(tx, table, &m)
	case localstore.TableSkinsGames:
		g, ok, err := localstore.Get[skins.Game](tx, table, localID)
		if err != nil || !ok {
			return err
		}
		g.ServerID = &sid
		g.Synced = g.UpdatedAt.Equal(seen)
		return localstore.Put(tx, table, &g)
	default:
		return fmt.Errorf("table %s has no sync flag", table)
	}
}

// postSync recomputes the handicap from local rounds and merges the server
// profile into the local user row.
func (e *Engine) postSync(ctx context.Context, logger *logging.Logger, result *Result) {
	remoteUser, remoteErr := e.remote.GetUser(ctx, e.userID)
	if remoteErr != nil {
		logger.WarnContext(ctx, "refresh user failed", "error", remoteErr)
		result.note(fmt.Errorf("refresh user: %w", remoteErr))
	}

	err := e.store.Update(ctx, func(tx localstore.Tx) error {
		summary, err := handicapFor(tx, e.userID)
		if err != nil {
			return err
		}

		local, found, err := localstore.Get[user.User](tx, localstore.TableUsers, e.userID)
		if err != nil {
			return err
		}
		if !found {
			local = user.User{ID: e.userID, Handicap: user.DefaultHandicap, CreatedAt: e.now().UTC()}
		}
		if remoteErr == nil {
			local.Name = remoteUser.Name
			local.Placeholder = remoteUser.Placeholder
			local.Handicap = remoteUser.Handicap
		}
		if summary.Rounds > 0 {
			local.Handicap = summary.Index
		}
		local.UpdatedAt = e.now().UTC()
		result.Handicap = local.Handicap
		return localstore.Put(tx, localstore.TableUsers, &local)
	})
	if err != nil {
		result.note(fmt.Errorf("post-sync: %w", err))
	}
}

// unsynced returns the records for which skip is false.
func unsynced[T any](tx localstore.Tx, table localstore.Table, skip func(T) bool) ([]T, error) {
	all, err := localstore.GetAll[T](tx, table)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, item := range all {
		if !skip(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func courseIndex(courses []course.Course) map[int64]course.Course {
	out := make(map[int64]course.Course, len(courses))
	for _, c := range courses {
		out[c.ID] = c
	}
	return out
}
