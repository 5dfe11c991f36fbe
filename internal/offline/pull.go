package offline

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/platform/localstore"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/syncapi"
)

// FuzzyWindow is how far apart a local and a server record may have been
// started and still be treated as the same game.
const FuzzyWindow = 60 * time.Second

func withinWindow(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= FuzzyWindow
}

// localCourses resolves server course ids to local ones during a pull.
type localCourses struct {
	byServer map[int64]int64
}

func (e *Engine) pull(ctx context.Context, logger *logging.Logger, result *Result) {
	serverCourses, err := e.remote.ListCourses(ctx)
	if err != nil {
		logger.WarnContext(ctx, "pull courses failed", "error", err)
		result.note(fmt.Errorf("pull courses: %w", err))
	}
	activity, err := e.remote.Activity(ctx, e.userID)
	if err != nil {
		logger.WarnContext(ctx, "pull activity failed", "error", err)
		result.note(fmt.Errorf("pull activity: %w", err))
		activity = syncapi.Activity{}
	}

	var counts PullCounts
	var problems []error
	err = e.store.Update(ctx, func(tx localstore.Tx) error {
		counts, problems = PullCounts{}, nil

		index, err := e.importCourses(tx, serverCourses, &counts)
		if err != nil {
			return err
		}
		if problems, err = e.pullRounds(tx, index, activity.Rounds, &counts); err != nil {
			return err
		}
		matchProblems, err := e.pullMatches(tx, index, activity.Matches, &counts)
		if err != nil {
			return err
		}
		problems = append(problems, matchProblems...)
		skinsProblems, err := e.pullSkins(tx, index, activity.SkinsGames, &counts)
		if err != nil {
			return err
		}
		problems = append(problems, skinsProblems...)

		for _, lm := range activity.LeagueMatches {
			node := lm.ToDomain()
			if node.ID <= 0 {
				continue
			}
			if err := localstore.Put(tx, localstore.TableLeagueMatches, &node); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "pull failed", "error", err)
		result.note(fmt.Errorf("pull: %w", err))
		return
	}

	result.Pulled = counts
	for _, p := range problems {
		logger.WarnContext(ctx, "pull record skipped", "error", p)
		result.note(p)
	}
}

// importCourses adds server courses the client has never seen. A local
// course with the same folded name and no server id adopts the server id.
func (e *Engine) importCourses(tx localstore.Tx, remote []syncapi.Course, counts *PullCounts) (localCourses, error) {
	locals, err := localstore.GetAll[course.Course](tx, localstore.TableCourses)
	if err != nil {
		return localCourses{}, err
	}

	index := localCourses{byServer: map[int64]int64{}}
	unmapped := map[string]course.Course{}
	for _, c := range locals {
		if c.ServerID != nil {
			index.byServer[*c.ServerID] = c.ID
		} else {
			unmapped[course.NameKey(c.Name)] = c
		}
	}

	for _, sc := range remote {
		if sc.ID <= 0 {
			continue
		}
		if _, known := index.byServer[sc.ID]; known {
			continue
		}

		serverID := sc.ID
		key := course.NameKey(sc.Name)
		if local, ok := unmapped[key]; ok {
			local.ServerID = &serverID
			local.Synced = true
			if err := localstore.Put(tx, localstore.TableCourses, &local); err != nil {
				return localCourses{}, err
			}
			delete(unmapped, key)
			index.byServer[serverID] = local.ID
			counts.Stamped++
			continue
		}

		c := sc.ToDomain()
		c.ID = 0
		c.ServerID = &serverID
		c.Synced = true
		c.CreatedAt = e.now().UTC()
		localID, err := localstore.Add(tx, localstore.TableCourses, &c)
		if err != nil {
			return localCourses{}, err
		}
		index.byServer[serverID] = localID
		counts.Imported++
	}
	return index, nil
}

func (e *Engine) pullRounds(tx localstore.Tx, index localCourses, remote []syncapi.Round, counts *PullCounts) ([]error, error) {
	locals, err := localstore.GetAll[round.Round](tx, localstore.TableRounds)
	if err != nil {
		return nil, err
	}

	var problems []error
	for _, sr := range remote {
		courseID, ok := index.byServer[sr.CourseID]
		if !ok {
			problems = append(problems, fmt.Errorf("server round %d: unknown course %d", sr.ID, sr.CourseID))
			continue
		}
		incoming := sr.ToDomain()
		serverID := sr.ID
		incoming.ServerID = &serverID
		incoming.CourseID = courseID
		incoming.Synced = true
		incoming.UpdatedAt = e.now().UTC()

		pos := -1
		for i, r := range locals {
			if r.ServerID != nil && *r.ServerID == serverID {
				pos = i
				break
			}
		}
		if pos < 0 {
			for i, r := range locals {
				if r.ServerID == nil && r.UserID == incoming.UserID && r.CourseID == courseID && withinWindow(r.PlayedAt, incoming.PlayedAt) {
					pos = i
					break
				}
			}
		}

		if pos < 0 {
			incoming.ID = 0
			if _, err := localstore.Add(tx, localstore.TableRounds, &incoming); err != nil {
				return nil, err
			}
			locals = append(locals, incoming)
			counts.Imported++
			continue
		}

		local := locals[pos]
		switch {
		case local.Synced:
			incoming.ID = local.ID
			local = incoming
			counts.Updated++
		case local.ServerID == nil:
			// Stamped but left unsynced: the local copy may hold edits the
			// server has not seen, and the next push updates by server id.
			local.ServerID = &serverID
			counts.Stamped++
		default:
			continue
		}
		if err := localstore.Put(tx, localstore.TableRounds, &local); err != nil {
			return nil, err
		}
		locals[pos] = local
	}
	return problems, nil
}

func (e *Engine) pullMatches(tx localstore.Tx, index localCourses, remote []syncapi.Match, counts *PullCounts) ([]error, error) {
	locals, err := localstore.GetAll[match.Match](tx, localstore.TableMatches)
	if err != nil {
		return nil, err
	}

	var problems []error
	for _, sm := range remote {
		courseID, ok := index.byServer[sm.CourseID]
		if !ok {
			problems = append(problems, fmt.Errorf("server match %d: unknown course %d", sm.ID, sm.CourseID))
			continue
		}
		incoming := sm.ToDomain()
		serverID := sm.ID
		incoming.ServerID = &serverID
		incoming.CourseID = courseID
		incoming.Synced = true
		incoming.UpdatedAt = e.now().UTC()

		pos := -1
		for i, m := range locals {
			if m.ServerID != nil && *m.ServerID == serverID {
				pos = i
				break
			}
		}
		if pos < 0 {
			for i, m := range locals {
				if m.ServerID == nil && m.CourseID == courseID && withinWindow(m.PlayedAt, incoming.PlayedAt) {
					pos = i
					break
				}
			}
		}

		if pos < 0 {
			incoming.ID = 0
			if _, err := localstore.Add(tx, localstore.TableMatches, &incoming); err != nil {
				return nil, err
			}
			locals = append(locals, incoming)
			counts.Imported++
			continue
		}

		local := locals[pos]
		switch {
		case local.Synced:
			incoming.ID = local.ID
			local = incoming
			counts.Updated++
		case local.ServerID == nil:
			// Left unsynced so local edits still go out; see pullRounds.
			local.ServerID = &serverID
			counts.Stamped++
		default:
			continue
		}
		if err := localstore.Put(tx, localstore.TableMatches, &local); err != nil {
			return nil, err
		}
		locals[pos] = local
	}
	return problems, nil
}

func (e *Engine) pullSkins(tx localstore.Tx, index localCourses, remote []syncapi.SkinsGame, counts *PullCounts) ([]error, error) {
	locals, err := localstore.GetAll[skins.Game](tx, localstore.TableSkinsGames)
	if err != nil {
		return nil, err
	}

	var problems []error
	for _, sg := range remote {
		courseID, ok := index.byServer[sg.CourseID]
		if !ok {
			problems = append(problems, fmt.Errorf("server skins game %d: unknown course %d", sg.ID, sg.CourseID))
			continue
		}
		incoming := sg.ToDomain()
		serverID := sg.ID
		incoming.ServerID = &serverID
		incoming.CourseID = courseID
		incoming.Synced = true
		incoming.UpdatedAt = e.now().UTC()

		pos := -1
		for i, g := range locals {
			if g.ServerID != nil && *g.ServerID == serverID {
				pos = i
				break
			}
		}
		if pos < 0 {
			for i, g := range locals {
				if g.ServerID == nil && g.UserID == incoming.UserID && g.CourseID == courseID && withinWindow(g.PlayedAt, incoming.PlayedAt) {
					pos = i
					break
				}
			}
		}

		if pos < 0 {
			incoming.ID = 0
			if _, err := localstore.Add(tx, localstore.TableSkinsGames, &incoming); err != nil {
				return nil, err
			}
			locals = append(locals, incoming)
			counts.Imported++
			continue
		}

		local := locals[pos]
		switch {
		case local.Synced:
			incoming.ID = local.ID
			local = incoming
			counts.Updated++
		case local.ServerID == nil:
			// Left unsynced so local edits still go out; see pullRounds.
			local.ServerID = &serverID
			counts.Stamped++
		default:
			continue
		}
		if err := localstore.Put(tx, localstore.TableSkinsGames, &local); err != nil {
			return nil, err
		}
		locals[pos] = local
	}
	return problems, nil
}
