// Package standings turns league rounds into period points and season tables.
package standings

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/league"
)

// PointsTable is indexed by finishing position within a period.
var PointsTable = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

func PointsForRank(rank int) int {
	if rank < 1 || rank > len(PointsTable) {
		return 0
	}
	return PointsTable[rank-1]
}

// WeekNumber shifts the date to the Thursday of its Monday-based week and
// counts weeks from January 1st of that Thursday's year.
func WeekNumber(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := day.AddDate(0, 0, 4-weekday)
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := thursday.Sub(yearStart).Hours() / 24
	return int(math.Ceil((days + 1) / 7))
}

// PeriodKey labels the period a play date falls in. Week keys use the play
// date's own calendar year, so the last days of December can land in "W01".
func PeriodKey(t time.Time, period league.Period) string {
	if period == league.PeriodMonth {
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
	return fmt.Sprintf("%04d-W%02d", t.Year(), WeekNumber(t))
}

type Placing struct {
	UserID  int64 `json:"userId"`
	RoundID int64 `json:"roundId"`
	Score   int   `json:"score"`
	Rank    int   `json:"rank"`
	Points  int   `json:"points"`
}

type PeriodResult struct {
	Period   string    `json:"period"`
	Placings []Placing `json:"placings"`
}

type Entry struct {
	UserID        int64 `json:"userId"`
	Rank          int   `json:"rank"`
	Points        int   `json:"points"`
	PeriodsPlayed int   `json:"periodsPlayed"`
	BestScore     int   `json:"bestScore"`
}

type Table struct {
	Periods   []PeriodResult `json:"periods"`
	Standings []Entry        `json:"standings"`
}

// Compute keeps each player's best round per period, awards PointsTable by
// rank and sums across periods. Players level on points share a rank.
func Compute(rounds []league.Round, period league.Period) Table {
	best := make(map[string]map[int64]league.Round)
	for _, r := range rounds {
		key := PeriodKey(r.PlayedAt, period)
		perUser, ok := best[key]
		if !ok {
			perUser = make(map[int64]league.Round)
			best[key] = perUser
		}
		current, ok := perUser[r.UserID]
		if !ok || r.Points > current.Points {
			perUser[r.UserID] = r
		}
	}

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	totals := make(map[int64]*Entry)
	table := Table{Periods: make([]PeriodResult, 0, len(keys))}
	for _, key := range keys {
		reps := make([]league.Round, 0, len(best[key]))
		for _, r := range best[key] {
			reps = append(reps, r)
		}
		sort.Slice(reps, func(i, j int) bool {
			if reps[i].Points != reps[j].Points {
				return reps[i].Points > reps[j].Points
			}
			return reps[i].UserID < reps[j].UserID
		})

		result := PeriodResult{Period: key, Placings: make([]Placing, 0, len(reps))}
		for i, r := range reps {
			placing := Placing{
				UserID:  r.UserID,
				RoundID: r.RoundID,
				Score:   r.Points,
				Rank:    i + 1,
				Points:  PointsForRank(i + 1),
			}
			result.Placings = append(result.Placings, placing)

			entry, ok := totals[r.UserID]
			if !ok {
				entry = &Entry{UserID: r.UserID}
				totals[r.UserID] = entry
			}
			entry.Points += placing.Points
			entry.PeriodsPlayed++
			if r.Points > entry.BestScore {
				entry.BestScore = r.Points
			}
		}
		table.Periods = append(table.Periods, result)
	}

	table.Standings = make([]Entry, 0, len(totals))
	for _, entry := range totals {
		table.Standings = append(table.Standings, *entry)
	}
	sort.Slice(table.Standings, func(i, j int) bool {
		if table.Standings[i].Points != table.Standings[j].Points {
			return table.Standings[i].Points > table.Standings[j].Points
		}
		return table.Standings[i].UserID < table.Standings[j].UserID
	})
	for i := range table.Standings {
		if i > 0 && table.Standings[i].Points == table.Standings[i-1].Points {
			table.Standings[i].Rank = table.Standings[i-1].Rank
			continue
		}
		table.Standings[i].Rank = i + 1
	}

	return table
}
