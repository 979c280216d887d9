package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"gitactivity/internal/models"
	"gitactivity/internal/pkg"
)

const (
	day          = 24 * time.Hour
	growthWindow = 7
)

// Aggregate computes the dashboard summary over records as of now.
func Aggregate(records []models.ActivityRecord, now time.Time) models.StatsSummary {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	authors := make(map[string]struct{})
	// daily[i] counts records between i and i+1 days ago.
	daily := make(stats.Float64Data, 2*growthWindow)
	summary := models.StatsSummary{TotalActivities: len(records)}

	for _, a := range records {
		authors[a.Author] = struct{}{}
		if isBranchOperation(a.Action) {
			summary.BranchOperations++
		}

		t := a.Time()
		if t.IsZero() || t.After(now) {
			continue
		}
		age := now.Sub(t)
		if age < day {
			summary.RecentActivity++
		}
		if !t.Before(midnight) {
			summary.TodayActivities++
		}
		if idx := int(age / day); idx < len(daily) {
			daily[idx]++
		}
	}

	summary.UniqueAuthors = len(authors)
	summary.WeeklyGrowth = weeklyGrowth(daily)
	return summary
}

func isBranchOperation(action models.Action) bool {
	a := models.Action(strings.ToUpper(string(action)))
	return a == models.ActionCreateBranch || a == models.ActionDeleteBranch
}

func weeklyGrowth(daily stats.Float64Data) string {
	current, _ := stats.Sum(daily[:growthWindow])
	previous, _ := stats.Sum(daily[growthWindow:])

	switch {
	case previous == 0 && current == 0:
		return formatGrowth(0)
	case previous == 0:
		return formatGrowth(100)
	}

	growth, err := stats.Round((current-previous)/previous*100, 1)
	if err != nil {
		return formatGrowth(0)
	}
	return formatGrowth(growth)
}

func formatGrowth(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// PlaceholderStats returns synthetic values in fixed ranges. They are not
// derived from any activity data.
func PlaceholderStats(rng *pkg.LockedRand) models.StatsSummary {
	return models.StatsSummary{
		TotalActivities:  rng.IntRange(500, 1000),
		UniqueAuthors:    rng.IntRange(15, 20),
		BranchOperations: rng.IntRange(100, 200),
		RecentActivity:   rng.IntRange(25, 50),
		TodayActivities:  rng.IntRange(20, 50),
		WeeklyGrowth:     formatGrowth(rng.Float64()*20 - 10),
	}
}
