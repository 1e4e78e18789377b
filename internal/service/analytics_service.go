package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"
)

const (
	// MaxAnalyticsDays bounds the analytics window.
	MaxAnalyticsDays = 365
	insightsDays     = 30
	// streakLookback caps how far back a streak is counted.
	streakLookback = 30
	dayLayout      = "2006-01-02"
)

// AnalyticsService computes productivity metrics from period queries.
// Calendar days are UTC.
type AnalyticsService struct {
	tasks repo.TaskRepo
	log   *slog.Logger
	now   func() time.Time
}

func NewAnalyticsService(tasks repo.TaskRepo, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{tasks: tasks, log: log, now: utcNow}
}

// Analytics summarizes the last days days against the window before it.
// A previous window with no completions yields a trend of 0.
func (s *AnalyticsService) Analytics(ctx context.Context, userID int64, days int) (dom.TaskAnalytics, error) {
	if days < 1 || days > MaxAnalyticsDays {
		return dom.TaskAnalytics{}, dom.Validation("timeframe must be between 1 and 365 days")
	}
	end := s.now()
	start := end.AddDate(0, 0, -days)

	completed, err := s.tasks.CompletedInPeriod(ctx, userID, start, end)
	if err != nil {
		return dom.TaskAnalytics{}, storageErr("completed in period", err)
	}
	created, err := s.tasks.CreatedInPeriod(ctx, userID, start, end)
	if err != nil {
		return dom.TaskAnalytics{}, storageErr("created in period", err)
	}
	previous, err := s.tasks.CompletedInPeriod(ctx, userID, start.AddDate(0, 0, -days), start)
	if err != nil {
		return dom.TaskAnalytics{}, storageErr("previous period", err)
	}

	a := dom.TaskAnalytics{
		CompletedOverTime:      bucketByDay(completed),
		TasksByCategory:        make(map[dom.Category]int, len(dom.Categories)),
		TasksByPriority:        make(map[dom.Priority]int, len(dom.Priorities)),
		AverageCompletionHours: dom.Round2(meanHours(completed)),
		ProductivityTrend:      dom.Round2(trend(len(completed), len(previous))),
		TotalTasksInPeriod:     len(created),
		CompletedTasksInPeriod: len(completed),
	}
	for _, c := range dom.Categories {
		a.TasksByCategory[c] = 0
	}
	for _, p := range dom.Priorities {
		a.TasksByPriority[p] = 0
	}
	for _, t := range completed {
		a.TasksByCategory[t.Category]++
		a.TasksByPriority[t.Priority]++
	}
	s.log.Debug("analytics generated", "user_id", userID, "days", days,
		"completed", len(completed), "created", len(created))
	return a, nil
}

// Insights reports the fixed 30-day productivity picture.
func (s *AnalyticsService) Insights(ctx context.Context, userID int64) (dom.ProductivityInsights, error) {
	now := s.now()
	completed, err := s.tasks.CompletedInPeriod(ctx, userID, now.AddDate(0, 0, -insightsDays), now)
	if err != nil {
		return dom.ProductivityInsights{}, storageErr("completed in period", err)
	}
	counts, err := s.tasks.StatsFor(ctx, userID, now)
	if err != nil {
		return dom.ProductivityInsights{}, storageErr("task stats", err)
	}

	ranked := rankCategories(completed, counts)
	in := dom.ProductivityInsights{
		MostProductiveCategory:  dom.CategoryOther,
		LeastProductiveCategory: dom.CategoryOther,
		RecommendedFocus:        dom.CategoryOther,
		AverageTasksPerDay:      dom.Round2(float64(len(completed)) / insightsDays),
		BestCompletionDay:       bestCompletionDay(completed),
		StreakDays:              streakDays(completed, now),
		TimeToComplete:          make(map[dom.Priority]float64, len(dom.Priorities)),
	}
	if counts.Total > 0 {
		in.MostProductiveCategory = ranked[0]
		in.LeastProductiveCategory = ranked[len(ranked)-1]
		in.RecommendedFocus = in.LeastProductiveCategory
	}
	for _, p := range dom.Priorities {
		var group []dom.Task
		for _, t := range completed {
			if t.Priority == p {
				group = append(group, t)
			}
		}
		in.TimeToComplete[p] = dom.Round2(meanHours(group))
	}
	s.log.Debug("insights generated", "user_id", userID, "streak", in.StreakDays)
	return in, nil
}

// rankCategories orders categories by window completions over all-time
// totals, highest first. Equal rates keep canonical order.
func rankCategories(completed []dom.Task, counts dom.TaskCounts) []dom.Category {
	done := map[dom.Category]int{}
	for _, t := range completed {
		done[t.Category]++
	}
	rate := make(map[dom.Category]float64, len(dom.Categories))
	for _, c := range dom.Categories {
		if total := counts.Category[c]; total > 0 {
			rate[c] = float64(done[c]) / float64(total)
		}
	}
	ranked := append([]dom.Category{}, dom.Categories...)
	sort.SliceStable(ranked, func(i, j int) bool { return rate[ranked[i]] > rate[ranked[j]] })
	return ranked
}

// bucketByDay counts completions per UTC date, ascending, omitting empty days.
func bucketByDay(completed []dom.Task) []dom.DailyCount {
	counts := map[string]int{}
	for _, t := range completed {
		counts[completionTime(t).UTC().Format(dayLayout)]++
	}
	out := make([]dom.DailyCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, dom.DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// streakDays counts consecutive days with a completion, walking back from
// today. The walk stops at the first empty day or after streakLookback days.
func streakDays(completed []dom.Task, now time.Time) int {
	active := map[string]bool{}
	for _, t := range completed {
		active[completionTime(t).UTC().Format(dayLayout)] = true
	}
	today := now.UTC()
	streak := 0
	for i := 0; i < streakLookback; i++ {
		if !active[today.AddDate(0, 0, -i).Format(dayLayout)] {
			break
		}
		streak++
	}
	return streak
}

// bestCompletionDay returns the weekday with the most completions. Ties go
// to the earliest day in Sunday..Saturday order.
func bestCompletionDay(completed []dom.Task) string {
	var perDay [7]int
	for _, t := range completed {
		perDay[completionTime(t).UTC().Weekday()]++
	}
	best := time.Sunday
	for d := time.Monday; d <= time.Saturday; d++ {
		if perDay[d] > perDay[best] {
			best = d
		}
	}
	return best.String()
}

func meanHours(tasks []dom.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		sum += completionTime(t).Sub(t.CreatedAt).Hours()
	}
	return sum / float64(len(tasks))
}

// trend is the percent change from previous to current; 0 when previous is 0.
func trend(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func completionTime(t dom.Task) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.UpdatedAt
}
