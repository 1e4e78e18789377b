package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/logging"
	"taskmanager/internal/repo"
)

func newAnalytics() (*AnalyticsService, *repo.MemTaskRepo) {
	tasks := repo.NewMemTaskRepo(clock)
	svc := NewAnalyticsService(tasks, logging.Discard())
	svc.now = clock
	return svc, tasks
}

// completedTask inserts a task for owner 1 created ago+took before now and
// completed ago before now.
func completedTask(r *repo.MemTaskRepo, ago, took time.Duration, c dom.Category, p dom.Priority) dom.Task {
	done := fixedNow.Add(-ago)
	return r.Insert(dom.Task{
		UserID: 1, Title: "t", Completed: true, Category: c, Priority: p,
		CreatedAt: done.Add(-took), UpdatedAt: done, CompletedAt: &done,
	})
}

func TestAnalytics_Window(t *testing.T) {
	svc, tasks := newAnalytics()
	completedTask(tasks, time.Hour, 4*time.Hour, dom.CategoryWork, dom.PriorityHigh)
	completedTask(tasks, 25*time.Hour, 2*time.Hour, dom.CategoryWork, dom.PriorityLow)
	completedTask(tasks, 26*time.Hour, 10*time.Hour, dom.CategoryHealth, dom.PriorityLow)
	completedTask(tasks, 8*24*time.Hour, 24*time.Hour, dom.CategoryWork, dom.PriorityLow)
	tasks.Insert(dom.Task{UserID: 1, Title: "open", CreatedAt: fixedNow.Add(-48 * time.Hour)})
	foreign := fixedNow.Add(-time.Hour)
	tasks.Insert(dom.Task{UserID: 2, Title: "foreign", Completed: true, CreatedAt: foreign, CompletedAt: &foreign})

	a, err := svc.Analytics(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	wantDays := []dom.DailyCount{{Date: "2026-04-14", Count: 2}, {Date: "2026-04-15", Count: 1}}
	if !reflect.DeepEqual(a.CompletedOverTime, wantDays) {
		t.Fatalf("buckets: got %+v", a.CompletedOverTime)
	}
	if a.CompletedTasksInPeriod != 3 || a.TotalTasksInPeriod != 4 {
		t.Fatalf("period counts: completed=%d created=%d", a.CompletedTasksInPeriod, a.TotalTasksInPeriod)
	}
	if a.AverageCompletionHours != 5.33 {
		t.Fatalf("average hours: got %v", a.AverageCompletionHours)
	}
	if a.ProductivityTrend != 200 {
		t.Fatalf("trend: got %v", a.ProductivityTrend)
	}
	if a.TasksByCategory[dom.CategoryWork] != 2 || a.TasksByCategory[dom.CategoryHealth] != 1 || len(a.TasksByCategory) != 6 {
		t.Fatalf("by category: %v", a.TasksByCategory)
	}
	if a.TasksByPriority[dom.PriorityLow] != 2 || a.TasksByPriority[dom.PriorityMedium] != 0 {
		t.Fatalf("by priority: %v", a.TasksByPriority)
	}
}

// A previous window without completions reports a flat trend rather than an
// infinite one.
func TestAnalytics_TrendIsZeroWithoutPreviousCompletions(t *testing.T) {
	svc, tasks := newAnalytics()
	completedTask(tasks, time.Hour, time.Hour, dom.CategoryWork, dom.PriorityLow)

	a, _ := svc.Analytics(context.Background(), 1, 7)
	if a.ProductivityTrend != 0 {
		t.Fatalf("trend: got %v", a.ProductivityTrend)
	}
}

func TestAnalytics_NegativeTrend(t *testing.T) {
	svc, tasks := newAnalytics()
	completedTask(tasks, time.Hour, time.Hour, dom.CategoryWork, dom.PriorityLow)
	for i := 0; i < 4; i++ {
		completedTask(tasks, 10*24*time.Hour, time.Hour, dom.CategoryWork, dom.PriorityLow)
	}
	a, _ := svc.Analytics(context.Background(), 1, 7)
	if a.ProductivityTrend != -75 {
		t.Fatalf("trend: got %v", a.ProductivityTrend)
	}
}

func TestAnalytics_EmptyWindow(t *testing.T) {
	svc, _ := newAnalytics()
	a, err := svc.Analytics(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if len(a.CompletedOverTime) != 0 || a.AverageCompletionHours != 0 || a.ProductivityTrend != 0 {
		t.Fatalf("empty analytics: %+v", a)
	}
}

func TestAnalytics_RejectsTimeframe(t *testing.T) {
	svc, _ := newAnalytics()
	for _, days := range []int{0, -1, MaxAnalyticsDays + 1} {
		if _, err := svc.Analytics(context.Background(), 1, days); dom.KindOf(err) != dom.KindValidation {
			t.Fatalf("days=%d: got %v", days, err)
		}
	}
}

func completionsAt(days ...int) []dom.Task {
	out := make([]dom.Task, len(days))
	for i, d := range days {
		ts := fixedNow.AddDate(0, 0, -d)
		out[i] = dom.Task{Completed: true, CompletedAt: &ts}
	}
	return out
}

func TestStreakDays(t *testing.T) {
	cases := []struct {
		name string
		days []int
		want int
	}{
		{"gap at day two", []int{0, 1, 3}, 2},
		{"nothing today", []int{1, 2, 3}, 0},
		{"none", nil, 0},
		{"several per day", []int{0, 0, 1, 1, 2}, 3},
	}
	for _, tc := range cases {
		if got := streakDays(completionsAt(tc.days...), fixedNow); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestStreakDays_CappedAtLookback(t *testing.T) {
	days := make([]int, 40)
	for i := range days {
		days[i] = i
	}
	if got := streakDays(completionsAt(days...), fixedNow); got != streakLookback {
		t.Fatalf("got %d", got)
	}
}

func TestBestCompletionDay(t *testing.T) {
	// fixedNow is a Wednesday: 1 day back is Tuesday, 2 Monday, 3 Sunday.
	cases := []struct {
		days []int
		want string
	}{
		{nil, "Sunday"},
		{[]int{1, 1, 3}, "Tuesday"},
		{[]int{2, 3}, "Sunday"},
		{[]int{0, 2}, "Monday"},
	}
	for _, tc := range cases {
		if got := bestCompletionDay(completionsAt(tc.days...)); got != tc.want {
			t.Fatalf("%v: got %s want %s", tc.days, got, tc.want)
		}
	}
}

func TestInsights(t *testing.T) {
	svc, tasks := newAnalytics()
	completedTask(tasks, time.Hour, 3*time.Hour, dom.CategoryHealth, dom.PriorityHigh)
	completedTask(tasks, 25*time.Hour, 5*time.Hour, dom.CategoryWork, dom.PriorityLow)
	tasks.Insert(dom.Task{UserID: 1, Title: "open", Category: dom.CategoryWork, Priority: dom.PriorityLow})
	tasks.Insert(dom.Task{UserID: 1, Title: "open", Category: dom.CategoryPersonal, Priority: dom.PriorityLow})

	in, err := svc.Insights(context.Background(), 1)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if in.MostProductiveCategory != dom.CategoryHealth {
		t.Fatalf("most productive: %s", in.MostProductiveCategory)
	}
	if in.LeastProductiveCategory != dom.CategoryOther || in.RecommendedFocus != in.LeastProductiveCategory {
		t.Fatalf("least productive: %s focus: %s", in.LeastProductiveCategory, in.RecommendedFocus)
	}
	if in.StreakDays != 2 || in.AverageTasksPerDay != 0.07 {
		t.Fatalf("streak=%d perDay=%v", in.StreakDays, in.AverageTasksPerDay)
	}
	want := map[dom.Priority]float64{dom.PriorityLow: 5, dom.PriorityMedium: 0, dom.PriorityHigh: 3}
	if !reflect.DeepEqual(in.TimeToComplete, want) {
		t.Fatalf("time to complete: %v", in.TimeToComplete)
	}
}

func TestInsights_NoTasks(t *testing.T) {
	svc, _ := newAnalytics()
	in, err := svc.Insights(context.Background(), 1)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if in.MostProductiveCategory != dom.CategoryOther || in.LeastProductiveCategory != dom.CategoryOther {
		t.Fatalf("defaults: %+v", in)
	}
	if in.StreakDays != 0 || in.AverageTasksPerDay != 0 || in.BestCompletionDay != "Sunday" || len(in.TimeToComplete) != 3 {
		t.Fatalf("empty insights: %+v", in)
	}
}
