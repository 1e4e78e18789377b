package domain

import "math"

// TaskCounts are the raw per-owner aggregates produced by storage.
type TaskCounts struct {
	Total     int
	Completed int
	Archived  int
	Overdue   int
	Upcoming  int
	Category  map[Category]int
	Priority  map[Priority]int
}

// TaskStats is the statistics bundle over a user's full task set.
type TaskStats struct {
	Total          int
	Completed      int
	Pending        int
	Overdue        int
	Archived       int
	Upcoming       int
	CompletionRate int
	CategoryStats  map[Category]int
	PriorityStats  map[Priority]int
}

// NewTaskStats derives the stats bundle from raw counts. Category and
// priority maps always carry every key.
func NewTaskStats(c TaskCounts) TaskStats {
	s := TaskStats{
		Total:         c.Total,
		Completed:     c.Completed,
		Pending:       c.Total - c.Completed,
		Overdue:       c.Overdue,
		Archived:      c.Archived,
		Upcoming:      c.Upcoming,
		CategoryStats: make(map[Category]int, len(Categories)),
		PriorityStats: make(map[Priority]int, len(Priorities)),
	}
	for _, cat := range Categories {
		s.CategoryStats[cat] = c.Category[cat]
	}
	for _, p := range Priorities {
		s.PriorityStats[p] = c.Priority[p]
	}
	if c.Total > 0 {
		s.CompletionRate = int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
	}
	return s
}

// TaskPage is one page of a listing plus its metadata.
type TaskPage struct {
	Items      []Task
	Pagination Pagination
	Stats      TaskStats
}

type DailyCount struct {
	Date  string
	Count int
}

// TaskAnalytics summarizes completions over a window of days.
type TaskAnalytics struct {
	CompletedOverTime      []DailyCount
	TasksByCategory        map[Category]int
	TasksByPriority        map[Priority]int
	AverageCompletionHours float64
	ProductivityTrend      float64
	TotalTasksInPeriod     int
	CompletedTasksInPeriod int
}

// ProductivityInsights is the fixed 30-day productivity report.
type ProductivityInsights struct {
	MostProductiveCategory  Category
	LeastProductiveCategory Category
	AverageTasksPerDay      float64
	BestCompletionDay       string
	RecommendedFocus        Category
	StreakDays              int
	TimeToComplete          map[Priority]float64
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
