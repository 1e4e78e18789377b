package domain

import (
	"reflect"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func ids(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSortTasks_PriorityBySeverityNotLexically(t *testing.T) {
	tasks := []Task{
		{ID: 1, Priority: PriorityLow},
		{ID: 2, Priority: PriorityHigh},
		{ID: 3, Priority: PriorityMedium},
	}

	SortTasks(tasks, TaskFilter{SortBy: SortPriority, SortOrder: SortDesc})
	if got, want := ids(tasks), []int64{2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("desc order: got %v want %v", got, want)
	}

	SortTasks(tasks, TaskFilter{SortBy: SortPriority, SortOrder: SortAsc})
	if got, want := ids(tasks), []int64{1, 3, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("asc order: got %v want %v", got, want)
	}
}

func TestSortTasks_DefaultIsCreatedAtDesc(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}
	SortTasks(tasks, TaskFilter{})
	if got, want := ids(tasks), []int64{2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSortTasks_MissingDueDatesSortLast(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: 1},
		{ID: 2, DueDate: ptr(base.Add(time.Hour))},
		{ID: 3, DueDate: ptr(base)},
	}
	SortTasks(tasks, TaskFilter{SortBy: SortDueDate, SortOrder: SortAsc})
	if got, want := ids(tasks), []int64{3, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("asc: got %v want %v", got, want)
	}
	SortTasks(tasks, TaskFilter{SortBy: SortDueDate, SortOrder: SortDesc})
	if got, want := ids(tasks), []int64{2, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("desc: got %v want %v", got, want)
	}
}

func TestTaskFilter_Matches(t *testing.T) {
	task := Task{
		Title:       "Buy groceries",
		Description: "Milk and BREAD",
		Priority:    PriorityMedium,
		Category:    CategoryShopping,
		Tags:        []string{"weekly", "food", "home"},
	}

	cases := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"empty filter", TaskFilter{}, true},
		{"status all", TaskFilter{Status: StatusAll}, true},
		{"status pending", TaskFilter{Status: StatusPending}, true},
		{"status completed", TaskFilter{Status: StatusCompleted}, false},
		{"category match", TaskFilter{Category: ptr(CategoryShopping)}, true},
		{"category mismatch", TaskFilter{Category: ptr(CategoryWork)}, false},
		{"priority mismatch", TaskFilter{Priority: ptr(PriorityHigh)}, false},
		{"tags subset any order", TaskFilter{Tags: []string{"home", "weekly"}}, true},
		{"tags not subset", TaskFilter{Tags: []string{"weekly", "urgent"}}, false},
		{"search title case-insensitive", TaskFilter{Search: "GROCER"}, true},
		{"search description", TaskFilter{Search: "bread"}, true},
		{"search miss", TaskFilter{Search: "eggs"}, false},
		{"archived false", TaskFilter{IsArchived: ptr(false)}, true},
		{"archived true", TaskFilter{IsArchived: ptr(true)}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(task); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseSortKey_Aliases(t *testing.T) {
	if ParseSortKey("created") != SortCreatedAt || ParseSortKey("updated") != SortUpdatedAt {
		t.Fatalf("short aliases not recognised")
	}
	if ParseSortKey("bogus") != SortCreatedAt {
		t.Fatalf("unknown key must fall back to createdAt")
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, 20, 20)
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("middle page flags: %+v", p)
	}
	p = NewPagination(45, 20, 40)
	if p.HasNext || !p.HasPrev {
		t.Fatalf("last page flags: %+v", p)
	}
	p = NewPagination(20, 20, 0)
	if p.HasNext || p.HasPrev {
		t.Fatalf("single page flags: %+v", p)
	}
}
