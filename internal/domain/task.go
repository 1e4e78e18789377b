package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in ascending severity.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities by severity: high > medium > low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryShopping  Category = "shopping"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategoryOther     Category = "other"
)

// Categories lists every category in canonical order.
var Categories = []Category{
	CategoryWork, CategoryPersonal, CategoryShopping,
	CategoryHealth, CategoryEducation, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Task is owned by exactly one user. Storage sets CreatedAt/UpdatedAt.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Category    Category
	Tags        []string
	DueDate     *time.Time
	IsArchived  bool
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOverdue reports whether the task is past due and still open.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// HasTags reports whether the task's tags are a superset of want.
func (t Task) HasTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(t.Tags))
	for _, tag := range t.Tags {
		have[tag] = struct{}{}
	}
	for _, tag := range want {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}

// WithDefaults fills priority, category and tags for a new task.
func (t Task) WithDefaults() Task {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOther
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Category    *Category
	Tags        *[]string
	IsArchived  *bool
	DueDate     *time.Time
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Category == nil && p.Tags == nil &&
		p.IsArchived == nil && p.DueDate == nil
}

// Apply returns t with the patch applied. CompletedAt is stamped with now when
// the task turns completed and cleared when it is reopened.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		switch {
		case *p.Completed && !t.Completed:
			ts := now
			t.CompletedAt = &ts
		case !*p.Completed:
			t.CompletedAt = nil
		}
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.IsArchived != nil {
		t.IsArchived = *p.IsArchived
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	return t
}
