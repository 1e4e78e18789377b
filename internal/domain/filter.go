package domain

import (
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

type SortKey string

const (
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "createdAt"
	SortUpdatedAt SortKey = "updatedAt"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
)

// ParseSortKey accepts the canonical keys plus the short "created"/"updated"
// aliases. Unknown keys fall back to createdAt.
func ParseSortKey(s string) SortKey {
	switch s {
	case "title":
		return SortTitle
	case "updatedAt", "updated":
		return SortUpdatedAt
	case "dueDate":
		return SortDueDate
	case "priority":
		return SortPriority
	default:
		return SortCreatedAt
	}
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultLimit is the page size applied by callers when none is requested.
const DefaultLimit = 20

// TaskFilter is the query specification for one listing call. Zero-valued
// fields impose no constraint. Limit <= 0 means unbounded.
type TaskFilter struct {
	Status     Status
	Category   *Category
	Priority   *Priority
	Tags       []string
	Search     string
	IsArchived *bool
	SortBy     SortKey
	SortOrder  SortOrder
	Limit      int
	Offset     int
}

// Sort returns the effective sort key and order (createdAt desc by default).
func (f TaskFilter) Sort() (SortKey, SortOrder) {
	key := f.SortBy
	if key == "" {
		key = SortCreatedAt
	}
	order := f.SortOrder
	if order != SortAsc {
		order = SortDesc
	}
	return key, order
}

// Matches reports whether t satisfies every predicate of the filter.
// Owner scoping is applied by the repository, not here.
func (f TaskFilter) Matches(t Task) bool {
	switch f.Status {
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.IsArchived != nil && t.IsArchived != *f.IsArchived {
		return false
	}
	if !t.HasTags(f.Tags) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// SortTasks orders tasks in place by the filter's sort key. Ties break on id
// in the same direction; tasks without a due date sort last either way.
func SortTasks(tasks []Task, f TaskFilter) {
	key, order := f.Sort()
	desc := order == SortDesc
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if key == SortDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			return b.DueDate == nil
		}
		c := compareTasks(a, b, key)
		if c == 0 {
			c = compareInt(a.ID, b.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareTasks(a, b Task, key SortKey) int {
	switch key {
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortUpdatedAt:
		return compareTime(a.UpdatedAt, b.UpdatedAt)
	case SortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return compareTime(*a.DueDate, *b.DueDate)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Pagination is the metadata returned alongside a page of tasks.
type Pagination struct {
	Total   int
	Limit   int
	Offset  int
	HasNext bool
	HasPrev bool
}

// NewPagination derives page flags from the pre-pagination total.
func NewPagination(total, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	}
}
