package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "taskmanager/internal/domain"
)

// DueDate parses dueDate from JSON as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC.
type DueDate struct{ t *time.Time }

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			parsed = parsed.UTC()
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("dueDate: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Priority    string   `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category    string   `json:"category" binding:"omitempty,oneof=work personal shopping health education other"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
	DueDate     DueDate  `json:"dueDate" swaggertype:"string"` // "2026-02-19" or RFC3339
}

func (r CreateTaskRequest) Task() dom.Task {
	return dom.Task{
		Title:       r.Title,
		Description: r.Description,
		Priority:    dom.Priority(r.Priority),
		Category:    dom.Category(r.Category),
		Tags:        r.Tags,
		DueDate:     r.DueDate.Ptr(),
	}
}

// UpdateTaskRequest is a partial update; absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Completed   *bool     `json:"completed"`
	Priority    *string   `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category    *string   `json:"category" binding:"omitempty,oneof=work personal shopping health education other"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
	IsArchived  *bool     `json:"isArchived"`
	DueDate     *DueDate  `json:"dueDate" swaggertype:"string"`
}

func (r UpdateTaskRequest) Patch() dom.TaskPatch {
	p := dom.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Tags:        r.Tags,
		IsArchived:  r.IsArchived,
	}
	if r.Priority != nil {
		v := dom.Priority(*r.Priority)
		p.Priority = &v
	}
	if r.Category != nil {
		v := dom.Category(*r.Category)
		p.Category = &v
	}
	if r.DueDate != nil {
		p.DueDate = r.DueDate.Ptr()
	}
	return p
}

type BulkUpdateRequest struct {
	TaskIDs []int64           `json:"taskIds" binding:"required,min=1,max=100,dive,gt=0"`
	Updates UpdateTaskRequest `json:"updates"`
}

// ArchiveRequest toggles the archived flag; an empty body archives.
type ArchiveRequest struct {
	Archive *bool `json:"archive"`
}

// ListTasksQuery holds the query string of GET /tasks.
type ListTasksQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=all completed pending"`
	Category   string `form:"category" binding:"omitempty,oneof=work personal shopping health education other"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high"`
	Tags       string `form:"tags"` // comma separated
	Search     string `form:"search" binding:"max=200"`
	IsArchived *bool  `form:"isArchived"`
	SortBy     string `form:"sortBy" binding:"omitempty,oneof=title createdAt updatedAt dueDate priority created updated"`
	SortOrder  string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the query into a filter. An absent isArchived selects
// unarchived tasks.
func (q ListTasksQuery) Filter() dom.TaskFilter {
	f := dom.TaskFilter{
		Status:    dom.Status(q.Status),
		Search:    strings.TrimSpace(q.Search),
		SortBy:    dom.ParseSortKey(q.SortBy),
		SortOrder: dom.SortOrder(q.SortOrder),
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if f.Status == "" {
		f.Status = dom.StatusAll
	}
	if q.Category != "" {
		c := dom.Category(q.Category)
		f.Category = &c
	}
	if q.Priority != "" {
		p := dom.Priority(q.Priority)
		f.Priority = &p
	}
	for _, tag := range strings.Split(q.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}
	archived := false
	if q.IsArchived != nil {
		archived = *q.IsArchived
	}
	f.IsArchived = &archived
	return f
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsArchived  bool       `json:"isArchived"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

type PaginationResponse struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

type StatsResponse struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Pending        int            `json:"pending"`
	Overdue        int            `json:"overdue"`
	Archived       int            `json:"archived"`
	Upcoming       int            `json:"upcoming"`
	CompletionRate int            `json:"completionRate"`
	CategoryStats  map[string]int `json:"categoryStats"`
	PriorityStats  map[string]int `json:"priorityStats"`
}

type TaskPageResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
	Stats      StatsResponse      `json:"stats"`
}

type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsResponse struct {
	CompletedTasksOverTime []DailyCountResponse `json:"completedTasksOverTime"`
	TasksByCategory        map[string]int       `json:"tasksByCategory"`
	TasksByPriority        map[string]int       `json:"tasksByPriority"`
	AverageCompletionTime  float64              `json:"averageCompletionTime"` // hours
	ProductivityTrend      float64              `json:"productivityTrend"`     // percent
	TotalTasksInPeriod     int                  `json:"totalTasksInPeriod"`
	CompletedTasksInPeriod int                  `json:"completedTasksInPeriod"`
}

type InsightsResponse struct {
	MostProductiveCategory  string             `json:"mostProductiveCategory"`
	LeastProductiveCategory string             `json:"leastProductiveCategory"`
	AverageTasksPerDay      float64            `json:"averageTasksPerDay"`
	BestCompletionDay       string             `json:"bestCompletionDay"`
	RecommendedFocus        string             `json:"recommendedFocus"`
	StreakDays              int                `json:"streakDays"`
	TimeToComplete          map[string]float64 `json:"timeToComplete"`
}

type RemindersResponse struct {
	Count int            `json:"count"`
	Items []TaskResponse `json:"items"`
}

type TriggerRemindersResponse struct {
	Processed int `json:"processed"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}
