package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"

	"golang.org/x/sync/singleflight"
)

// TaskService is the owner-scoped task query engine. Tasks of other users
// are reported as not found.
type TaskService struct {
	tasks repo.TaskRepo
	users repo.UserRepo
	log   *slog.Logger
	now   func() time.Time
	sf    singleflight.Group
}

func NewTaskService(tasks repo.TaskRepo, users repo.UserRepo, log *slog.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, log: log, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// List returns one page of the caller's tasks with pagination metadata and
// the unfiltered stats bundle.
func (s *TaskService) List(ctx context.Context, userID int64, f dom.TaskFilter) (dom.TaskPage, error) {
	if f.Limit <= 0 {
		f.Limit = dom.DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	items, total, err := s.tasks.FindByOwner(ctx, userID, f)
	if err != nil {
		return dom.TaskPage{}, storageErr("list tasks", err)
	}
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return dom.TaskPage{}, err
	}
	s.log.Debug("tasks listed", "user_id", userID, "total", total, "returned", len(items))
	return dom.TaskPage{
		Items:      items,
		Pagination: dom.NewPagination(total, f.Limit, f.Offset),
		Stats:      stats,
	}, nil
}

// Stats returns the stats bundle over all of the caller's tasks. Concurrent
// calls for the same user share one repository round.
func (s *TaskService) Stats(ctx context.Context, userID int64) (dom.TaskStats, error) {
	v, err, _ := s.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		c, err := s.tasks.StatsFor(ctx, userID, s.now())
		if err != nil {
			return nil, storageErr("task stats", err)
		}
		return dom.NewTaskStats(c), nil
	})
	if err != nil {
		return dom.TaskStats{}, err
	}
	return v.(dom.TaskStats), nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return dom.Task{}, storageErr("get task", err)
	}
	if t.UserID != userID {
		return dom.Task{}, dom.ErrNotFound
	}
	return t, nil
}

// Create stores a new task for userID, filling defaults. The owner must exist.
func (s *TaskService) Create(ctx context.Context, userID int64, t dom.Task) (dom.Task, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return dom.Task{}, storageErr("find owner", err)
	}
	t = t.WithDefaults()
	if t.Title == "" {
		return dom.Task{}, dom.Validation("title is required")
	}
	if !t.Priority.Valid() {
		return dom.Task{}, dom.Validation("invalid priority")
	}
	if !t.Category.Valid() {
		return dom.Task{}, dom.Validation("invalid category")
	}
	t.ID = 0
	t.UserID = userID
	t.CreatedAt = time.Time{}
	t.CompletedAt = nil
	if t.Completed {
		now := s.now()
		t.CompletedAt = &now
	}
	out, err := s.tasks.Create(ctx, t)
	if err != nil {
		return dom.Task{}, storageErr("create task", err)
	}
	s.log.Info("task created", "user_id", userID, "task_id", out.ID)
	return out, nil
}

// Update applies a partial update. Only provided fields change.
func (s *TaskService) Update(ctx context.Context, userID, id int64, p dom.TaskPatch) (dom.Task, error) {
	if err := validatePatch(p); err != nil {
		return dom.Task{}, err
	}
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return dom.Task{}, err
	}
	if p.Empty() {
		return t, nil
	}
	out, err := s.tasks.Save(ctx, p.Apply(t, s.now()))
	if err != nil {
		return dom.Task{}, storageErr("update task", err)
	}
	s.log.Info("task updated", "user_id", userID, "task_id", id)
	return out, nil
}

// Archive sets or clears the archived flag.
func (s *TaskService) Archive(ctx context.Context, userID, id int64, archive bool) (dom.Task, error) {
	return s.Update(ctx, userID, id, dom.TaskPatch{IsArchived: &archive})
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.tasks.Delete(ctx, id, userID)
	if err != nil {
		return storageErr("delete task", err)
	}
	if !ok {
		return dom.ErrNotFound
	}
	s.log.Info("task deleted", "user_id", userID, "task_id", id)
	return nil
}

// BulkUpdate applies p to every listed task the caller owns. Other ids are
// skipped; the result holds only the tasks that were updated.
func (s *TaskService) BulkUpdate(ctx context.Context, userID int64, ids []int64, p dom.TaskPatch) ([]dom.Task, error) {
	if len(ids) == 0 {
		return nil, dom.Validation("taskIds must not be empty")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}
	list, err := s.tasks.BulkUpdate(ctx, ids, userID, p)
	if err != nil {
		return nil, storageErr("bulk update", err)
	}
	s.log.Info("tasks bulk updated", "user_id", userID, "requested", len(ids), "updated", len(list))
	return list, nil
}

// Overdue lists open, unarchived tasks past their due date, earliest first.
func (s *TaskService) Overdue(ctx context.Context, userID int64) ([]dom.Task, error) {
	list, err := s.tasks.OverdueFor(ctx, userID, s.now())
	if err != nil {
		return nil, storageErr("overdue tasks", err)
	}
	return list, nil
}

func validatePatch(p dom.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return dom.Validation("title must not be empty")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return dom.Validation("invalid priority")
	}
	if p.Category != nil && !p.Category.Valid() {
		return dom.Validation("invalid category")
	}
	return nil
}

// storageErr passes classified errors through and wraps the rest as Internal.
func storageErr(op string, err error) error {
	if dom.KindOf(err) != dom.KindInternal {
		return err
	}
	return dom.Internal(op, err)
}
