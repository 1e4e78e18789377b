package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"
)

// ReminderLookahead is how far ahead a due date triggers a reminder.
const ReminderLookahead = 24 * time.Hour

// ReminderService finds open tasks due soon and sends their reminders.
// Delivery is a log line.
type ReminderService struct {
	tasks repo.TaskRepo
	log   *slog.Logger
	now   func() time.Time
}

func NewReminderService(tasks repo.TaskRepo, log *slog.Logger) *ReminderService {
	return &ReminderService{tasks: tasks, log: log, now: utcNow}
}

// DueSoon returns open tasks of all users with now < due <= now+24h.
func (s *ReminderService) DueSoon(ctx context.Context) ([]dom.Task, error) {
	now := s.now()
	list, err := s.tasks.DueBetween(ctx, now, now.Add(ReminderLookahead))
	if err != nil {
		return nil, storageErr("due soon", err)
	}
	s.log.Debug("tasks needing reminder", "count", len(list))
	return list, nil
}

// SendReminder resolves the task and delivers its reminder. A task that no
// longer exists is logged and skipped.
func (s *ReminderService) SendReminder(ctx context.Context, taskID, userID int64) error {
	t, err := s.tasks.FindByID(ctx, taskID)
	if errors.Is(err, dom.ErrNotFound) || (err == nil && t.UserID != userID) {
		s.log.Warn("task not found for reminder", "task_id", taskID, "user_id", userID)
		return nil
	}
	if err != nil {
		return storageErr("find task", err)
	}
	s.log.Info("reminder sent", "task_id", t.ID, "user_id", userID, "title", t.Title, "due_date", t.DueDate)
	return nil
}

// ScheduleReminders runs one scan and sends every reminder. Failures are
// logged and never returned; the result is the number of tasks processed.
func (s *ReminderService) ScheduleReminders(ctx context.Context) int {
	list, err := s.DueSoon(ctx)
	if err != nil {
		s.log.Error("reminder scan failed", "err", err)
		return 0
	}
	for _, t := range list {
		if err := s.SendReminder(ctx, t.ID, t.UserID); err != nil {
			s.log.Error("send reminder", "task_id", t.ID, "err", err)
		}
	}
	s.log.Info("reminder scheduling completed", "processed", len(list))
	return len(list)
}

// Run scans every interval until ctx is done.
func (s *ReminderService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScheduleReminders(ctx)
		}
	}
}
