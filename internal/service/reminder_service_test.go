package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/logging"
	"taskmanager/internal/repo"
)

func newReminders(tasks repo.TaskRepo) *ReminderService {
	svc := NewReminderService(tasks, logging.Discard())
	svc.now = clock
	return svc
}

func TestReminders_DueSoonWindow(t *testing.T) {
	tasks := repo.NewMemTaskRepo(clock)
	at := func(d time.Duration) *time.Time { ts := fixedNow.Add(d); return &ts }
	soon := tasks.Insert(dom.Task{UserID: 1, Title: "soon", DueDate: at(23 * time.Hour)})
	tasks.Insert(dom.Task{UserID: 1, Title: "later", DueDate: at(25 * time.Hour)})
	tasks.Insert(dom.Task{UserID: 1, Title: "overdue", DueDate: at(-time.Hour)})
	tasks.Insert(dom.Task{UserID: 2, Title: "done", DueDate: at(time.Hour), Completed: true})
	other := tasks.Insert(dom.Task{UserID: 2, Title: "other user", DueDate: at(2 * time.Hour)})

	list, err := newReminders(tasks).DueSoon(context.Background())
	if err != nil {
		t.Fatalf("DueSoon: %v", err)
	}
	got := make([]int64, len(list))
	for i, task := range list {
		got[i] = task.ID
	}
	if !reflect.DeepEqual(got, []int64{other.ID, soon.ID}) {
		t.Fatalf("due soon: got %v", got)
	}
}

func TestReminders_SendMissingTaskIsSilent(t *testing.T) {
	tasks := repo.NewMemTaskRepo(clock)
	svc := newReminders(tasks)
	if err := svc.SendReminder(context.Background(), 404, 1); err != nil {
		t.Fatalf("missing task: %v", err)
	}
	task := tasks.Insert(dom.Task{UserID: 1, Title: "x"})
	if err := svc.SendReminder(context.Background(), task.ID, 1); err != nil {
		t.Fatalf("SendReminder: %v", err)
	}
}

func TestReminders_ScheduleCountsProcessed(t *testing.T) {
	tasks := repo.NewMemTaskRepo(clock)
	due := fixedNow.Add(time.Hour)
	tasks.Insert(dom.Task{UserID: 1, Title: "a", DueDate: &due})
	tasks.Insert(dom.Task{UserID: 2, Title: "b", DueDate: &due})

	if n := newReminders(tasks).ScheduleReminders(context.Background()); n != 2 {
		t.Fatalf("processed: got %d", n)
	}
}

type failingTasks struct {
	repo.TaskRepo
}

func (failingTasks) DueBetween(context.Context, time.Time, time.Time) ([]dom.Task, error) {
	return nil, errors.New("connection refused")
}

func TestReminders_ScanFailureIsSwallowed(t *testing.T) {
	svc := newReminders(failingTasks{})
	if _, err := svc.DueSoon(context.Background()); dom.KindOf(err) != dom.KindInternal {
		t.Fatalf("DueSoon: got %v", err)
	}
	if n := svc.ScheduleReminders(context.Background()); n != 0 {
		t.Fatalf("processed: got %d", n)
	}
}

func TestReminders_RunStopsOnCancel(t *testing.T) {
	svc := newReminders(repo.NewMemTaskRepo(clock))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
