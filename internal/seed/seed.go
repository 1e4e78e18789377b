// Package seed fills a fresh database with demo users and tasks.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"
	"taskmanager/internal/service"
)

type Credentials struct {
	Email    string
	Password string
}

var DemoUsers = []Credentials{
	{Email: "john.doe@example.com", Password: "password123"},
	{Email: "jane.smith@example.com", Password: "password123"},
	{Email: "demo@example.com", Password: "demo123"},
}

type sample struct {
	title, description string
	category           dom.Category
	priority           dom.Priority
	tags               []string
	dueIn              time.Duration
}

const day = 24 * time.Hour

var samples = []sample{
	{"Complete project proposal", "Write and submit the Q2 project proposal to management",
		dom.CategoryWork, dom.PriorityHigh, []string{"urgent", "management", "proposal"}, 2 * day},
	{"Buy groceries", "Milk, bread, eggs, and fruits for the week",
		dom.CategoryShopping, dom.PriorityMedium, []string{"shopping", "weekly"}, day},
	{"Book doctor appointment", "Annual health checkup",
		dom.CategoryHealth, dom.PriorityMedium, []string{"health", "checkup"}, 7 * day},
	{"Learn Go generics", "Finish the course chapter on type parameters",
		dom.CategoryEducation, dom.PriorityLow, []string{"learning", "programming"}, 14 * day},
	{"Plan weekend trip", "Research and book accommodation for a hiking trip",
		dom.CategoryPersonal, dom.PriorityLow, []string{"vacation", "hiking", "planning"}, 5 * day},
	{"Fix kitchen faucet", "Replace the dripping kitchen faucet",
		dom.CategoryOther, dom.PriorityMedium, []string{"home", "repair"}, 3 * day},
}

// historicalPerUser is the number of backdated completed tasks per user.
const historicalPerUser = 5

// Seeder creates demo data through the services, plus backdated completed
// tasks written straight to the repository so analytics have history.
type Seeder struct {
	auth  *service.AuthService
	tasks *service.TaskService
	store repo.TaskRepo
	rnd   *rand.Rand
	now   func() time.Time
	log   *slog.Logger
}

func New(auth *service.AuthService, tasks *service.TaskService, store repo.TaskRepo, seed int64, log *slog.Logger) *Seeder {
	return &Seeder{
		auth:  auth,
		tasks: tasks,
		store: store,
		rnd:   rand.New(rand.NewSource(seed)),
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

// Result counts what Run created.
type Result struct {
	Users int
	Tasks int
}

// Run seeds every demo user. Users that already exist are skipped.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	for _, cred := range DemoUsers {
		u, err := s.auth.Register(ctx, cred.Email, cred.Password)
		if errors.Is(err, dom.ErrEmailTaken) {
			s.log.Info("user exists, skipping", "email", cred.Email)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register %s: %w", cred.Email, err)
		}
		res.Users++

		n, err := s.seedUser(ctx, u.ID)
		res.Tasks += n
		if err != nil {
			return res, fmt.Errorf("tasks for %s: %w", cred.Email, err)
		}
	}
	s.log.Info("seeding completed", "users", res.Users, "tasks", res.Tasks)
	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, userID int64) (int, error) {
	now := s.now()
	created := 0
	for _, smp := range samples {
		due := now.Add(smp.dueIn)
		t, err := s.tasks.Create(ctx, userID, dom.Task{
			Title:       smp.title,
			Description: smp.description,
			Category:    smp.category,
			Priority:    smp.priority,
			Tags:        smp.tags,
			DueDate:     &due,
		})
		if err != nil {
			return created, err
		}
		created++

		var p dom.TaskPatch
		if s.rnd.Float64() > 0.7 {
			done := true
			p.Completed = &done
		}
		if s.rnd.Float64() > 0.9 {
			archived := true
			p.IsArchived = &archived
		}
		if !p.Empty() {
			if _, err := s.tasks.Update(ctx, userID, t.ID, p); err != nil {
				return created, err
			}
		}
	}

	for i := 0; i < historicalPerUser; i++ {
		completedAt := now.AddDate(0, 0, -s.rnd.Intn(30)).Add(-time.Duration(s.rnd.Intn(12)) * time.Hour)
		_, err := s.store.Create(ctx, dom.Task{
			UserID:      userID,
			Title:       fmt.Sprintf("Historical task %d", i+1),
			Description: "Completed task kept for analytics",
			Category:    []dom.Category{dom.CategoryWork, dom.CategoryPersonal, dom.CategoryHealth}[s.rnd.Intn(3)],
			Priority:    dom.Priorities[s.rnd.Intn(len(dom.Priorities))],
			Tags:        []string{"historical"},
			Completed:   true,
			CompletedAt: &completedAt,
			CreatedAt:   completedAt.Add(-time.Duration(1+s.rnd.Intn(72)) * time.Hour),
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
