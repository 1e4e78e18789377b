package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "taskmanager/internal/domain"
)

// MemTaskRepo is an in-process TaskRepo with the same query semantics as the
// Postgres one. Used by tests and local tooling.
type MemTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]dom.Task
	nextID int64
	now    func() time.Time
}

func NewMemTaskRepo(now func() time.Time) *MemTaskRepo {
	if now == nil {
		now = time.Now
	}
	return &MemTaskRepo{tasks: map[int64]dom.Task{}, now: now}
}

// Insert stores t as-is, keeping any timestamps it carries. A zero id is assigned.
func (r *MemTaskRepo) Insert(t dom.Task) dom.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t.Tags = cloneTags(t.Tags)
	r.tasks[t.ID] = t
	return t
}

func (r *MemTaskRepo) FindByID(_ context.Context, id int64) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, dom.ErrNotFound
	}
	return t, nil
}

func (r *MemTaskRepo) FindByOwner(_ context.Context, ownerID int64, f dom.TaskFilter) ([]dom.Task, int, error) {
	list := r.selectTasks(func(t dom.Task) bool { return t.UserID == ownerID && f.Matches(t) })
	dom.SortTasks(list, f)
	total := len(list)

	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return list[start:end], total, nil
}

func (r *MemTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = 0
	t.UpdatedAt = t.CreatedAt
	t.Tags = nonNilTags(t.Tags)
	return r.Insert(t), nil
}

func (r *MemTaskRepo) Save(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.tasks[t.ID]
	if !ok || old.UserID != t.UserID {
		return dom.Task{}, dom.ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.now()
	t.Tags = cloneTags(t.Tags)
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemTaskRepo) Delete(_ context.Context, id, ownerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *MemTaskRepo) BulkUpdate(_ context.Context, ids []int64, ownerID int64, p dom.TaskPatch) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	seen := map[int64]bool{}
	out := []dom.Task{}
	for _, id := range ids {
		t, ok := r.tasks[id]
		if !ok || t.UserID != ownerID || seen[id] {
			continue
		}
		seen[id] = true
		if !p.Empty() {
			t = p.Apply(t, now)
			t.UpdatedAt = now
			r.tasks[id] = t
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemTaskRepo) StatsFor(_ context.Context, ownerID int64, now time.Time) (dom.TaskCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := dom.TaskCounts{Category: map[dom.Category]int{}, Priority: map[dom.Priority]int{}}
	horizon := now.Add(UpcomingWindow)
	for _, t := range r.tasks {
		if t.UserID != ownerID {
			continue
		}
		c.Total++
		if t.Completed {
			c.Completed++
		}
		if t.IsArchived {
			c.Archived++
		}
		if t.IsOverdue(now) {
			c.Overdue++
		}
		if !t.Completed && t.DueDate != nil && !t.DueDate.Before(now) && !t.DueDate.After(horizon) {
			c.Upcoming++
		}
		c.Category[t.Category]++
		c.Priority[t.Priority]++
	}
	return c, nil
}

func (r *MemTaskRepo) OverdueFor(_ context.Context, ownerID int64, now time.Time) ([]dom.Task, error) {
	list := r.selectTasks(func(t dom.Task) bool {
		return t.UserID == ownerID && !t.IsArchived && t.IsOverdue(now)
	})
	dom.SortTasks(list, dom.TaskFilter{SortBy: dom.SortDueDate, SortOrder: dom.SortAsc})
	return list, nil
}

func (r *MemTaskRepo) CompletedInPeriod(_ context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error) {
	list := r.selectTasks(func(t dom.Task) bool {
		return t.UserID == ownerID && t.Completed && t.CompletedAt != nil && within(*t.CompletedAt, start, end)
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CompletedAt.Equal(*list[j].CompletedAt) {
			return list[i].CompletedAt.Before(*list[j].CompletedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *MemTaskRepo) CreatedInPeriod(_ context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error) {
	list := r.selectTasks(func(t dom.Task) bool {
		return t.UserID == ownerID && within(t.CreatedAt, start, end)
	})
	dom.SortTasks(list, dom.TaskFilter{SortBy: dom.SortCreatedAt, SortOrder: dom.SortAsc})
	return list, nil
}

func (r *MemTaskRepo) DueBetween(_ context.Context, from, to time.Time) ([]dom.Task, error) {
	list := r.selectTasks(func(t dom.Task) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.After(from) && !t.DueDate.After(to)
	})
	dom.SortTasks(list, dom.TaskFilter{SortBy: dom.SortDueDate, SortOrder: dom.SortAsc})
	return list, nil
}

func (r *MemTaskRepo) selectTasks(keep func(dom.Task) bool) []dom.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []dom.Task{}
	for _, t := range r.tasks {
		if keep(t) {
			t.Tags = cloneTags(t.Tags)
			list = append(list, t)
		}
	}
	return list
}

func within(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}

func cloneTags(tags []string) []string {
	return append([]string{}, tags...)
}

// MemUserRepo is an in-process UserRepo.
type MemUserRepo struct {
	mu     sync.Mutex
	users  map[int64]dom.User
	nextID int64
	now    func() time.Time
}

func NewMemUserRepo(now func() time.Time) *MemUserRepo {
	if now == nil {
		now = time.Now
	}
	return &MemUserRepo{users: map[int64]dom.User{}, now: now}
}

func (r *MemUserRepo) FindByID(_ context.Context, id int64) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return dom.User{}, dom.ErrUserNotFound
	}
	return u, nil
}

func (r *MemUserRepo) FindByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, dom.ErrUserNotFound
}

func (r *MemUserRepo) Create(_ context.Context, email, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return dom.User{}, dom.ErrEmailTaken
		}
	}
	r.nextID++
	now := r.now()
	u := dom.User{ID: r.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemUserRepo) Save(_ context.Context, u dom.User) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[u.ID]
	if !ok {
		return dom.User{}, dom.ErrUserNotFound
	}
	old.PasswordHash = u.PasswordHash
	old.UpdatedAt = r.now()
	r.users[u.ID] = old
	return old, nil
}
