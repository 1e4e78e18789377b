package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo is the persistence contract for tasks. Every owner-scoped method
// treats rows of other owners as absent.
type TaskRepo interface {
	FindByID(ctx context.Context, id int64) (dom.Task, error)
	// FindByOwner returns one page and the pre-pagination total.
	FindByOwner(ctx context.Context, ownerID int64, f dom.TaskFilter) ([]dom.Task, int, error)
	// Create inserts t. A zero CreatedAt is set by storage.
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	Save(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	// BulkUpdate applies p to the listed tasks owned by ownerID and returns
	// the tasks it touched, ordered by id.
	BulkUpdate(ctx context.Context, ids []int64, ownerID int64, p dom.TaskPatch) ([]dom.Task, error)
	StatsFor(ctx context.Context, ownerID int64, now time.Time) (dom.TaskCounts, error)
	OverdueFor(ctx context.Context, ownerID int64, now time.Time) ([]dom.Task, error)
	CompletedInPeriod(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error)
	CreatedInPeriod(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error)
	// DueBetween returns open tasks of all owners with from < due_date <= to.
	DueBetween(ctx context.Context, from, to time.Time) ([]dom.Task, error)
}

// UpcomingWindow is how far ahead a due date counts as upcoming in stats.
const UpcomingWindow = 7 * 24 * time.Hour

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) FindByID(ctx context.Context, id int64) (dom.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, dom.ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) FindByOwner(ctx context.Context, ownerID int64, f dom.TaskFilter) ([]dom.Task, int, error) {
	b := taskFilterSQL(ownerID, f)
	where := b.whereSQL()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + taskOrderSQL(f) + pageSQL(b, f)
	list, err := r.queryTasks(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return list, total, nil
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	var createdAt *time.Time
	if !t.CreatedAt.IsZero() {
		createdAt = &t.CreatedAt
	}
	query := `
		INSERT INTO tasks (user_id, title, description, completed, priority, category, tags, due_date, is_archived, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), COALESCE($11, NOW()))
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), string(t.Category),
		nonNilTags(t.Tags), t.DueDate, t.IsArchived, t.CompletedAt, createdAt,
	))
	switch utils.PGErrorCode(err) {
	case utils.PGForeignKeyViolation:
		return dom.Task{}, dom.ErrUserNotFound
	case utils.PGCheckViolation:
		return dom.Task{}, dom.Validation("task violates a storage constraint")
	}
	return out, err
}

func (r *PGTaskRepo) Save(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET title = $3, description = $4, completed = $5, priority = $6, category = $7,
			tags = $8, due_date = $9, is_archived = $10, completed_at = $11, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), string(t.Category),
		nonNilTags(t.Tags), t.DueDate, t.IsArchived, t.CompletedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, dom.ErrNotFound
	}
	return out, err
}

func (r *PGTaskRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGTaskRepo) BulkUpdate(ctx context.Context, ids []int64, ownerID int64, p dom.TaskPatch) ([]dom.Task, error) {
	if len(ids) == 0 {
		return []dom.Task{}, nil
	}
	b := &sqlBuilder{}
	var query string
	if p.Empty() {
		b.where("id = ANY(?)", ids)
		b.where("user_id = ?", ownerID)
		query = `SELECT ` + taskColumns + ` FROM tasks` + b.whereSQL()
	} else {
		set := patchSetSQL(b, p)
		b.where("id = ANY(?)", ids)
		b.where("user_id = ?", ownerID)
		query = `UPDATE tasks SET ` + set + b.whereSQL() + ` RETURNING ` + taskColumns
	}
	list, err := r.queryTasks(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("bulk update: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *PGTaskRepo) StatsFor(ctx context.Context, ownerID int64, now time.Time) (dom.TaskCounts, error) {
	c := dom.TaskCounts{
		Category: map[dom.Category]int{},
		Priority: map[dom.Priority]int{},
	}
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed),
			COUNT(*) FILTER (WHERE is_archived),
			COUNT(*) FILTER (WHERE NOT completed AND due_date < $2),
			COUNT(*) FILTER (WHERE NOT completed AND due_date >= $2 AND due_date <= $3)
		FROM tasks WHERE user_id = $1`,
		ownerID, now, now.Add(UpcomingWindow),
	).Scan(&c.Total, &c.Completed, &c.Archived, &c.Overdue, &c.Upcoming)
	if err != nil {
		return dom.TaskCounts{}, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT 'c', category, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY category
		UNION ALL
		SELECT 'p', priority, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY priority`, ownerID)
	if err != nil {
		return dom.TaskCounts{}, fmt.Errorf("stats breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, key string
		var n int
		if err := rows.Scan(&kind, &key, &n); err != nil {
			return dom.TaskCounts{}, err
		}
		if kind == "c" {
			c.Category[dom.Category(key)] = n
		} else {
			c.Priority[dom.Priority(key)] = n
		}
	}
	return c, rows.Err()
}

func (r *PGTaskRepo) OverdueFor(ctx context.Context, ownerID int64, now time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND completed = FALSE AND is_archived = FALSE
			AND due_date IS NOT NULL AND due_date < $2
		ORDER BY due_date ASC, id ASC`
	return r.queryTasks(ctx, query, ownerID, now)
}

func (r *PGTaskRepo) CompletedInPeriod(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND completed = TRUE AND completed_at BETWEEN $2 AND $3
		ORDER BY completed_at ASC, id ASC`
	return r.queryTasks(ctx, query, ownerID, start, end)
}

func (r *PGTaskRepo) CreatedInPeriod(ctx context.Context, ownerID int64, start, end time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at ASC, id ASC`
	return r.queryTasks(ctx, query, ownerID, start, end)
}

func (r *PGTaskRepo) DueBetween(ctx context.Context, from, to time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = FALSE AND due_date > $1 AND due_date <= $2
		ORDER BY due_date ASC, id ASC`
	return r.queryTasks(ctx, query, from, to)
}

func (r *PGTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	var priority, category string
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &priority, &category,
		&t.Tags, &t.DueDate, &t.IsArchived, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return dom.Task{}, err
	}
	t.Priority = dom.Priority(priority)
	t.Category = dom.Category(category)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
