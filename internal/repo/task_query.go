package repo

import (
	"fmt"
	"strings"

	dom "taskmanager/internal/domain"
)

const taskColumns = `id, user_id, title, description, completed, priority, category,
		tags, due_date, is_archived, completed_at, created_at, updated_at`

// sqlBuilder collects clauses written with "?" placeholders and numbers them
// as $1, $2, ... in the order they were added.
type sqlBuilder struct {
	conds []string
	args  []any
}

func (b *sqlBuilder) bind(clause string, args ...any) string {
	var sb strings.Builder
	i := 0
	for _, r := range clause {
		if r == '?' && i < len(args) {
			b.args = append(b.args, args[i])
			fmt.Fprintf(&sb, "$%d", len(b.args))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *sqlBuilder) where(clause string, args ...any) {
	b.conds = append(b.conds, b.bind(clause, args...))
}

func (b *sqlBuilder) whereSQL() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// taskFilterSQL builds the owner-scoped WHERE clause for a filter. The owner
// clause always comes first.
func taskFilterSQL(ownerID int64, f dom.TaskFilter) *sqlBuilder {
	b := &sqlBuilder{}
	b.where("user_id = ?", ownerID)

	switch f.Status {
	case dom.StatusCompleted:
		b.where("completed = ?", true)
	case dom.StatusPending:
		b.where("completed = ?", false)
	}
	if f.Category != nil {
		b.where("category = ?", string(*f.Category))
	}
	if f.Priority != nil {
		b.where("priority = ?", string(*f.Priority))
	}
	if len(f.Tags) > 0 {
		b.where("tags @> ?::text[]", f.Tags)
	}
	if f.IsArchived != nil {
		b.where("is_archived = ?", *f.IsArchived)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		b.where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	return b
}

// taskOrderSQL renders the ORDER BY clause. Priority sorts by severity rank;
// NULL due dates sort last; id breaks ties in the same direction.
func taskOrderSQL(f dom.TaskFilter) string {
	key, order := f.Sort()
	dir := "DESC"
	if order == dom.SortAsc {
		dir = "ASC"
	}
	var expr string
	switch key {
	case dom.SortTitle:
		expr = "title"
	case dom.SortUpdatedAt:
		expr = "updated_at"
	case dom.SortDueDate:
		expr = "due_date"
	case dom.SortPriority:
		expr = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"
	default:
		expr = "created_at"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id %s", expr, dir, dir)
}

// pageSQL appends LIMIT/OFFSET only when requested.
func pageSQL(b *sqlBuilder, f dom.TaskFilter) string {
	var s string
	if f.Limit > 0 {
		s += " " + b.bind("LIMIT ?", f.Limit)
	}
	if f.Offset > 0 {
		s += " " + b.bind("OFFSET ?", f.Offset)
	}
	return s
}

// patchSetSQL renders the SET list of a partial update.
func patchSetSQL(b *sqlBuilder, p dom.TaskPatch) string {
	sets := []string{"updated_at = NOW()"}
	if p.Title != nil {
		sets = append(sets, b.bind("title = ?", strings.TrimSpace(*p.Title)))
	}
	if p.Description != nil {
		sets = append(sets, b.bind("description = ?", strings.TrimSpace(*p.Description)))
	}
	if p.Completed != nil {
		sets = append(sets,
			b.bind("completed = ?", *p.Completed),
			b.bind("completed_at = CASE WHEN ?::boolean THEN COALESCE(completed_at, NOW()) ELSE NULL END", *p.Completed),
		)
	}
	if p.Priority != nil {
		sets = append(sets, b.bind("priority = ?", string(*p.Priority)))
	}
	if p.Category != nil {
		sets = append(sets, b.bind("category = ?", string(*p.Category)))
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		sets = append(sets, b.bind("tags = ?::text[]", tags))
	}
	if p.IsArchived != nil {
		sets = append(sets, b.bind("is_archived = ?", *p.IsArchived))
	}
	if p.DueDate != nil {
		sets = append(sets, b.bind("due_date = ?", *p.DueDate))
	}
	return strings.Join(sets, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
