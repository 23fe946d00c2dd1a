package postgres

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
)

// priorityRankSQL sorts high before medium before low in ascending order.
const priorityRankSQL = `CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

// taskQuery is the WHERE and ORDER BY part of a task listing together
// with its positional arguments.
type taskQuery struct {
	Where   string
	Args    []any
	OrderBy string
}

// argList accumulates positional arguments and hands out their
// placeholders.
type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

func (a *argList) addAll(n int, value func(i int) any) string {
	ph := make([]string, n)
	for i := range n {
		ph[i] = a.add(value(i))
	}
	return strings.Join(ph, ", ")
}

// buildTaskQuery translates a filter into SQL scoped to one owner. Dates
// are whole UTC days; the upper bound is inclusive.
func buildTaskQuery(userID uuid.UUID, f domain.TaskFilter) taskQuery {
	var a argList
	conds := []string{"user_id = " + a.add(userID)}

	if len(f.Statuses) > 0 {
		in := a.addAll(len(f.Statuses), func(i int) any { return string(f.Statuses[i]) })
		conds = append(conds, "status IN ("+in+")")
	}
	if len(f.Priorities) > 0 {
		in := a.addAll(len(f.Priorities), func(i int) any { return string(f.Priorities[i]) })
		conds = append(conds, "priority IN ("+in+")")
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		p := a.add(containsPattern(search))
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if f.DateFrom != nil {
		conds = append(conds, "created_at >= "+a.add(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "created_at < "+a.add(f.DateTo.AddDate(0, 0, 1)))
	}

	return taskQuery{
		Where:   strings.Join(conds, " AND "),
		Args:    a.args,
		OrderBy: taskOrderBy(f.SortBy, f.SortDirection),
	}
}

// taskOrderBy renders a whitelisted ORDER BY. Without a sort field tasks
// come back in display order.
func taskOrderBy(field domain.SortField, dir domain.SortDirection) string {
	direction := "ASC"
	if dir == domain.SortDesc {
		direction = "DESC"
	}

	switch field {
	case domain.SortByPriority:
		return priorityRankSQL + " " + direction + ", id ASC"
	case domain.SortByCreatedAt, domain.SortByUpdatedAt, domain.SortByTitle, domain.SortByStatus:
		return string(field) + " " + direction + ", id ASC"
	case domain.SortByOrder:
		return `"order" ` + direction + ", id ASC"
	default:
		return `"order" ASC, created_at ASC, id ASC`
	}
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
