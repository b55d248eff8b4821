package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"taskapi/internal/model"
)

// TaskPage is one window of a listing plus the unwindowed total.
type TaskPage struct {
	Items []model.Task `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Limit int          `json:"limit"`
}

// NewTaskPage assembles a page for q.
func NewTaskPage(q TaskQuery, items []model.Task, total int64) TaskPage {
	if items == nil {
		items = []model.Task{}
	}
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return TaskPage{Items: items, Total: total, Page: q.Page, Pages: pages, Limit: q.Limit}
}

// StatsQuery computes every TaskStats counter for one owner in a single pass.
func StatsQuery(owner uuid.UUID) sq.SelectBuilder {
	countIf := func(column string, value any, alias string) sq.Sqlizer {
		return sq.Expr("COALESCE(SUM(CASE WHEN "+column+" = ? THEN 1 ELSE 0 END), 0) AS "+alias, value)
	}
	return sq.Select("COUNT(*) AS total").
		Column(countIf("status", string(model.TaskStatusPending), "pending")).
		Column(countIf("status", string(model.TaskStatusInProgress), "in_progress")).
		Column(countIf("status", string(model.TaskStatusCompleted), "completed")).
		Column(countIf("priority", string(model.TaskPriorityHigh), "high_priority")).
		From("tasks").
		Where(sq.Eq{"user_id": owner.String()})
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
