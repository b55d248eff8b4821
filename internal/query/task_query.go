package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"taskapi/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within an int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit

	DefaultSortBy = "createdAt"
	SortAsc       = "asc"
	SortDesc      = "desc"
)

// sortColumns maps the public sortBy names onto task columns.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"dueDate":     "due_date",
	"completedAt": "completed_at",
	"title":       "title",
	"status":      "status",
	"priority":    "priority",
}

// ListParams are the caller-controlled parts of a task listing.
// Zero Status, Priority or Search mean "no constraint".
type ListParams struct {
	Status    model.TaskStatus
	Priority  model.TaskPriority
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ParseListParams reads list parameters permissively: unknown or invalid
// filter and sort values are dropped, page and limit are coerced to positive
// integers with defaults.
func ParseListParams(v url.Values) ListParams {
	p := ListParams{
		SortBy:    DefaultSortBy,
		SortOrder: SortDesc,
		Page:      positiveInt(v.Get("page"), DefaultPage),
		Limit:     positiveInt(v.Get("limit"), DefaultLimit),
		Search:    strings.TrimSpace(v.Get("search")),
	}
	p.Page, p.Limit = clampPage(p.Page, p.Limit)
	if s := model.TaskStatus(v.Get("status")); s.Valid() {
		p.Status = s
	}
	if pr := model.TaskPriority(v.Get("priority")); pr.Valid() {
		p.Priority = pr
	}
	if _, ok := sortColumns[v.Get("sortBy")]; ok {
		p.SortBy = v.Get("sortBy")
	}
	if strings.EqualFold(v.Get("sortOrder"), SortAsc) {
		p.SortOrder = SortAsc
	}
	return p
}

func clampPage(page, limit int) (int, int) {
	if page > MaxPage {
		page = MaxPage
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// TaskQuery is a listing scoped to one owner. The owner constraint cannot be
// removed: every predicate it builds starts with it.
type TaskQuery struct {
	OwnerID uuid.UUID
	ListParams
}

// NewTaskQuery scopes params to owner, filling defaults for zero fields.
func NewTaskQuery(owner uuid.UUID, params ListParams) TaskQuery {
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}
	params.Page, params.Limit = clampPage(params.Page, params.Limit)
	if _, ok := sortColumns[params.SortBy]; !ok {
		params.SortBy = DefaultSortBy
	}
	if params.SortOrder != SortAsc {
		params.SortOrder = SortDesc
	}
	return TaskQuery{OwnerID: owner, ListParams: params}
}

// Predicate is the WHERE clause shared by the page fetch and the total count.
func (q TaskQuery) Predicate() sq.Sqlizer {
	where := sq.And{sq.Eq{"user_id": q.OwnerID.String()}}
	if q.Status.Valid() {
		where = append(where, sq.Eq{"status": string(q.Status)})
	}
	if q.Priority.Valid() {
		where = append(where, sq.Eq{"priority": string(q.Priority)})
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		where = append(where, sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(description)": pattern},
		})
	}
	return where
}

// OrderBy returns ORDER BY terms. id breaks ties so pages never overlap.
func (q TaskQuery) OrderBy() []string {
	dir := "DESC"
	if q.SortOrder == SortAsc {
		dir = "ASC"
	}
	return []string{sortColumns[q.SortBy] + " " + dir, "id " + dir}
}

// Offset is the number of rows skipped before the page.
func (q TaskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Matches evaluates the same conditions as Predicate against a task in
// memory, for stores that do not speak SQL.
func (q TaskQuery) Matches(t *model.Task) bool {
	if t.UserID != q.OwnerID {
		return false
	}
	if q.Status.Valid() && t.Status != q.Status {
		return false
	}
	if q.Priority.Valid() && t.Priority != q.Priority {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// Less orders two tasks the way OrderBy orders rows, for in-memory stores:
// NULLs first ascending, ids as the tie-breaker.
func (q TaskQuery) Less(a, b *model.Task) bool {
	c := compareField(q.SortBy, a, b)
	if c == 0 {
		c = strings.Compare(a.ID.String(), b.ID.String())
	}
	if q.SortOrder == SortAsc {
		return c < 0
	}
	return c > 0
}

func compareField(sortBy string, a, b *model.Task) int {
	switch sortBy {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "dueDate":
		return compareTimePtr(a.DueDate, b.DueDate)
	case "completedAt":
		return compareTimePtr(a.CompletedAt, b.CompletedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "priority":
		return strings.Compare(string(a.Priority), string(b.Priority))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// escapeLike makes %, _ and \ in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
