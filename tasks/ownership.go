package tasks

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SortableColumns are the columns a list may be ordered by
var SortableColumns = map[string]string{
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"updatedAt":   "updated_at",
	"updated_at":  "updated_at",
	"description": "description",
	"completed":   "completed",
}

// Query narrows a task listing
type Query struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string
	Desc      bool
}

// ParseQuery reads the list parameters. completed filters on
// (value == "true"); limit and skip must be non negative integers and are
// otherwise ignored; sortBy is "field:direction" where only "desc" sorts
// descending. Unknown sort fields are ignored.
func ParseQuery(completed, limit, skip, sortBy string) Query {
	var q Query

	if completed != "" {
		v := completed == "true"
		q.Completed = &v
	}

	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		q.Limit = n
	}
	if n, err := strconv.Atoi(skip); err == nil && n > 0 {
		q.Skip = n
	}

	if sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, ":")
		if col, ok := SortableColumns[strings.TrimSpace(field)]; ok {
			q.SortBy = col
			q.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
		}
	}

	return q
}

// OwnedBy restricts a select to rows owned by ownerID
func OwnedBy(ownerID uuid.UUID) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.owner_id = ?", ownerID)
	}
}

// Apply adds the filter, ordering and paging to q
func (qq Query) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	if qq.Completed != nil {
		q = q.Where("?TableAlias.completed = ?", *qq.Completed)
	}

	if qq.SortBy != "" {
		dir := "ASC"
		if qq.Desc {
			dir = "DESC"
		}
		q = q.OrderExpr("?TableAlias.? "+dir, bun.Ident(qq.SortBy))
	} else {
		q = q.OrderExpr("?TableAlias.created_at ASC")
	}

	switch {
	case qq.Limit > 0:
		q = q.Limit(qq.Limit)
	case qq.Skip > 0:
		// sqlite only accepts OFFSET after a LIMIT
		q = q.Limit(math.MaxInt32)
	}
	if qq.Skip > 0 {
		q = q.Offset(qq.Skip)
	}
	return q
}
