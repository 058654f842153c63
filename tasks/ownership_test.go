package tasks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-task-auth/tasks"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name                           string
		completed, limit, skip, sortBy string
		wantCompleted                  *bool
		wantLimit, wantSkip            int
		wantSort                       string
		wantDesc                       bool
	}{
		{name: "empty"},
		{name: "completed true", completed: "true", wantCompleted: ptr(true)},
		{name: "completed anything else", completed: "yes", wantCompleted: ptr(false)},
		{name: "limit and skip", limit: "10", skip: "20", wantLimit: 10, wantSkip: 20},
		{name: "bad numbers ignored", limit: "ten", skip: "-3"},
		{name: "sort desc", sortBy: "createdAt:desc", wantSort: "created_at", wantDesc: true},
		{name: "sort asc", sortBy: "description:asc", wantSort: "description"},
		{name: "sort without direction", sortBy: "completed", wantSort: "completed"},
		{name: "unknown column ignored", sortBy: "owner_id:desc"},
		{name: "injection ignored", sortBy: "id; DROP TABLE tasks:desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tasks.ParseQuery(tt.completed, tt.limit, tt.skip, tt.sortBy)

			if tt.wantCompleted == nil {
				assert.Nil(t, q.Completed)
			} else {
				require.NotNil(t, q.Completed)
				assert.Equal(t, *tt.wantCompleted, *q.Completed)
			}
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.Equal(t, tt.wantSkip, q.Skip)
			assert.Equal(t, tt.wantSort, q.SortBy)
			assert.Equal(t, tt.wantDesc, q.Desc)
		})
	}
}

func ptr[T any](v T) *T { return &v }
