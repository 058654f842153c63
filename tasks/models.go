// Package tasks stores per user tasks. Every read and write is scoped to the
// owner: a task that belongs to someone else behaves exactly like a task
// that does not exist.
package tasks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Task is the task model
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`
	ID            uuid.UUID `bun:"id,pk" json:"id"`
	Description   string    `bun:"description,notnull" json:"description"`
	Completed     bool      `bun:"completed,notnull" json:"completed"`
	OwnerID       uuid.UUID `bun:"owner_id,notnull" json:"owner"`
	PictureKey    string    `bun:"picture_key" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// HasPicture reports whether a picture is attached
func (t *Task) HasPicture() bool {
	return t != nil && t.PictureKey != ""
}

// View is the serialized task
type View struct {
	*Task
	HasPicture bool `json:"has_picture"`
}

// NewView wraps t for serialization
func NewView(t *Task) View {
	return View{Task: t, HasPicture: t.HasPicture()}
}
