package tasks

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	auth "github.com/goliatone/go-task-auth"
)

// AllowedUpdates lists the task fields a PATCH may change
var AllowedUpdates = []string{"description", "completed"}

func prepareTaskForWrite(task *Task) error {
	if task == nil {
		return auth.ErrUnableToParseData
	}
	task.Description = strings.TrimSpace(task.Description)

	return validation.Errors{
		"description": validation.Validate(task.Description, validation.Required),
	}.Filter()
}

// ApplyUpdates copies updates onto task. Keys outside AllowedUpdates fail
// the whole update with auth.ErrInvalidUpdates.
func ApplyUpdates(task *Task, updates map[string]any) error {
	for key := range updates {
		if !isAllowed(key) {
			return auth.ErrInvalidUpdates
		}
	}

	for key, value := range updates {
		switch key {
		case "description":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: description must be a string", auth.ErrInvalidUpdates)
			}
			task.Description = s
		case "completed":
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: completed must be a boolean", auth.ErrInvalidUpdates)
			}
			task.Completed = b
		}
	}
	return nil
}

func isAllowed(key string) bool {
	for _, k := range AllowedUpdates {
		if k == key {
			return true
		}
	}
	return false
}

// IsInvalidUpdate reports a rejected update payload
func IsInvalidUpdate(err error) bool {
	return errors.Is(err, auth.ErrInvalidUpdates)
}
