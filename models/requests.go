package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateTaskRequest is the body of a task creation request.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// Task validates the request and builds the task to persist.
func (r CreateTaskRequest) Task() (Task, error) {
	if r.Description == "" {
		return Task{}, &ValidationError{Field: "description", Message: msgMissingDescription}
	}

	var due *time.Time
	if r.DueDate != "" {
		t, err := ParseDueDate(r.DueDate)
		if err != nil {
			return Task{}, err
		}
		due = &t
	}

	priority, err := ParsePriority(r.Priority)
	if err != nil {
		return Task{}, err
	}

	return Task{
		Description: r.Description,
		Priority:    priority,
		DueDate:     due,
	}, nil
}

// UpdateTaskRequest is the body of a partial update. Completed is kept raw so
// that non-boolean values can be told apart from a decoding failure.
type UpdateTaskRequest struct {
	Description *string         `json:"description"`
	Completed   json.RawMessage `json:"completed"`
	Priority    *string         `json:"priority"`
	DueDate     *string         `json:"due_date"`
}

// TaskPatch holds the fields of a task to change. Nil fields stay untouched.
type TaskPatch struct {
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDate     *time.Time
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Description == nil && p.Completed == nil && p.Priority == nil && p.DueDate == nil
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	return t
}

// Patch validates every supplied field before anything is written. Empty
// strings and nulls count as not supplied.
func (r UpdateTaskRequest) Patch() (TaskPatch, error) {
	var p TaskPatch

	if r.Description != nil && *r.Description != "" {
		d := *r.Description
		p.Description = &d
	}

	if raw := bytes.TrimSpace(r.Completed); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var completed bool
		switch string(raw) {
		case "true":
			completed = true
		case "false":
		default:
			return TaskPatch{}, &ValidationError{Field: "completed", Message: msgInvalidCompleted}
		}
		p.Completed = &completed
	}

	if r.Priority != nil && *r.Priority != "" {
		priority, err := ParsePriority(*r.Priority)
		if err != nil {
			return TaskPatch{}, err
		}
		p.Priority = &priority
	}

	if r.DueDate != nil && *r.DueDate != "" {
		due, err := ParseDueDate(*r.DueDate)
		if err != nil {
			return TaskPatch{}, err
		}
		p.DueDate = &due
	}

	return p, nil
}
