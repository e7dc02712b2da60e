package models

import (
	"time"

	"github.com/bytedance/sonic"
)

// DueDateLayout is the wire format of a task's due date (DD-MM-YYYY HH:MM:SS).
const DueDateLayout = "02-01-2006 15:04:05"

// dueDateParseLayout accepts single-digit day, month, hour, minute and
// second on input.
const dueDateParseLayout = "2-1-2006 15:4:5"

// Task represents a task in the to-do list, mapping to the tasks table.
type Task struct {
	ID          int
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
}

type taskJSON struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// MarshalJSON renders absent priority and due date as null.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
	}
	if t.Priority != PriorityNone {
		p := string(t.Priority)
		out.Priority = &p
	}
	if t.DueDate != nil {
		d := FormatDueDate(*t.DueDate)
		out.DueDate = &d
	}
	return sonic.ConfigStd.Marshal(out)
}

// ParseDueDate parses a due date in DueDateLayout. The result is in UTC.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(dueDateParseLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "due_date", Message: msgInvalidDueDate}
	}
	return t, nil
}

// FormatDueDate formats the wall clock of t in DueDateLayout.
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}
