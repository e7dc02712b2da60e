package models

import "errors"

// ErrNotFound is returned by the repository when no row has the given id.
var ErrNotFound = errors.New("task not found")

const (
	msgMissingDescription = "Missing description"
	msgInvalidDueDate     = "Invalid due date format. Use DD-MM-YYYY HH:MM:SS instead"
	msgInvalidPriority    = "Invalid priority entry. Valid options are high, medium, low"
	msgInvalidCompleted   = "Invalid entry. Completed status must be either booleans: true or false"
)

// ValidationError describes a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
