package models

// Priority is one of the three fixed severity labels of a task.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of high, medium or low.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority maps an empty string to PriorityNone and rejects anything
// outside the allowed labels.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if p == PriorityNone || p.Valid() {
		return p, nil
	}
	return PriorityNone, &ValidationError{Field: "priority", Message: msgInvalidPriority}
}
