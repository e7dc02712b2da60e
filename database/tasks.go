package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abefas/todoapp/models"
)

const selectTasks = "SELECT id, description, completed, priority, due_date FROM tasks"

type scannable interface {
	Scan(...any) error
}

// TaskRepo stores tasks in the tasks table.
type TaskRepo struct {
	db  *DB
	log log.FieldLogger
}

// NewTaskRepo returns a repository backed by db.
func NewTaskRepo(db *DB, logger log.FieldLogger) *TaskRepo {
	return &TaskRepo{db: db, log: logger}
}

// Create inserts t and returns the id assigned by the database.
func (r *TaskRepo) Create(ctx context.Context, t models.Task) (int, error) {
	query := r.db.rebind("INSERT INTO tasks (description, completed, priority, due_date) VALUES ($1, $2, $3, $4) RETURNING id")
	r.log.WithField("query", query).Debug("creating task")

	var id int
	err := r.db.QueryRowContext(ctx, query, t.Description, t.Completed, nullPriority(t.Priority), nullTime(t.DueDate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// GetByID returns the task with the given id or models.ErrNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, id int) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(selectTasks+" WHERE id = $1"), id)
	t, err := extractTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
		}
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// List returns every task ordered by ascending id.
func (r *TaskRepo) List(ctx context.Context) ([]models.Task, error) {
	return r.query(ctx, selectTasks+" ORDER BY id ASC")
}

// ListByCompleted returns the tasks whose completed flag matches, ordered by
// ascending id.
func (r *TaskRepo) ListByCompleted(ctx context.Context, completed bool) ([]models.Task, error) {
	return r.query(ctx, selectTasks+" WHERE completed = $1 ORDER BY id ASC", completed)
}

// Update writes the non-nil fields of p to the task with the given id.
func (r *TaskRepo) Update(ctx context.Context, id int, p models.TaskPatch) error {
	if p.Empty() {
		_, err := r.GetByID(ctx, id)
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Completed != nil {
		set("completed", *p.Completed)
	}
	if p.Priority != nil {
		set("priority", nullPriority(*p.Priority))
	}
	if p.DueDate != nil {
		set("due_date", nullTime(p.DueDate))
	}
	args = append(args, id)

	query := r.db.rebind(fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)))
	r.log.WithFields(log.Fields{"query": query, "id": id}).Debug("updating task")

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return expectRow(res, id)
}

// Delete removes the task with the given id.
func (r *TaskRepo) Delete(ctx context.Context, id int) error {
	r.log.WithField("id", id).Debug("deleting task")
	res, err := r.db.ExecContext(ctx, r.db.rebind("DELETE FROM tasks WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectRow(res, id)
}

func (r *TaskRepo) query(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := extractTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return tasks, nil
}

func expectRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func extractTask(s scannable) (models.Task, error) {
	var (
		t        models.Task
		priority sql.NullString
		due      nullTimestamp
	)
	if err := s.Scan(&t.ID, &t.Description, &t.Completed, &priority, &due); err != nil {
		return models.Task{}, err
	}
	if priority.Valid {
		t.Priority = models.Priority(priority.String)
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func nullPriority(p models.Priority) sql.NullString {
	return sql.NullString{String: string(p), Valid: p != models.PriorityNone}
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// timestampLayouts covers what the drivers hand back for a TIMESTAMP column
// when it arrives as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// nullTimestamp scans a nullable timestamp returned either as time.Time or as
// text. The wall clock is kept and the location dropped.
type nullTimestamp struct {
	Time  time.Time
	Valid bool
}

func (n *nullTimestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = wallClock(v), true
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = wallClock(t), true
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
