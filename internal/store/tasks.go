package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/models"
)

// timeLayout is fixed-width so that text order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Field names a column that can be replaced in place.
type Field string

const (
	FieldCompletedAt  Field = "completed_at"
	FieldWorkNotePath Field = "work_note_path"
)

// Patch carries the fields written by Merge. Nil fields are left untouched.
type Patch struct {
	Name        *string
	Priority    *models.Priority
	Description *string
}

// Empty reports whether the patch writes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Priority == nil && p.Description == nil
}

// Counts is the result of AggregateCounts.
type Counts struct {
	Total     int64 `db:"total"`
	Completed int64 `db:"completed"`
}

// InProgress is derived from the other two counts.
func (c Counts) InProgress() int64 {
	return c.Total - c.Completed
}

type taskRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Priority     string         `db:"priority"`
	Description  sql.NullString `db:"description"`
	WorkNotePath sql.NullString `db:"work_note_path"`
	CreatedAt    string         `db:"created_at"`
	CompletedAt  sql.NullString `db:"completed_at"`
}

// Insert assigns an id when the task has none, persists it and returns the
// stored record.
func (db *DB) Insert(ctx context.Context, t models.Task) (models.Task, error) {
	id := t.ID
	if id == "" {
		id = newID()
	}
	var completed any
	if t.CompletedAt != nil {
		completed = formatTime(*t.CompletedAt)
	}
	var row taskRow
	err := db.conn.GetContext(ctx, &row, `
		INSERT INTO tasks (id, name, priority, description, work_note_path, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING *
	`, models.CanonicalID(id), t.Name, string(t.Priority), nullable(t.Description), nullable(t.WorkNotePath),
		formatTime(t.CreatedAt), completed)
	if err != nil {
		return models.Task{}, oneRowErr(err, "insert task")
	}
	return row.toTask()
}

// All returns every task ordered by creation time.
func (db *DB) All(ctx context.Context) ([]models.Task, error) {
	return db.selectTasks(ctx, `SELECT * FROM tasks ORDER BY created_at, id`)
}

// InProgress returns tasks without a completion time.
func (db *DB) InProgress(ctx context.Context) ([]models.Task, error) {
	return db.selectTasks(ctx, `SELECT * FROM tasks WHERE completed_at IS NULL ORDER BY created_at, id`)
}

// SelectByPartialID resolves p against id suffixes. Exactly one task must
// have a canonical id starting with "task:<p>".
func (db *DB) SelectByPartialID(ctx context.Context, p string) (models.Task, error) {
	prefix := models.IDPrefix + p
	tasks, err := db.selectTasks(ctx,
		`SELECT * FROM tasks WHERE substr(id, 1, length(?)) = ? ORDER BY id LIMIT 2`, prefix, prefix)
	if err != nil {
		return models.Task{}, err
	}
	db.logger.Debug("store: resolve partial id", slog.String("prefix", p), slog.Int("matches", len(tasks)))
	switch len(tasks) {
	case 0:
		return models.Task{}, apperr.Newf(layer, KindNoTasksFound, "Task starting with id '%s' was not found", p)
	case 1:
		return tasks[0], nil
	default:
		return models.Task{}, apperr.New(layer, KindMultipleTasksFound, "Multiple tasks found, provide more characters of the id")
	}
}

// ReplaceField overwrites a single column. value may be a time.Time, a
// string, or nil to clear the column.
func (db *DB) ReplaceField(ctx context.Context, id string, field Field, value any) (models.Task, error) {
	switch field {
	case FieldCompletedAt, FieldWorkNotePath:
	default:
		return models.Task{}, apperr.Newf(layer, KindDatabase, "field %q cannot be replaced", field)
	}
	switch v := value.(type) {
	case time.Time:
		value = formatTime(v)
	case *time.Time:
		if v == nil {
			value = nil
		} else {
			value = formatTime(*v)
		}
	case *string:
		value = nullable(v)
	}
	var row taskRow
	err := db.conn.GetContext(ctx, &row,
		fmt.Sprintf(`UPDATE tasks SET %s = ? WHERE id = ? RETURNING *`, field), value, id)
	if err != nil {
		return models.Task{}, oneRowErr(err, "replace %s of %s", field, id)
	}
	return row.toTask()
}

// Merge writes only the fields set in p.
func (db *DB) Merge(ctx context.Context, id string, p Patch) (models.Task, error) {
	var (
		sets []string
		args []any
	)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*p.Priority))
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if len(sets) == 0 {
		return models.Task{}, apperr.New(layer, KindDatabase, "merge without fields")
	}
	args = append(args, id)

	var row taskRow
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING *`
	if err := db.conn.GetContext(ctx, &row, query, args...); err != nil {
		return models.Task{}, oneRowErr(err, "merge %s", id)
	}
	return row.toTask()
}

// Delete removes one record. A missing record is not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrapf(layer, KindDatabase, err, "delete %s", id)
	}
	n, _ := res.RowsAffected()
	db.logger.Debug("store: delete", slog.String("id", id), slog.Int64("rows", n))
	return nil
}

// AggregateCounts returns the total and completed task counts.
func (db *DB) AggregateCounts(ctx context.Context) (Counts, error) {
	var c Counts
	err := db.conn.GetContext(ctx, &c, `SELECT count(*) AS total, count(completed_at) AS completed FROM tasks`)
	if err != nil {
		if isScanErr(err) {
			return Counts{}, apperr.Wrapf(layer, KindSerialization, err, "read counts")
		}
		return Counts{}, apperr.Wrapf(layer, KindDatabase, err, "count tasks")
	}
	return c, nil
}

// RewritePriority replaces every stored priority equal to from with to and
// returns the number of rewritten records.
func (db *DB) RewritePriority(ctx context.Context, from, to models.Priority) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `UPDATE tasks SET priority = ? WHERE priority = ?`, string(to), string(from))
	if err != nil {
		return 0, apperr.Wrapf(layer, KindDatabase, err, "rewrite priority %q to %q", from, to)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrapf(layer, KindDatabase, err, "rewrite priority %q to %q", from, to)
	}
	return n, nil
}

func (db *DB) selectTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	var rows []taskRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		if isScanErr(err) {
			return nil, apperr.Wrapf(layer, KindSerialization, err, "read tasks")
		}
		return nil, apperr.Wrapf(layer, KindDatabase, err, "query tasks")
	}
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r taskRow) toTask() (models.Task, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Task{}, apperr.Wrapf(layer, KindSerialization, err, "created_at of %s", r.ID)
	}
	t := models.Task{
		ID:        r.ID,
		Name:      r.Name,
		Priority:  models.Priority(r.Priority),
		CreatedAt: created,
	}
	if r.Description.Valid {
		v := r.Description.String
		t.Description = &v
	}
	if r.WorkNotePath.Valid {
		v := r.WorkNotePath.String
		t.WorkNotePath = &v
	}
	if r.CompletedAt.Valid {
		at, err := parseTime(r.CompletedAt.String)
		if err != nil {
			return models.Task{}, apperr.Wrapf(layer, KindSerialization, err, "completed_at of %s", r.ID)
		}
		t.CompletedAt = &at
	}
	return t, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// oneRowErr classifies failures of statements expected to return one row.
func oneRowErr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Newf(layer, KindExpectedOneTask, format+": no record returned", args...)
	}
	if isScanErr(err) {
		return apperr.Wrapf(layer, KindSerialization, err, format, args...)
	}
	return apperr.Wrapf(layer, KindDatabase, err, format, args...)
}

// isScanErr matches errors for rows whose columns do not fit the destination
// struct. Neither sqlx v1.4.0 ("missing destination name %s in %T") nor
// database/sql ("sql: Scan error on column index ...") export a type for
// these, so the text is matched.
func isScanErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "missing destination name") || strings.HasPrefix(msg, "sql: Scan error")
}
