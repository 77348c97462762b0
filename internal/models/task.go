// Package models defines the domain types for tmgr.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/tmgr/internal/apperr"
)

// IDPrefix is the table prefix carried by every stored task id.
const IDPrefix = "task:"

// Display strings for absent values.
const (
	NoneDisplay       = "None"
	InProgressDisplay = "In Progress"
)

// Error kinds reported by the task layer.
const (
	KindNoID      apperr.Kind = "No id"
	KindBadPrefix apperr.Kind = "Bad prefix"
)

const layer = "task"

// Task is the single persisted record.
type Task struct {
	// ID is the canonical "task:<suffix>" form; empty until inserted.
	ID           string
	Name         string
	Priority     Priority
	Description  *string
	WorkNotePath *string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// TaskOption sets one field while building a Task.
type TaskOption func(*Task)

// NewTask builds a task from opts. Unset fields default to priority Low,
// created_at now (UTC) and everything else absent.
func NewTask(opts ...TaskOption) Task {
	t := Task{
		Priority:  PriorityLow,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// WithID sets the canonical id. A bare suffix is prefixed.
func WithID(id string) TaskOption {
	return func(t *Task) {
		t.ID = CanonicalID(id)
	}
}

// WithName sets the short name.
func WithName(name string) TaskOption {
	return func(t *Task) {
		t.Name = name
	}
}

// WithPriority sets the priority.
func WithPriority(p Priority) TaskOption {
	return func(t *Task) {
		t.Priority = p
	}
}

// WithDescription sets the long description.
func WithDescription(d string) TaskOption {
	return func(t *Task) {
		t.Description = &d
	}
}

// WithWorkNotePath sets the note file path.
func WithWorkNotePath(p string) TaskOption {
	return func(t *Task) {
		t.WorkNotePath = &p
	}
}

// WithCreatedAt overrides the creation time.
func WithCreatedAt(at time.Time) TaskOption {
	return func(t *Task) {
		t.CreatedAt = at.UTC()
	}
}

// WithCompletedAt marks the task completed at the given time.
func WithCompletedAt(at time.Time) TaskOption {
	return func(t *Task) {
		u := at.UTC()
		t.CompletedAt = &u
	}
}

// CanonicalID returns id with the table prefix, adding it when missing.
func CanonicalID(id string) string {
	if strings.HasPrefix(id, IDPrefix) {
		return id
	}
	return IDPrefix + id
}

// ShortID returns the id without the "task:" prefix.
func (t Task) ShortID() (string, error) {
	if t.ID == "" {
		return "", apperr.New(layer, KindNoID, "Task ID is not set")
	}
	id, ok := strings.CutPrefix(t.ID, IDPrefix)
	if !ok {
		return "", apperr.Newf(layer, KindBadPrefix,
			"Task ID from database is not prefixed with '%s'. Expected '%s<id>', but got '%s'", IDPrefix, IDPrefix, t.ID)
	}
	return id, nil
}

// InProgress reports whether the task has not been completed.
func (t Task) InProgress() bool {
	return t.CompletedAt == nil
}

// Field is one rendered (name, value) pair.
type Field struct {
	Name  string
	Value string
}

// Fields renders the task in schema order with display defaults for absent
// values.
func (t Task) Fields() ([]Field, error) {
	id, err := t.ShortID()
	if err != nil {
		return nil, err
	}
	return []Field{
		{Name: "id", Value: id},
		{Name: "name", Value: t.Name},
		{Name: "priority", Value: t.Priority.String()},
		{Name: "description", Value: valueOr(t.Description, NoneDisplay)},
		{Name: "work_note_path", Value: valueOr(t.WorkNotePath, "")},
		{Name: "created_at", Value: FormatTime(t.CreatedAt)},
		{Name: "completed_at", Value: completedDisplay(t.CompletedAt)},
	}, nil
}

// FormatTime renders an instant for display.
func FormatTime(at time.Time) string {
	return at.UTC().Format(time.RFC3339Nano)
}

func completedDisplay(at *time.Time) string {
	if at == nil {
		return InProgressDisplay
	}
	return FormatTime(*at)
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func (t Task) String() string {
	return fmt.Sprintf("%s %q [%s]", t.ID, t.Name, t.Priority)
}
