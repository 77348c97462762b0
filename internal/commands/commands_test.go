package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/migrate"
	"github.com/starford/tmgr/internal/models"
	"github.com/starford/tmgr/internal/store"
	"github.com/starford/tmgr/internal/testutil"
)

func strPtr(s string) *string { return &s }

func newService(t *testing.T, opts ...Option) (*Service, *store.DB) {
	t.Helper()
	db := testutil.TestStore(t)
	_, m := testutil.TestNotes(t)
	opts = append([]Option{WithNotes(m), WithCurrentMajor(3)}, opts...)
	return New(db, opts...), db
}

func TestAdd_ListAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	added, err := svc.Add(ctx, AddParams{Name: "buy milk", Priority: models.PriorityHigh, Description: strPtr("2%")})
	require.NoError(t, err)
	id := testutil.ShortID(t, added.Payload)
	require.Equal(t, "Task '"+id+"' created successfully", added.Message)

	listed, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, listed.Payload, 1)
	if diff := cmp.Diff(added.Payload, listed.Payload[0]); diff != "" {
		t.Errorf("listed task mismatch (-added +listed):\n%s", diff)
	}
	for _, want := range []string{"buy milk", "High", "2%", id} {
		require.Contains(t, listed.Message, want)
	}
}

func TestAdd_DefaultsToLow(t *testing.T) {
	svc, _ := newService(t)
	res, err := svc.Add(context.Background(), AddParams{Name: "plain"})
	require.NoError(t, err)
	require.Equal(t, models.PriorityLow, res.Payload.Priority)
	require.Nil(t, res.Payload.Description)
	require.True(t, res.Payload.InProgress())
}

func TestList_InProgressOnly(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	open := testutil.InsertTask(t, db, models.WithName("open"))
	done := testutil.InsertTask(t, db, models.WithName("done"))
	_, err := svc.Complete(ctx, testutil.ShortID(t, done))
	require.NoError(t, err)

	res, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, res.Payload, 1)
	require.Equal(t, open.ID, res.Payload[0].ID)
	require.NotContains(t, res.Message, "done")
}

func TestList_EmptyPrintsHeader(t *testing.T) {
	svc, _ := newService(t)
	res, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Empty(t, res.Payload)
	require.Equal(t, "id  name  priority  description  created_at  completed_at", strings.TrimSpace(res.Message))
}

func TestComplete_UnknownID(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Complete(context.Background(), "randomID")
	require.Error(t, err)
	want := "Task starting with id 'randomID' was not found (db error: No tasks found) (complete error: Database error)"
	require.Equal(t, want, err.Error())
	require.True(t, apperr.Is(err, store.KindNoTasksFound))
}

func TestComplete_Twice(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	task := testutil.InsertTask(t, db, models.WithName("finish me"))
	id := testutil.ShortID(t, task)

	first, err := svc.Complete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Successfully updated task '"+id+"' to completed", first.Message)
	second, err := svc.Complete(ctx, id[:6])
	require.NoError(t, err)

	require.NotNil(t, second.Payload.CompletedAt)
	require.False(t, second.Payload.CompletedAt.Before(*first.Payload.CompletedAt))
	got, err := db.SelectByPartialID(ctx, id)
	require.NoError(t, err)
	require.False(t, got.InProgress())
	require.False(t, got.CompletedAt.Before(got.CreatedAt))
}

func TestComplete_AmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	testutil.InsertTask(t, db, models.WithID("abc1"), models.WithName("one"))
	testutil.InsertTask(t, db, models.WithID("abc2"), models.WithName("two"))

	_, err := svc.Complete(ctx, "abc")
	require.True(t, apperr.Is(err, store.KindMultipleTasksFound), "err = %v", err)
	require.Contains(t, err.Error(), "Multiple tasks found, provide more characters of the id")
}

func TestUpdate_NoFields(t *testing.T) {
	// A nil store panics if Update touches it.
	svc := New(nil)
	_, err := svc.Update(context.Background(), "anything", store.Patch{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)
	require.Equal(t, "No fields to update", err.Error())
}

func TestUpdate_OnlyProvidedField(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	before := testutil.InsertTask(t, db,
		models.WithName("old name"),
		models.WithPriority(models.PriorityMedium),
		models.WithDescription("keep me"))
	id := testutil.ShortID(t, before)

	high := models.PriorityHigh
	res, err := svc.Update(ctx, id, store.Patch{Priority: &high})
	require.NoError(t, err)
	require.Equal(t, "Successfully updated task '"+id+"'", res.Message)

	want := before
	want.Priority = models.PriorityHigh
	got, err := db.SelectByPartialID(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete_RemovesNoteFile(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	notePath := filepath.Join(t.TempDir(), "linked.md")
	require.NoError(t, os.WriteFile(notePath, []byte("# notes\n"), 0o644))
	task := testutil.InsertTask(t, db, models.WithName("with note"), models.WithWorkNotePath(notePath))
	id := testutil.ShortID(t, task)

	res, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Successfully deleted task '"+id+"'", res.Message)

	_, err = db.SelectByPartialID(ctx, id)
	require.True(t, apperr.Is(err, store.KindNoTasksFound), "record should be gone, err = %v", err)
	_, err = os.Stat(notePath)
	require.True(t, errors.Is(err, os.ErrNotExist), "note file should be gone")
}

func TestDelete_MissingNoteFileIsFine(t *testing.T) {
	svc, db := newService(t)
	task := testutil.InsertTask(t, db, models.WithName("x"),
		models.WithWorkNotePath(filepath.Join(t.TempDir(), "never-written.md")))
	_, err := svc.Delete(context.Background(), testutil.ShortID(t, task))
	require.NoError(t, err)
}

func TestView(t *testing.T) {
	svc, db := newService(t)
	task := testutil.InsertTask(t, db, models.WithName("inspect"))
	id := testutil.ShortID(t, task)

	res, err := svc.View(context.Background(), id[:4])
	require.NoError(t, err)
	lines := strings.Split(res.Message, "\n")
	require.Len(t, lines, 8)
	require.True(t, strings.HasPrefix(lines[0], "Key"))
	order := []string{"id", "name", "priority", "description", "work_note_path", "created_at", "completed_at"}
	for i, name := range order {
		require.True(t, strings.HasPrefix(lines[i+1], name), "line %d = %q", i+1, lines[i+1])
	}
	require.Contains(t, lines[4], models.NoneDisplay)
	require.Contains(t, lines[7], models.InProgressDisplay)
}

func TestMigrate_V2(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	legacy := testutil.InsertTask(t, db, models.WithName("Version 2 task"), models.WithPriority("low"))
	current := testutil.InsertTask(t, db, models.WithName("Version 3 task"), models.WithPriority(models.PriorityHigh))

	res, err := svc.Migrate(ctx, migrate.V2)
	require.NoError(t, err)
	require.Equal(t, "Successfully migrated tasks from v2 to v3 schema", res.Message)

	got, err := db.SelectByPartialID(ctx, testutil.ShortID(t, legacy))
	require.NoError(t, err)
	want := legacy
	want.Priority = models.PriorityLow
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("migrated task mismatch (-want +got):\n%s", diff)
	}
	got, err = db.SelectByPartialID(ctx, testutil.ShortID(t, current))
	require.NoError(t, err)
	if diff := cmp.Diff(current, got); diff != "" {
		t.Errorf("v3 task changed (-want +got):\n%s", diff)
	}
}

func TestMigrateTo_ReportsTargetMajor(t *testing.T) {
	svc, db := newService(t)
	testutil.InsertTask(t, db, models.WithName("legacy"), models.WithPriority("high"))

	res, err := svc.MigrateTo(context.Background(), migrate.V2, 4)
	require.NoError(t, err)
	require.Equal(t, "Successfully migrated tasks from v2 to v4 schema", res.Message)
}

type fakeEditor struct {
	opened []string
	err    error
}

func (e *fakeEditor) Open(_ context.Context, path string) error {
	e.opened = append(e.opened, path)
	return e.err
}

func TestNote_CreatesHeaderAndLinks(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)
	task := testutil.InsertTask(t, db, models.WithName("New task"), models.WithDescription("Some description"))
	id := testutil.ShortID(t, task)

	res, err := svc.Note(ctx, id, false)
	require.NoError(t, err)
	require.Equal(t, id+".md", filepath.Base(res.Payload))

	data, err := os.ReadFile(res.Payload)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	require.Equal(t, []string{"# Task " + id + " - New task", "", "Some description", "", "## Notes"}, lines[:5])

	stored, err := db.SelectByPartialID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.WorkNotePath)
	require.Equal(t, res.Payload, *stored.WorkNotePath)

	again, err := svc.Note(ctx, id, false)
	require.NoError(t, err)
	require.Equal(t, res.Payload, again.Payload)
}

func TestNote_OpensEditor(t *testing.T) {
	ed := &fakeEditor{}
	svc, db := newService(t, WithEditor(ed))
	task := testutil.InsertTask(t, db, models.WithName("edit me"))

	res, err := svc.Note(context.Background(), testutil.ShortID(t, task), true)
	require.NoError(t, err)
	require.Equal(t, []string{res.Payload}, ed.opened)
}

func TestNote_EditorFailure(t *testing.T) {
	ed := &fakeEditor{err: errors.New("editor vi exited with status 1")}
	svc, db := newService(t, WithEditor(ed))
	task := testutil.InsertTask(t, db, models.WithName("edit me"))

	_, err := svc.Note(context.Background(), testutil.ShortID(t, task), true)
	require.True(t, apperr.Is(err, KindEditor), "err = %v", err)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t, WithExecutablePath(func() (string, error) { return "/opt/bin/tmgr", nil }))
	testutil.InsertTask(t, db, models.WithName("a"))
	testutil.InsertTask(t, db, models.WithName("b"))
	done := testutil.InsertTask(t, db, models.WithName("c"))
	_, err := svc.Complete(ctx, testutil.ShortID(t, done))
	require.NoError(t, err)

	res, err := svc.Status(ctx)
	require.NoError(t, err)
	c := res.Payload.Counts
	require.NotNil(t, c)
	require.Equal(t, c.Total, c.Completed+c.InProgress())
	require.Equal(t, int64(3), c.Total)

	want := strings.Join([]string{
		"File locations:",
		"  tmgr executable: /opt/bin/tmgr",
		"  database: " + store.MemoryLocation,
		"General statistics:",
		"  completed tasks: 1",
		"  in progress tasks: 2",
		"  total tasks: 3",
	}, "\n")
	require.Equal(t, want, res.Message)
}

func TestStatus_CountFailure(t *testing.T) {
	svc, db := newService(t, WithExecutablePath(func() (string, error) { return "", errors.New("no exe") }))
	require.NoError(t, db.Close())

	res, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.Nil(t, res.Payload.Counts)
	require.Contains(t, res.Message, "  tmgr executable: Unable to determine executable location")
	require.Equal(t, 3, strings.Count(res.Message, "unable to determine number of tasks in current database"))
}

type fakeUpgrader struct {
	msg string
	err error
}

func (u fakeUpgrader) Run(context.Context) (string, error) { return u.msg, u.err }

func TestUpgrade(t *testing.T) {
	svc := New(nil, WithUpgrader(fakeUpgrader{msg: "Already on latest version"}))
	res, err := svc.Upgrade(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Already on latest version", res.Message)

	svc = New(nil, WithUpgrader(fakeUpgrader{err: errors.New("offline")}))
	_, err = svc.Upgrade(context.Background())
	require.True(t, apperr.Is(err, KindUpgrade))
	require.Equal(t, "offline (upgrade error: Upgrade error)", err.Error())
}
