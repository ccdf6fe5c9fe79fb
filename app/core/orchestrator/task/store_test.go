package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"helios/app/core/orchestrator/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("init sqlite failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateNormalizesInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-a", CreateParams{Title: "Fix bug", Priority: "critical", Source: "nonsense"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Priority != PriorityUrgent {
		t.Fatalf("expected CRITICAL to map to URGENT, got %s", created.Priority)
	}
	if created.Status != StatusTodo {
		t.Fatalf("expected default TODO status, got %s", created.Status)
	}
	if created.Source != SourceManual {
		t.Fatalf("expected unknown source to default to MANUAL, got %s", created.Source)
	}
	if created.ID == "" || created.CreatedAt == 0 {
		t.Fatalf("expected id and created_at to be set: %+v", created)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create(context.Background(), "user-a", CreateParams{Title: "   "}); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestFindByRefIDThenTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "user-a", CreateParams{Title: "Fix login bug"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byID, err := store.FindByRef(ctx, "user-a", first.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.ID != first.ID {
		t.Fatalf("expected task %s, got %s", first.ID, byID.ID)
	}

	byTitle, err := store.FindByRef(ctx, "user-a", "FIX LOGIN BUG")
	if err != nil {
		t.Fatalf("case-insensitive title lookup failed: %v", err)
	}
	if byTitle.ID != first.ID {
		t.Fatalf("expected task %s, got %s", first.ID, byTitle.ID)
	}

	if _, err := store.FindByRef(ctx, "user-a", "no such task"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.FindByRef(ctx, "user-b", "Fix login bug"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected per-user scoping, got %v", err)
	}
}

func TestFindByRefMostRecentWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, "user-a", CreateParams{Title: "Duplicate"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Backdate the first copy so the ordering is unambiguous.
	if _, err := store.db.Conn().Exec(`UPDATE tasks SET created_at = created_at - 10 WHERE id = ?`, older.ID); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	newer, err := store.Create(ctx, "user-a", CreateParams{Title: "duplicate"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := store.FindByRef(ctx, "user-a", "Duplicate")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ID != newer.ID {
		t.Fatalf("expected most recently created task %s, got %s", newer.ID, found.ID)
	}
}

func TestUpdateDoneStampsCompletion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-a", CreateParams{Title: "Ship it"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	done := StatusDone
	updated, err := store.Update(ctx, "user-a", created.ID, UpdateParams{Status: &done})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != StatusDone {
		t.Fatalf("expected DONE, got %s", updated.Status)
	}
	if updated.CompletedAt == 0 {
		t.Fatal("expected completed_at to be stamped")
	}
	if delta := time.Now().Unix() - updated.CompletedAt; delta < 0 || delta > 5 {
		t.Fatalf("completed_at looks wrong: %d", updated.CompletedAt)
	}

	todo := StatusTodo
	reopened, err := store.Update(ctx, "user-a", created.ID, UpdateParams{Status: &todo})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.CompletedAt != 0 {
		t.Fatalf("expected completed_at cleared on reopen, got %d", reopened.CompletedAt)
	}
}

func TestDeleteMissingTask(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "user-a", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPriorityOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"LOW", "URGENT", "MEDIUM", "HIGH"} {
		if _, err := store.Create(ctx, "user-a", CreateParams{Title: "task " + p, Priority: p}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	items, err := store.List(ctx, "user-a", "", "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(items))
	}
	want := []string{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
	for i, p := range want {
		if items[i].Priority != p {
			t.Fatalf("position %d: expected %s, got %s", i, p, items[i].Priority)
		}
	}
}

func TestListStatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-a", CreateParams{Title: "open one"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	doneTask, err := store.Create(ctx, "user-a", CreateParams{Title: "done one"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	done := StatusDone
	if _, err := store.Update(ctx, "user-a", doneTask.ID, UpdateParams{Status: &done}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	items, err := store.List(ctx, "user-a", "todo", "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("expected only the open task, got %+v", items)
	}
}

func TestListFiltersBeforeLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doneTask, err := store.Create(ctx, "user-a", CreateParams{Title: "finished long ago"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	done := StatusDone
	if _, err := store.Update(ctx, "user-a", doneTask.ID, UpdateParams{Status: &done}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// Backdate it below any row cap so a post-cap filter would miss it.
	if _, err := store.db.Conn().Exec(`UPDATE tasks SET created_at = created_at - 100 WHERE id = ?`, doneTask.ID); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := store.Create(ctx, "user-a", CreateParams{Title: "newer open task"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	items, err := store.List(ctx, "user-a", "done", "", 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != doneTask.ID {
		t.Fatalf("filter must apply before the limit, got %+v", items)
	}
}

func TestListZeroLimitReturnsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		if _, err := store.Create(ctx, "user-a", CreateParams{Title: "bulk task"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	items, err := store.List(ctx, "user-a", "", "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 55 {
		t.Fatalf("expected all 55 tasks, got %d", len(items))
	}

	capped, err := store.List(ctx, "user-a", "", "", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(capped) != 10 {
		t.Fatalf("expected 10 tasks with an explicit limit, got %d", len(capped))
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "user-a", CreateParams{Title: "open urgent", Priority: "URGENT"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	closedUrgent, err := store.Create(ctx, "user-a", CreateParams{Title: "closed urgent", Priority: "URGENT"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	done := StatusDone
	if _, err := store.Update(ctx, "user-a", closedUrgent.ID, UpdateParams{Status: &done}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stats, err := store.GetStats(ctx, "user-a")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 2 || stats.Todo != 1 || stats.Done != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Urgent != 1 {
		t.Fatalf("done tasks must not count as urgent, got %d", stats.Urgent)
	}
}

func TestFindBySource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-a", CreateParams{
		Title: "upstream issue", Source: "github", SourceID: "42",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := store.FindBySource(ctx, "user-a", "github", "42")
	if err != nil {
		t.Fatalf("find by source failed: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, found.ID)
	}
	if _, err := store.FindBySource(ctx, "user-a", "github", "43"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
