package integration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

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

func TestCreateDefaults(t *testing.T) {
	store := newTestStore(t)
	in, err := store.Create(context.Background(), "user-a", "GitHub", "", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if in.Type != "github" {
		t.Fatalf("expected lowercase type, got %s", in.Type)
	}
	if in.Name != "github" {
		t.Fatalf("expected name defaulted to type, got %s", in.Name)
	}
	if in.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", in.Status)
	}
	if in.Config != "{}" {
		t.Fatalf("expected empty config object, got %s", in.Config)
	}
}

func TestStatusLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in, err := store.Create(ctx, "user-a", "jira", "work jira", `{"base_url":"https://x.atlassian.net"}`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.SetStatus(ctx, "user-a", in.ID, "active", ""); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	active, err := store.FindActiveByType(ctx, "user-a", "jira")
	if err != nil {
		t.Fatalf("find active failed: %v", err)
	}
	if active.ID != in.ID {
		t.Fatalf("expected %s, got %s", in.ID, active.ID)
	}

	if err := store.SetStatus(ctx, "user-a", in.ID, "error", "boom"); err != nil {
		t.Fatalf("set error failed: %v", err)
	}
	got, err := store.Get(ctx, "user-a", in.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != StatusError || got.ErrorMessage != "boom" {
		t.Fatalf("expected ERROR/boom, got %s/%s", got.Status, got.ErrorMessage)
	}
	if _, err := store.FindActiveByType(ctx, "user-a", "jira"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("errored integration must not be active, got %v", err)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in, err := store.Create(ctx, "user-a", "github", "gh", "{}")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	blob := []byte{0x01, 0x02, 0x03}
	if err := store.PutCredentials(ctx, in.ID, blob); err != nil {
		t.Fatalf("put credentials failed: %v", err)
	}
	got, err := store.GetCredentials(ctx, in.ID)
	if err != nil {
		t.Fatalf("get credentials failed: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("credentials mismatch: %v vs %v", got, blob)
	}

	// Delete removes the credential row too.
	if err := store.Delete(ctx, "user-a", in.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetCredentials(ctx, in.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected credentials gone, got %v", err)
	}
}

func TestListAllActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "user-a", "github", "gh", "{}")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.Create(ctx, "user-b", "jira", "jira", "{}"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.SetStatus(ctx, "user-a", a.ID, StatusActive, ""); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	active, err := store.ListAllActive(ctx)
	if err != nil {
		t.Fatalf("list all active failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("expected only the activated integration, got %+v", active)
	}
}
