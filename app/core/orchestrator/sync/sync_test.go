package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"helios/app/core/integrations"
	"helios/app/core/orchestrator/db"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
	"helios/app/core/vault"
)

func newTestSyncer(t *testing.T) (*Syncer, *task.Store, *integration.Store) {
	t.Helper()
	database, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	v, err := vault.New([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	tasks := task.NewStore(database)
	ints := integration.NewStore(database)
	return NewSyncer(tasks, ints, v, 2*time.Second), tasks, ints
}

func activeIntegration(t *testing.T, ints *integration.Store, vendorType string) integration.Integration {
	t.Helper()
	ctx := context.Background()
	in, err := ints.Create(ctx, "u1", vendorType, "", "{}")
	if err != nil {
		t.Fatalf("Create integration: %v", err)
	}
	if err := ints.SetStatus(ctx, "u1", in.ID, integration.StatusActive, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	in.Status = integration.StatusActive
	return in
}

func TestUpsertCreatesTask(t *testing.T) {
	s, tasks, ints := newTestSyncer(t)
	ctx := context.Background()
	in := activeIntegration(t, ints, integration.TypeGitHub)

	changed, err := s.upsert(ctx, in, integrations.Record{
		ID:       "42",
		Title:    "Fix flaky pipeline",
		Status:   task.StatusInProgress,
		Priority: task.PriorityHigh,
		URL:      "https://github.com/acme/api/issues/42",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !changed {
		t.Fatal("a new record is a change")
	}

	got, err := tasks.FindBySource(ctx, "u1", integration.TypeGitHub, "42")
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if got.Title != "Fix flaky pipeline" || got.Priority != task.PriorityHigh {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.Status != task.StatusInProgress {
		t.Fatalf("vendor status must be kept on import, got %q", got.Status)
	}
	if got.SourceURL != "https://github.com/acme/api/issues/42" {
		t.Fatalf("source url missing: %+v", got)
	}
}

func TestUpsertUpdatesChangedFields(t *testing.T) {
	s, tasks, ints := newTestSyncer(t)
	ctx := context.Background()
	in := activeIntegration(t, ints, integration.TypeJira)

	rec := integrations.Record{ID: "PROJ-7", Title: "Upgrade runtime", Status: task.StatusTodo, Priority: task.PriorityMedium}
	if _, err := s.upsert(ctx, in, rec); err != nil {
		t.Fatalf("initial upsert: %v", err)
	}

	changed, err := s.upsert(ctx, in, rec)
	if err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}
	if changed {
		t.Fatal("an identical record must be a no-op")
	}

	rec.Status = task.StatusDone
	rec.Title = "Upgrade runtime to v2"
	changed, err = s.upsert(ctx, in, rec)
	if err != nil {
		t.Fatalf("changed upsert: %v", err)
	}
	if !changed {
		t.Fatal("status and title changed upstream")
	}

	got, err := tasks.FindBySource(ctx, "u1", integration.TypeJira, "PROJ-7")
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if got.Status != task.StatusDone || got.Title != "Upgrade runtime to v2" {
		t.Fatalf("vendor changes not mirrored: %+v", got)
	}
	if got.CompletedAt == 0 {
		t.Fatal("a vendor-completed task gets a completion stamp")
	}
}

func TestUpsertSkipsIncompleteRecords(t *testing.T) {
	s, tasks, ints := newTestSyncer(t)
	ctx := context.Background()
	in := activeIntegration(t, ints, integration.TypeGitHub)

	for _, rec := range []integrations.Record{
		{ID: "", Title: "no id"},
		{ID: "9", Title: ""},
	} {
		changed, err := s.upsert(ctx, in, rec)
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if changed {
			t.Fatalf("incomplete record %+v must be skipped", rec)
		}
	}
	all, err := tasks.List(ctx, "u1", "", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("nothing should have been created, got %d", len(all))
	}
}

func TestSyncAllSkipsOutboundOnlyVendors(t *testing.T) {
	s, _, ints := newTestSyncer(t)
	ctx := context.Background()
	in := activeIntegration(t, ints, integration.TypeSlack)

	if err := s.SyncAll(ctx); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	got, err := ints.Get(ctx, "u1", in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != integration.StatusActive {
		t.Fatalf("an outbound-only vendor stays active, got %q", got.Status)
	}
	if got.LastSyncAt == 0 {
		t.Fatal("the pass still counts as a sync")
	}
}

func TestSyncAllIgnoresInactiveIntegrations(t *testing.T) {
	s, _, ints := newTestSyncer(t)
	ctx := context.Background()
	// Created but never activated, so the pass must not touch it.
	if _, err := ints.Create(ctx, "u1", integration.TypeGitHub, "", "{}"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.SyncAll(ctx); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
}
