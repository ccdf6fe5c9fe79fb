package llm

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"helios/app/core/orchestrator/actions"
	"helios/app/core/orchestrator/db"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
	"helios/app/core/vault"
)

// scriptedProvider replies with canned completions in order.
type scriptedProvider struct {
	replies []string
	err     error
	calls   int
}

func (p *scriptedProvider) Chat(_ context.Context, _ []ChatMessage) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *scriptedProvider) Name() string { return "ollama" }

func newTestRouter(t *testing.T, provider Provider) (*Router, *task.Store) {
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
	registry := actions.NewRegistry(tasks, ints, v, 2*time.Second, 20)
	return NewRouter(provider, registry, NewHistory(10), "Helios"), tasks
}

func TestProcessPlainReply(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"You have no urgent tasks right now."}}
	router, _ := newTestRouter(t, provider)

	reply, executed, err := router.Process(context.Background(), "u1", "s1", "anything urgent?", ContextSnapshot{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if executed {
		t.Fatal("no function call was requested")
	}
	if reply != "You have no urgent tasks right now." {
		t.Fatalf("unexpected reply %q", reply)
	}

	msgs := router.history.Get("s1")
	if len(msgs) != 2 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Fatalf("expected user+assistant turns in history, got %+v", msgs)
	}
}

func TestProcessFunctionCallTwoPhase(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`FUNCTION_CALL: create_task(title="Fix login bug", priority="URGENT")`,
		"Done! I created the urgent task 'Fix login bug'.",
	}}
	router, tasks := newTestRouter(t, provider)

	reply, executed, err := router.Process(context.Background(), "u1", "s1",
		"please create an urgent task to fix the login bug", ContextSnapshot{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !executed {
		t.Fatal("expected function execution")
	}
	if reply != "Done! I created the urgent task 'Fix login bug'." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if provider.calls != 2 {
		t.Fatalf("expected two completions, got %d", provider.calls)
	}

	created, err := tasks.FindByRef(context.Background(), "u1", "Fix login bug")
	if err != nil {
		t.Fatalf("task was not persisted: %v", err)
	}
	if created.Priority != "URGENT" {
		t.Fatalf("expected URGENT priority, got %q", created.Priority)
	}
}

func TestProcessFormattingFailureFallsBack(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`FUNCTION_CALL: create_task(title="Rotate certs")`,
	}}
	router, _ := newTestRouter(t, provider)

	reply, executed, err := router.Process(context.Background(), "u1", "s1", "rotate the certs", ContextSnapshot{})
	if err != nil {
		t.Fatalf("the action ran, Process must not surface the formatting error: %v", err)
	}
	if !executed {
		t.Fatal("expected function execution")
	}
	if !strings.Contains(reply, "Rotate certs") {
		t.Fatalf("expected raw action message fallback, got %q", reply)
	}
}

func TestProcessSecondCallFallsBack(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`FUNCTION_CALL: get_stats()`,
		`FUNCTION_CALL: get_stats()`,
	}}
	router, _ := newTestRouter(t, provider)

	reply, executed, err := router.Process(context.Background(), "u1", "s1", "how are we doing?", ContextSnapshot{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !executed {
		t.Fatal("expected function execution")
	}
	if strings.Contains(reply, "FUNCTION_CALL") {
		t.Fatalf("a second call must fall back to the raw result, got %q", reply)
	}
}

func TestProcessProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	router, _ := newTestRouter(t, provider)

	reply, executed, err := router.Process(context.Background(), "u1", "s1", "hello", ContextSnapshot{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if executed {
		t.Fatal("nothing should have executed")
	}
	if !strings.Contains(reply, "connection refused") || !strings.Contains(reply, "ollama serve") {
		t.Fatalf("expected diagnostic with remediation, got %q", reply)
	}

	if len(router.history.Get("s1")) != 0 {
		t.Fatal("failed turns must not pollute history")
	}
}
