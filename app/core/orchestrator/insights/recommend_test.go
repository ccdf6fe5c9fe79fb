package insights

import (
	"strings"
	"testing"

	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
)

func TestRecommendOrdering(t *testing.T) {
	tasks := []task.Task{
		{Title: "Fire", Status: task.StatusTodo, Priority: task.PriorityUrgent},
		{Title: "Stuck", Status: task.StatusBlocked, Priority: task.PriorityMedium},
	}
	recs := Recommend(tasks, nil)
	if len(recs) < 3 {
		t.Fatalf("expected urgent, blocked and integration advice, got %+v", recs)
	}
	if recs[0].Kind != "focus_urgent" {
		t.Fatalf("urgent work comes first, got %q", recs[0].Kind)
	}
	if recs[1].Kind != "unblock_tasks" {
		t.Fatalf("blockers come second, got %q", recs[1].Kind)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Priority > recs[i].Priority {
			t.Fatalf("recommendations out of order: %+v", recs)
		}
	}
}

func TestRecommendWIPAndBacklog(t *testing.T) {
	tasks := makeTasks(task.StatusInProgress, task.PriorityMedium, 6)
	tasks = append(tasks, makeTasks(task.StatusTodo, task.PriorityMedium, 16)...)
	recs := Recommend(tasks, []integration.Integration{{Status: integration.StatusActive}})

	kinds := map[string]bool{}
	for _, r := range recs {
		kinds[r.Kind] = true
	}
	if !kinds["reduce_wip"] || !kinds["clear_backlog"] {
		t.Fatalf("expected WIP and backlog advice, got %+v", recs)
	}
	if kinds["add_integrations"] {
		t.Fatal("integration advice does not apply when one is configured")
	}
}

func TestRecommendIntegrationErrors(t *testing.T) {
	ints := []integration.Integration{
		{Status: integration.StatusActive},
		{Status: integration.StatusError},
	}
	recs := Recommend(nil, ints)
	found := false
	for _, r := range recs {
		if r.Kind == "fix_integration_errors" {
			found = true
		}
	}
	if !found {
		t.Fatalf("an errored integration must be flagged: %+v", recs)
	}
}

func TestRecommendCelebratesProgress(t *testing.T) {
	tasks := append(makeTasks(task.StatusDone, task.PriorityMedium, 4),
		makeTasks(task.StatusTodo, task.PriorityMedium, 2)...)
	recs := Recommend(tasks, []integration.Integration{{Status: integration.StatusActive}})
	if len(recs) != 1 || recs[0].Kind != "celebrate_progress" {
		t.Fatalf("expected only celebrate_progress, got %+v", recs)
	}
}

func TestNextTaskRanking(t *testing.T) {
	tasks := []task.Task{
		{Title: "chore", Status: task.StatusTodo, Priority: task.PriorityLow},
		{Title: "important", Status: task.StatusTodo, Priority: task.PriorityHigh},
		{Title: "fire", Status: task.StatusTodo, Priority: task.PriorityUrgent},
		{Title: "stuck fire", Status: task.StatusBlocked, Priority: task.PriorityUrgent},
		{Title: "finished fire", Status: task.StatusDone, Priority: task.PriorityUrgent},
	}
	next := NextTask(tasks)
	if next == nil || next.Title != "stuck fire" {
		t.Fatalf("blocked urgent work wins, got %+v", next)
	}

	next = NextTask(tasks[:3])
	if next == nil || next.Title != "fire" {
		t.Fatalf("urgent beats high, got %+v", next)
	}

	next = NextTask(tasks[:2])
	if next == nil || next.Title != "important" {
		t.Fatalf("high beats the rest, got %+v", next)
	}

	if NextTask(makeTasks(task.StatusDone, task.PriorityUrgent, 3)) != nil {
		t.Fatal("everything done means nothing to suggest")
	}
}

func TestDailyRecommendationsRender(t *testing.T) {
	tasks := []task.Task{{Title: "Fix prod", Status: task.StatusTodo, Priority: task.PriorityUrgent}}
	out := DailyRecommendations(tasks, nil)
	if !strings.Contains(out, "urgent task(s)") {
		t.Fatalf("missing urgent advice:\n%s", out)
	}
	if !strings.Contains(out, "Suggested next task:** Fix prod") {
		t.Fatalf("missing next-task suggestion:\n%s", out)
	}
}

func TestTroubleshootClassification(t *testing.T) {
	cases := []struct {
		problem string
		want    string
	}{
		{"the api is really slow since yesterday", "Slow performance"},
		{"connection refused when hitting the db", "Connection error"},
		{"we get 401 unauthorized from the registry", "Authentication failed"},
		{"the deployment rolled back twice", "Deployment failed"},
		{"users are seeing 500 errors", "High error rate"},
	}
	for _, tc := range cases {
		out := Troubleshoot(tc.problem)
		if !strings.Contains(out, tc.want) {
			t.Fatalf("problem %q should diagnose %q, got:\n%s", tc.problem, tc.want, out)
		}
		if !strings.Contains(out, "Quick Fixes to Try:") {
			t.Fatalf("diagnosis for %q missing quick fixes:\n%s", tc.problem, out)
		}
	}
}

func TestTroubleshootUnknown(t *testing.T) {
	out := Troubleshoot("my coffee machine stopped working")
	if !strings.Contains(out, "Unable to automatically diagnose") {
		t.Fatalf("unexpected diagnosis:\n%s", out)
	}
}

func TestOrchestrateKeywords(t *testing.T) {
	if out := Orchestrate("deploy the api"); !strings.Contains(out, "Deployment Workflow") {
		t.Fatalf("unexpected plan:\n%s", out)
	}
	if out := Orchestrate("check status of everything"); !strings.Contains(out, "Status Check Workflow") {
		t.Fatalf("unexpected plan:\n%s", out)
	}
	if out := Orchestrate("make me a sandwich"); !strings.Contains(out, "don't recognize") {
		t.Fatalf("unexpected reply:\n%s", out)
	}
}
