package insights

import (
	"strings"
	"testing"

	"helios/app/core/orchestrator/task"
)

func makeTasks(status, priority string, n int) []task.Task {
	out := make([]task.Task, n)
	for i := range out {
		out[i] = task.Task{Title: "t", Status: status, Priority: priority}
	}
	return out
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil)
	if a.Workload.Trend != "stable" {
		t.Fatalf("empty workload should be stable, got %q", a.Workload.Trend)
	}
	if a.RiskLevel != "low" {
		t.Fatalf("no tasks means low risk, got %q", a.RiskLevel)
	}
	if a.Completion.Prediction != "No active tasks" {
		t.Fatalf("unexpected prediction %q", a.Completion.Prediction)
	}
	if len(a.Recommendations) == 0 {
		t.Fatal("the report always carries at least one recommendation")
	}
}

func TestWorkloadTrend(t *testing.T) {
	growing := append(makeTasks(task.StatusTodo, task.PriorityMedium, 5),
		makeTasks(task.StatusDone, task.PriorityMedium, 1)...)
	if got := analyzeWorkload(growing); got.Trend != "increasing" {
		t.Fatalf("todo far ahead of done should trend increasing, got %q", got.Trend)
	}

	shrinking := append(makeTasks(task.StatusDone, task.PriorityMedium, 5),
		makeTasks(task.StatusTodo, task.PriorityMedium, 1)...)
	if got := analyzeWorkload(shrinking); got.Trend != "decreasing" {
		t.Fatalf("done far ahead of todo should trend decreasing, got %q", got.Trend)
	}
}

func TestPredictCompletionWeights(t *testing.T) {
	tasks := []task.Task{
		{Status: task.StatusTodo, Priority: task.PriorityUrgent},
		{Status: task.StatusTodo, Priority: task.PriorityHigh},
		{Status: task.StatusInProgress, Priority: task.PriorityMedium},
		{Status: task.StatusTodo, Priority: task.PriorityLow},
		{Status: task.StatusDone, Priority: task.PriorityUrgent},
	}
	c := predictCompletion(tasks)
	if c.ActiveCount != 4 {
		t.Fatalf("done tasks must not count as active, got %d", c.ActiveCount)
	}
	// 0.5 + 1 + 2 + 3 days
	if !strings.Contains(c.Prediction, "6.5 days") {
		t.Fatalf("unexpected prediction %q", c.Prediction)
	}
	if c.Confidence != "medium" {
		t.Fatalf("expected medium confidence, got %q", c.Confidence)
	}
}

func TestConfidenceDropsWhenOverloaded(t *testing.T) {
	c := predictCompletion(makeTasks(task.StatusTodo, task.PriorityMedium, 25))
	if c.Confidence != "low" {
		t.Fatalf("20+ active tasks should drop confidence, got %q", c.Confidence)
	}
}

func TestDetectBottlenecks(t *testing.T) {
	if got := detectBottlenecks(makeTasks(task.StatusTodo, task.PriorityMedium, 3)); len(got) != 0 {
		t.Fatalf("a small backlog is not a bottleneck: %+v", got)
	}

	tasks := makeTasks(task.StatusBlocked, task.PriorityMedium, 1)
	tasks = append(tasks, makeTasks(task.StatusInProgress, task.PriorityMedium, 11)...)
	tasks = append(tasks, makeTasks(task.StatusTodo, task.PriorityMedium, 21)...)
	got := detectBottlenecks(tasks)
	if len(got) != 3 {
		t.Fatalf("expected blocked, context_switching and task_backlog, got %+v", got)
	}
	if got[0].Type != "blocked_tasks" || got[0].Severity != "high" {
		t.Fatalf("blocked tasks lead the list: %+v", got[0])
	}
}

func TestAssessRisks(t *testing.T) {
	tasks := []task.Task{
		{Status: task.StatusTodo, Priority: task.PriorityUrgent},
		{Status: task.StatusBlocked, Priority: task.PriorityHigh},
	}
	risks, level := assessRisks(tasks)
	if level != "critical" {
		t.Fatalf("a blocked high priority task is critical, got %q", level)
	}
	if len(risks) != 2 {
		t.Fatalf("expected urgent_tasks and blocked_critical, got %+v", risks)
	}

	_, level = assessRisks(makeTasks(task.StatusTodo, task.PriorityUrgent, 1))
	if level != "high" {
		t.Fatalf("open urgent work is high risk, got %q", level)
	}

	_, level = assessRisks(makeTasks(task.StatusDone, task.PriorityUrgent, 3))
	if level != "low" {
		t.Fatalf("completed urgent work carries no risk, got %q", level)
	}
}

func TestForecastCapacity(t *testing.T) {
	c := forecastCapacity(makeTasks(task.StatusTodo, task.PriorityMedium, 25))
	if c.Used != 50 || c.Status != "healthy" {
		t.Fatalf("25 active of 50 is 50%% healthy, got %+v", c)
	}

	c = forecastCapacity(makeTasks(task.StatusTodo, task.PriorityMedium, 45))
	if c.Status != "at_capacity" {
		t.Fatalf("expected at_capacity, got %q", c.Status)
	}

	c = forecastCapacity(makeTasks(task.StatusTodo, task.PriorityMedium, 60))
	if c.Used != 100 {
		t.Fatalf("utilization is capped at 100, got %v", c.Used)
	}

	c = forecastCapacity(nil)
	if c.Status != "underutilized" {
		t.Fatalf("expected underutilized, got %q", c.Status)
	}
}

func TestSummaryAndReportRender(t *testing.T) {
	tasks := []task.Task{
		{Title: "Hotfix", Status: task.StatusTodo, Priority: task.PriorityUrgent},
		{Title: "Refactor", Status: task.StatusDone, Priority: task.PriorityLow},
	}
	a := Analyze(tasks)

	summary := a.Summary()
	if !strings.Contains(summary, "Risk Level:** HIGH") {
		t.Fatalf("summary missing risk level:\n%s", summary)
	}
	if !strings.Contains(summary, "Top Recommendation:") {
		t.Fatalf("summary missing recommendation:\n%s", summary)
	}

	report := a.InsightsReport()
	if !strings.Contains(report, "urgent task(s) require immediate attention") {
		t.Fatalf("report missing risk detail:\n%s", report)
	}
}
