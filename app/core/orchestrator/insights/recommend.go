package insights

import (
	"fmt"
	"sort"
	"strings"

	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
)

type Recommendation struct {
	Kind     string
	Priority int
	Message  string
	Action   string
}

// Recommend derives prioritized workflow advice from the current task and
// integration state. Lower Priority sorts first.
func Recommend(tasks []task.Task, integrations []integration.Integration) []Recommendation {
	var recs []Recommendation

	var urgent, blocked, inProgress, todo, done int
	for _, t := range tasks {
		if t.Priority == task.PriorityUrgent && t.Status != task.StatusDone {
			urgent++
		}
		switch t.Status {
		case task.StatusBlocked:
			blocked++
		case task.StatusInProgress:
			inProgress++
		case task.StatusTodo:
			todo++
		case task.StatusDone:
			done++
		}
	}

	if urgent > 0 {
		recs = append(recs, Recommendation{
			Kind:     "focus_urgent",
			Priority: 1,
			Message:  fmt.Sprintf("You have %d urgent task(s) that need immediate attention", urgent),
			Action:   "Focus on urgent tasks before anything else",
		})
	}
	if blocked > 0 {
		recs = append(recs, Recommendation{
			Kind:     "unblock_tasks",
			Priority: 2,
			Message:  fmt.Sprintf("%d task(s) are blocked and stalling progress", blocked),
			Action:   "Identify and resolve blockers",
		})
	}
	if inProgress > 5 {
		recs = append(recs, Recommendation{
			Kind:     "reduce_wip",
			Priority: 3,
			Message:  fmt.Sprintf("%d tasks in progress is a lot of context switching", inProgress),
			Action:   "Finish current work before starting new tasks",
		})
	}
	if todo > 15 {
		recs = append(recs, Recommendation{
			Kind:     "clear_backlog",
			Priority: 4,
			Message:  fmt.Sprintf("Backlog has grown to %d tasks", todo),
			Action:   "Triage the backlog and close stale items",
		})
	}
	if done > 0 && done >= todo+inProgress {
		recs = append(recs, Recommendation{
			Kind:     "celebrate_progress",
			Priority: 6,
			Message:  fmt.Sprintf("Great momentum: %d tasks completed", done),
			Action:   "Keep the current pace",
		})
	}

	if len(integrations) == 0 {
		recs = append(recs, Recommendation{
			Kind:     "add_integrations",
			Priority: 5,
			Message:  "No integrations configured",
			Action:   "Connect GitHub, Jira, ArgoCD or Slack to sync work automatically",
		})
	} else {
		errored := 0
		for _, in := range integrations {
			if in.Status == integration.StatusError {
				errored++
			}
		}
		if errored > 0 {
			recs = append(recs, Recommendation{
				Kind:     "fix_integration_errors",
				Priority: 2,
				Message:  fmt.Sprintf("%d integration(s) are in error state", errored),
				Action:   "Check integration credentials and connectivity",
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

// NextTask picks the single task the user should work on next. Blocked
// urgent work wins, then urgent, then high priority, then any open task.
func NextTask(tasks []task.Task) *task.Task {
	var byRank [4]*task.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Status == task.StatusDone {
			continue
		}
		switch {
		case t.Priority == task.PriorityUrgent && t.Status == task.StatusBlocked:
			if byRank[0] == nil {
				byRank[0] = t
			}
		case t.Priority == task.PriorityUrgent:
			if byRank[1] == nil {
				byRank[1] = t
			}
		case t.Priority == task.PriorityHigh:
			if byRank[2] == nil {
				byRank[2] = t
			}
		default:
			if byRank[3] == nil {
				byRank[3] = t
			}
		}
	}
	for _, t := range byRank {
		if t != nil {
			return t
		}
	}
	return nil
}

// DailyRecommendations renders the recommendation list plus a suggested
// next task as a chat reply.
func DailyRecommendations(tasks []task.Task, integrations []integration.Integration) string {
	recs := Recommend(tasks, integrations)

	var b strings.Builder
	b.WriteString("**Recommendations:**\n\n")
	if len(recs) == 0 {
		b.WriteString("Everything looks good! No recommendations right now.\n")
	} else {
		for i, r := range recs {
			b.WriteString(fmt.Sprintf("%d. %s\n   → %s\n", i+1, r.Message, r.Action))
		}
	}

	if next := NextTask(tasks); next != nil {
		b.WriteString(fmt.Sprintf("\n**Suggested next task:** %s (%s, %s)\n", next.Title, next.Priority, next.Status))
	}
	return strings.TrimSpace(b.String())
}
