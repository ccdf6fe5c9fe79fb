package insights

import (
	"fmt"
	"strings"

	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
)

// Dashboard renders a text overview of tasks and integrations.
func Dashboard(stats *task.Stats, integrations []integration.Integration, tasks []task.Task) string {
	var b strings.Builder
	b.WriteString("**Dashboard Overview**\n\n")

	b.WriteString("**Tasks:**\n")
	b.WriteString(fmt.Sprintf("- Total: %d\n", stats.Total))
	b.WriteString(fmt.Sprintf("- To do: %d | In progress: %d | Done: %d | Blocked: %d\n",
		stats.Todo, stats.InProgress, stats.Done, stats.Blocked))
	if stats.Urgent > 0 || stats.High > 0 {
		b.WriteString(fmt.Sprintf("- Urgent: %d | High priority: %d\n", stats.Urgent, stats.High))
	}

	b.WriteString("\n**Integrations:**\n")
	if len(integrations) == 0 {
		b.WriteString("- None configured\n")
	} else {
		active := 0
		for _, in := range integrations {
			if in.Status == integration.StatusActive {
				active++
			}
			b.WriteString(fmt.Sprintf("- %s (%s): %s\n", in.Name, in.Type, in.Status))
		}
		b.WriteString(fmt.Sprintf("- %d of %d active\n", active, len(integrations)))
	}

	analysis := Analyze(tasks)
	b.WriteString(fmt.Sprintf("\n**Capacity:** %.0f%% utilized (%s)\n",
		analysis.Capacity.Used, strings.ReplaceAll(analysis.Capacity.Status, "_", " ")))

	if tip := dashboardTip(stats); tip != "" {
		b.WriteString(fmt.Sprintf("\n💡 %s\n", tip))
	}
	return strings.TrimSpace(b.String())
}

func dashboardTip(stats *task.Stats) string {
	switch {
	case stats.Blocked > 0:
		return "You have blocked tasks. Resolving blockers usually unlocks the most progress."
	case stats.Urgent > 0:
		return "Tackle urgent tasks first to stay ahead."
	case stats.Total == 0:
		return "Create your first task with: create task: <title>"
	default:
		return "Things look under control. Keep it up!"
	}
}
