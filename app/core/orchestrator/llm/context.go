package llm

import (
	"fmt"
	"strings"

	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
)

// ContextSnapshot is the system state the model is allowed to talk
// about. Empty states are spelled out so the model has nothing to
// invent.
type ContextSnapshot struct {
	Stats        task.Stats
	Tasks        []task.Task
	Integrations []integration.Integration
	PreviewLimit int
}

func (s ContextSnapshot) previewLimit() int {
	if s.PreviewLimit <= 0 {
		return 5
	}
	return s.PreviewLimit
}

// Render writes the snapshot as prompt text.
func (s ContextSnapshot) Render() string {
	var b strings.Builder
	b.WriteString("CURRENT SYSTEM STATE:\n\n")

	if len(s.Tasks) == 0 {
		b.WriteString("Tasks: No tasks exist yet.\n")
	} else {
		b.WriteString(fmt.Sprintf("Tasks: %d total (todo: %d, in progress: %d, done: %d, blocked: %d)\n",
			s.Stats.Total, s.Stats.Todo, s.Stats.InProgress, s.Stats.Done, s.Stats.Blocked))
		for _, status := range []string{task.StatusTodo, task.StatusInProgress, task.StatusBlocked, task.StatusDone} {
			s.writeStatusPreview(&b, status)
		}
	}

	b.WriteString("\n")
	if len(s.Integrations) == 0 {
		b.WriteString("Integrations: No integrations configured.\n")
	} else {
		b.WriteString(fmt.Sprintf("Integrations: %d configured\n", len(s.Integrations)))
		for _, in := range s.Integrations {
			b.WriteString(fmt.Sprintf("- %s (%s): %s\n", in.Name, in.Type, in.Status))
		}
	}
	return b.String()
}

func (s ContextSnapshot) writeStatusPreview(b *strings.Builder, status string) {
	limit := s.previewLimit()
	var shown, total int
	for _, t := range s.Tasks {
		if t.Status != status {
			continue
		}
		total++
		if shown < limit {
			if shown == 0 {
				b.WriteString(fmt.Sprintf("\n%s:\n", status))
			}
			b.WriteString(fmt.Sprintf("- %s (%s)\n", t.Title, t.Priority))
			shown++
		}
	}
	if total > limit {
		b.WriteString(fmt.Sprintf("  ...and %d more\n", total-limit))
	}
}

// SystemPrompt builds the grounding prompt for a chat turn. The model may
// only reference tasks and integrations listed in the snapshot.
func SystemPrompt(agentName string, snapshot ContextSnapshot) string {
	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(agentName)
	b.WriteString(", a DevOps assistant that manages tasks and integrations.\n\n")
	b.WriteString(snapshot.Render())
	b.WriteString(`
RULES:
- Only reference tasks and integrations shown above. Never invent task titles, counts or integration names.
- If no tasks exist, say so. Do not fabricate examples.
- Be concise and practical.
`)
	return b.String()
}
