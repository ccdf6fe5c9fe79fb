package command

import (
	"context"
	"fmt"
	"strings"

	"helios/app/core/orchestrator/actions"
	"helios/app/core/orchestrator/llm"
	"helios/app/core/orchestrator/task"
	"helios/app/pkg/types"
)

type Executor struct {
	registry *actions.Registry
	history  *llm.History
}

func NewExecutor(registry *actions.Registry, history *llm.History) *Executor {
	return &Executor{registry: registry, history: history}
}

// ExecuteSlash handles a message starting with "/". The bool reports
// whether the message was a command at all.
func (e *Executor) ExecuteSlash(ctx context.Context, msg types.Message) (string, bool, error) {
	cmd := strings.TrimSpace(strings.TrimPrefix(msg.Content, "/"))
	if cmd == "" {
		return "", false, nil
	}
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "", false, nil
	}
	switch parts[0] {
	case "help":
		return e.helpText(), true, nil
	case "task":
		out, err := e.taskCommand(ctx, msg.UserID, parts[1:])
		return out, true, err
	case "integrations":
		out, err := e.integrationCommand(ctx, msg.UserID, parts[1:])
		return out, true, err
	case "stats":
		res := e.registry.Execute(ctx, msg.UserID, "get_stats", nil)
		return res.Message, true, nil
	case "dashboard":
		res := e.registry.Execute(ctx, msg.UserID, "generate_dashboard", nil)
		return res.Message, true, nil
	case "clear":
		e.history.Clear(msg.SessionID)
		return "Conversation history cleared.", true, nil
	default:
		return "", true, fmt.Errorf("unknown command: %s", parts[0])
	}
}

func (e *Executor) taskCommand(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		params := map[string]string{}
		if len(args) > 1 {
			switch strings.ToLower(args[1]) {
			case "open":
				params["status"] = task.StatusTodo
			case "done", "closed":
				params["status"] = task.StatusDone
			case "blocked":
				params["status"] = task.StatusBlocked
			}
		}
		res := e.registry.Execute(ctx, userID, "list_tasks", params)
		return res.Message, nil
	case "new":
		if len(args) < 2 {
			return "Usage: /task new <title>", nil
		}
		res := e.registry.Execute(ctx, userID, "create_task",
			map[string]string{"title": strings.Join(args[1:], " ")})
		return res.Message, nil
	case "close":
		if len(args) < 2 {
			return "Usage: /task close <title or id>", nil
		}
		res := e.registry.Execute(ctx, userID, "update_task", map[string]string{
			"ref":    strings.Join(args[1:], " "),
			"status": task.StatusDone,
		})
		return res.Message, nil
	case "delete":
		if len(args) < 2 {
			return "Usage: /task delete <title or id>", nil
		}
		res := e.registry.Execute(ctx, userID, "delete_task",
			map[string]string{"ref": strings.Join(args[1:], " ")})
		return res.Message, nil
	default:
		return "", fmt.Errorf("unknown task command: %s", args[0])
	}
}

func (e *Executor) integrationCommand(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		res := e.registry.Execute(ctx, userID, "list_integrations", nil)
		return res.Message, nil
	}
	switch args[0] {
	case "list":
		res := e.registry.Execute(ctx, userID, "list_integrations", nil)
		return res.Message, nil
	case "add":
		if len(args) < 2 {
			return "Usage: /integrations add <type> [name] key=value ...", nil
		}
		vendorType := args[1]
		name := ""
		kv := map[string]string{}
		for _, arg := range args[2:] {
			if k, v, ok := strings.Cut(arg, "="); ok {
				kv[k] = v
			} else if name == "" {
				name = arg
			}
		}
		res := e.registry.SetupIntegration(ctx, userID, vendorType, name, kv)
		return res.Message, nil
	case "test":
		if len(args) < 2 {
			return "Usage: /integrations test <name or id>", nil
		}
		res := e.registry.TestIntegration(ctx, userID, strings.Join(args[1:], " "))
		return res.Message, nil
	case "remove", "delete":
		if len(args) < 2 {
			return "Usage: /integrations remove <name or id>", nil
		}
		res := e.registry.RemoveIntegration(ctx, userID, strings.Join(args[1:], " "))
		return res.Message, nil
	default:
		return "", fmt.Errorf("unknown integrations command: %s", args[0])
	}
}

func (e *Executor) helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	b.WriteString("  /help\n")
	b.WriteString("Task:\n")
	b.WriteString("  /task list [open|done|blocked]\n")
	b.WriteString("  /task new <title>\n")
	b.WriteString("  /task close <title or id>\n")
	b.WriteString("  /task delete <title or id>\n")
	b.WriteString("Integrations:\n")
	b.WriteString("  /integrations [list]\n")
	b.WriteString("  /integrations add <type> [name] key=value ...\n")
	b.WriteString("  /integrations test <name or id>\n")
	b.WriteString("  /integrations remove <name or id>\n")
	b.WriteString("Other:\n")
	b.WriteString("  /stats\n")
	b.WriteString("  /dashboard\n")
	b.WriteString("  /clear\n")
	return strings.TrimSpace(b.String())
}
