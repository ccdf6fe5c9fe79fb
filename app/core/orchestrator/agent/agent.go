package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"helios/app/core/orchestrator/actions"
	"helios/app/core/orchestrator/command"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/intent"
	"helios/app/core/orchestrator/llm"
	"helios/app/core/orchestrator/task"
	"helios/app/pkg/logger"
	"helios/app/pkg/types"
)

// DefaultAgent is the chat pipeline. A message flows through three
// stages: slash commands, the fast pattern matcher, and finally the
// language model with its function-call protocol.
type DefaultAgent struct {
	name         string
	registry     *actions.Registry
	router       *llm.Router
	command      *command.Executor
	tasks        *task.Store
	integrations *integration.Store
	previewLimit int
}

func NewAgent(name string, registry *actions.Registry, router *llm.Router, cmd *command.Executor,
	tasks *task.Store, ints *integration.Store, previewLimit int) *DefaultAgent {
	return &DefaultAgent{
		name:         name,
		registry:     registry,
		router:       router,
		command:      cmd,
		tasks:        tasks,
		integrations: ints,
		previewLimit: previewLimit,
	}
}

func (a *DefaultAgent) Name() string { return a.name }

func (a *DefaultAgent) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	userID := strings.TrimSpace(msg.UserID)
	if userID == "" {
		userID = "anonymous"
	}
	trimmed := strings.TrimSpace(msg.Content)
	if trimmed == "" {
		return a.reply(msg, "", nil), nil
	}
	msg.UserID = userID
	msg.Content = trimmed
	if strings.TrimSpace(msg.SessionID) == "" {
		msg.SessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}

	if strings.HasPrefix(trimmed, "/") {
		out, handled, err := a.command.ExecuteSlash(ctx, msg)
		if handled {
			if err != nil {
				return a.reply(msg, fmt.Sprintf("Command failed: %v\nType /help to see what I understand.", err),
					map[string]interface{}{"command_error": true}), nil
			}
			return a.reply(msg, out, map[string]interface{}{"path": "command"}), nil
		}
	}

	if matched, ok := intent.Match(trimmed); ok {
		logger.Info("pattern matched action %s", matched.Action)
		result := a.registry.Execute(ctx, userID, matched.Action, matched.Params)
		return a.reply(msg, result.Message, map[string]interface{}{
			"path":    "pattern",
			"action":  matched.Action,
			"success": result.Success,
		}), nil
	}

	snapshot, err := a.buildSnapshot(ctx, userID)
	if err != nil {
		// A zero-value snapshot would tell the model the workspace is
		// empty, so stop the turn here instead.
		logger.Error("context snapshot failed: %v", err)
		return a.reply(msg, "I couldn't read your current tasks and integrations, so I can't answer reliably right now. Please try again in a moment.",
			map[string]interface{}{"path": "context_error"}), nil
	}
	answer, executed, err := a.router.Process(ctx, userID, msg.SessionID, trimmed, snapshot)
	if err != nil {
		// answer already carries the diagnostic.
		return a.reply(msg, answer, map[string]interface{}{"path": "llm_error"}), nil
	}
	path := "ai_response"
	if executed {
		path = "function_executed"
	}
	return a.reply(msg, answer, map[string]interface{}{"path": path}), nil
}

func (a *DefaultAgent) buildSnapshot(ctx context.Context, userID string) (llm.ContextSnapshot, error) {
	snapshot := llm.ContextSnapshot{PreviewLimit: a.previewLimit}
	stats, err := a.tasks.GetStats(ctx, userID)
	if err != nil {
		return snapshot, err
	}
	snapshot.Stats = stats
	tasks, err := a.tasks.List(ctx, userID, "", "", 0)
	if err != nil {
		return snapshot, err
	}
	snapshot.Tasks = tasks
	ints, err := a.integrations.List(ctx, userID)
	if err != nil {
		return snapshot, err
	}
	snapshot.Integrations = ints
	return snapshot, nil
}

func (a *DefaultAgent) reply(in types.Message, content string, meta map[string]interface{}) types.Message {
	return types.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      "assistant",
		ChannelID: in.ChannelID,
		UserID:    in.UserID,
		SessionID: in.SessionID,
		RequestID: in.RequestID,
		Meta:      meta,
	}
}
