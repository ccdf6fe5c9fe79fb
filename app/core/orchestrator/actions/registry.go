// Package actions is the single dispatch point for everything the
// assistant can do. Pattern-matched intents and LLM function calls both
// land here, so validation lives here and nowhere else.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"helios/app/core/integrations/github"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/insights"
	"helios/app/core/orchestrator/task"
	"helios/app/core/vault"
	"helios/app/pkg/logger"
)

type Result struct {
	Success bool
	Message string
}

func failure(format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...interface{}) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

type handler func(ctx context.Context, userID string, params map[string]string) Result

type Registry struct {
	tasks         *task.Store
	integrations  *integration.Store
	vault         *vault.Vault
	vendorTimeout time.Duration
	listLimit     int
	handlers      map[string]handler
}

func NewRegistry(tasks *task.Store, ints *integration.Store, v *vault.Vault, vendorTimeout time.Duration, listLimit int) *Registry {
	if listLimit <= 0 {
		listLimit = 20
	}
	r := &Registry{
		tasks:         tasks,
		integrations:  ints,
		vault:         v,
		vendorTimeout: vendorTimeout,
		listLimit:     listLimit,
	}
	r.handlers = map[string]handler{
		"create_task":         r.createTask,
		"delete_task":         r.deleteTask,
		"update_task":         r.updateTask,
		"list_tasks":          r.listTasks,
		"get_task_details":    r.taskDetails,
		"list_integrations":   r.listIntegrations,
		"get_stats":           r.stats,
		"predict_issues":      r.predictIssues,
		"troubleshoot":        r.troubleshoot,
		"get_recommendations": r.recommendations,
		"orchestrate":         r.orchestrate,
		"generate_dashboard":  r.dashboard,
		"get_insights":        r.insights,
		"github_query":        r.githubQuery,
	}
	return r
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute dispatches one action. Unknown actions and validation problems
// come back as failed Results, never as panics.
func (r *Registry) Execute(ctx context.Context, userID, action string, params map[string]string) Result {
	h, ok := r.handlers[action]
	if !ok {
		logger.Debug("unknown action requested: %s", action)
		return failure("Unknown action '%s'. I can't do that.", action)
	}
	if params == nil {
		params = map[string]string{}
	}
	return h(ctx, userID, params)
}

func (r *Registry) createTask(ctx context.Context, userID string, params map[string]string) Result {
	title := strings.TrimSpace(params["title"])
	if title == "" {
		return failure("I need a task title. Try: create task: Fix the login bug")
	}
	created, err := r.tasks.Create(ctx, userID, task.CreateParams{
		Title:       title,
		Description: params["description"],
		Priority:    params["priority"],
	})
	if err != nil {
		return failure("Couldn't create the task: %v", err)
	}
	return success("✅ Created task '%s' (%s priority)", created.Title, created.Priority)
}

func (r *Registry) deleteTask(ctx context.Context, userID string, params map[string]string) Result {
	ref := strings.TrimSpace(params["ref"])
	if ref == "" {
		ref = strings.TrimSpace(params["task_id"])
	}
	if ref == "" {
		return failure("Which task should I delete? Give me its title or ID.")
	}
	found, err := r.tasks.FindByRef(ctx, userID, ref)
	if errors.Is(err, task.ErrNotFound) {
		return failure("I couldn't find a task matching '%s'.", ref)
	}
	if err != nil {
		return failure("Couldn't look up the task: %v", err)
	}
	if err := r.tasks.Delete(ctx, userID, found.ID); err != nil {
		return failure("Couldn't delete '%s': %v", found.Title, err)
	}
	return success("🗑️ Deleted task '%s'", found.Title)
}

func (r *Registry) updateTask(ctx context.Context, userID string, params map[string]string) Result {
	ref := strings.TrimSpace(params["ref"])
	if ref == "" {
		ref = strings.TrimSpace(params["task_id"])
	}
	if ref == "" {
		return failure("Which task should I update? Give me its title or ID.")
	}
	found, err := r.tasks.FindByRef(ctx, userID, ref)
	if errors.Is(err, task.ErrNotFound) {
		return failure("I couldn't find a task matching '%s'.", ref)
	}
	if err != nil {
		return failure("Couldn't look up the task: %v", err)
	}

	var p task.UpdateParams
	changed := false
	if v, ok := params["status"]; ok && strings.TrimSpace(v) != "" {
		status, _ := task.NormalizeStatus(v)
		p.Status = &status
		changed = true
	}
	if v, ok := params["priority"]; ok && strings.TrimSpace(v) != "" {
		priority, _ := task.NormalizePriority(v)
		p.Priority = &priority
		changed = true
	}
	if v, ok := params["title"]; ok && strings.TrimSpace(v) != "" {
		title := strings.TrimSpace(v)
		p.Title = &title
		changed = true
	}
	if v, ok := params["description"]; ok {
		p.Description = &v
		changed = true
	}
	if !changed {
		return failure("Nothing to update. Tell me a new status, priority, title or description.")
	}
	updated, err := r.tasks.Update(ctx, userID, found.ID, p)
	if err != nil {
		return failure("Couldn't update '%s': %v", found.Title, err)
	}
	if p.Status != nil {
		return success("📌 Moved '%s' to %s", updated.Title, updated.Status)
	}
	return success("✏️ Updated task '%s'", updated.Title)
}

func (r *Registry) listTasks(ctx context.Context, userID string, params map[string]string) Result {
	var statusFilter, priorityFilter string
	if v := strings.TrimSpace(params["status"]); v != "" {
		statusFilter, _ = task.NormalizeStatus(v)
	}
	if v := strings.TrimSpace(params["priority"]); v != "" {
		priorityFilter, _ = task.NormalizePriority(v)
	}
	tasks, err := r.tasks.List(ctx, userID, statusFilter, priorityFilter, r.listLimit)
	if err != nil {
		return failure("Couldn't list tasks: %v", err)
	}
	if len(tasks) == 0 {
		return success("You have no tasks yet. Try: create task: <title>")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Your tasks (%d):**\n", len(tasks)))
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", t.Status, t.Title, t.Priority))
	}
	return success("%s", strings.TrimSpace(b.String()))
}

func (r *Registry) taskDetails(ctx context.Context, userID string, params map[string]string) Result {
	ref := strings.TrimSpace(params["ref"])
	if ref == "" {
		ref = strings.TrimSpace(params["task_id"])
	}
	if ref == "" {
		return failure("Which task? Give me its title or ID.")
	}
	t, err := r.tasks.FindByRef(ctx, userID, ref)
	if errors.Is(err, task.ErrNotFound) {
		return failure("I couldn't find a task matching '%s'.", ref)
	}
	if err != nil {
		return failure("Couldn't look up the task: %v", err)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s**\n", t.Title))
	b.WriteString(fmt.Sprintf("- ID: %s\n- Status: %s\n- Priority: %s\n- Source: %s\n", t.ID, t.Status, t.Priority, t.Source))
	if t.Description != "" {
		b.WriteString(fmt.Sprintf("- Description: %s\n", t.Description))
	}
	if t.DueDate > 0 {
		b.WriteString(fmt.Sprintf("- Due: %s\n", time.Unix(t.DueDate, 0).Format("2006-01-02")))
	}
	if t.CompletedAt > 0 {
		b.WriteString(fmt.Sprintf("- Completed: %s\n", time.Unix(t.CompletedAt, 0).Format("2006-01-02 15:04")))
	}
	return success("%s", strings.TrimSpace(b.String()))
}

func (r *Registry) listIntegrations(ctx context.Context, userID string, _ map[string]string) Result {
	ints, err := r.integrations.List(ctx, userID)
	if err != nil {
		return failure("Couldn't list integrations: %v", err)
	}
	if len(ints) == 0 {
		return success("No integrations configured yet. You can connect GitHub, Jira, ArgoCD or Slack.")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Integrations (%d):**\n", len(ints)))
	for _, in := range ints {
		line := fmt.Sprintf("- %s (%s): %s", in.Name, in.Type, in.Status)
		if in.Status == integration.StatusError && in.ErrorMessage != "" {
			line += " — " + in.ErrorMessage
		}
		b.WriteString(line + "\n")
	}
	return success("%s", strings.TrimSpace(b.String()))
}

func (r *Registry) stats(ctx context.Context, userID string, _ map[string]string) Result {
	stats, err := r.tasks.GetStats(ctx, userID)
	if err != nil {
		return failure("Couldn't compute stats: %v", err)
	}
	return success(`**Task statistics:**
- Total: %d
- To do: %d
- In progress: %d
- Done: %d
- Blocked: %d
- Urgent open: %d | High priority open: %d`,
		stats.Total, stats.Todo, stats.InProgress, stats.Done, stats.Blocked, stats.Urgent, stats.High)
}

func (r *Registry) predictIssues(ctx context.Context, userID string, _ map[string]string) Result {
	tasks, err := r.tasks.List(ctx, userID, "", "", 0)
	if err != nil {
		return failure("Couldn't analyze tasks: %v", err)
	}
	return success("%s", insights.Analyze(tasks).Summary())
}

func (r *Registry) insights(ctx context.Context, userID string, _ map[string]string) Result {
	tasks, err := r.tasks.List(ctx, userID, "", "", 0)
	if err != nil {
		return failure("Couldn't analyze tasks: %v", err)
	}
	return success("%s", insights.Analyze(tasks).InsightsReport())
}

func (r *Registry) troubleshoot(_ context.Context, _ string, params map[string]string) Result {
	problem := strings.TrimSpace(params["problem"])
	if problem == "" {
		return failure("Describe the problem and I'll help diagnose it.")
	}
	return success("%s", insights.Troubleshoot(problem))
}

func (r *Registry) recommendations(ctx context.Context, userID string, _ map[string]string) Result {
	tasks, err := r.tasks.List(ctx, userID, "", "", 0)
	if err != nil {
		return failure("Couldn't analyze tasks: %v", err)
	}
	ints, err := r.integrations.List(ctx, userID)
	if err != nil {
		return failure("Couldn't list integrations: %v", err)
	}
	return success("%s", insights.DailyRecommendations(tasks, ints))
}

func (r *Registry) orchestrate(_ context.Context, _ string, params map[string]string) Result {
	command := strings.TrimSpace(params["command"])
	if command == "" {
		return failure("Which workflow? Try: orchestrate deploy")
	}
	return success("%s", insights.Orchestrate(command))
}

func (r *Registry) dashboard(ctx context.Context, userID string, _ map[string]string) Result {
	stats, err := r.tasks.GetStats(ctx, userID)
	if err != nil {
		return failure("Couldn't build the dashboard: %v", err)
	}
	ints, err := r.integrations.List(ctx, userID)
	if err != nil {
		return failure("Couldn't build the dashboard: %v", err)
	}
	tasks, err := r.tasks.List(ctx, userID, "", "", 0)
	if err != nil {
		return failure("Couldn't build the dashboard: %v", err)
	}
	return success("%s", insights.Dashboard(&stats, ints, tasks))
}

func (r *Registry) githubQuery(ctx context.Context, userID string, params map[string]string) Result {
	query := strings.TrimSpace(params["query"])
	if query == "" {
		return failure("What do you want to know about GitHub?")
	}
	client := r.GitHubClient(ctx, userID)
	return success("%s", client.HandleQuery(ctx, query))
}

// GitHubClient builds a GitHub adapter from the user's active
// integration. An unconfigured client is still returned so callers get a
// setup message instead of an error.
func (r *Registry) GitHubClient(ctx context.Context, userID string) *github.Client {
	cfg := map[string]string{}
	creds := map[string]string{}
	in, err := r.integrations.FindActiveByType(ctx, userID, integration.TypeGitHub)
	if err == nil {
		cfg = parseConfig(in.Config)
		creds = r.decryptCredentials(ctx, in.ID)
	}
	return github.New(cfg, creds, r.vendorTimeout)
}

func (r *Registry) decryptCredentials(ctx context.Context, integrationID string) map[string]string {
	ciphertext, err := r.integrations.GetCredentials(ctx, integrationID)
	if err != nil {
		return map[string]string{}
	}
	raw, err := r.vault.Decrypt(ciphertext)
	if err != nil {
		logger.Error("credential decryption failed for integration %s: %v", integrationID, err)
		return map[string]string{}
	}
	creds := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			creds[k] = s
		}
	}
	return creds
}

func parseConfig(configJSON string) map[string]string {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(configJSON), &raw); err != nil {
		return map[string]string{}
	}
	cfg := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			cfg[k] = t
		case bool:
			cfg[k] = fmt.Sprintf("%t", t)
		case float64:
			cfg[k] = fmt.Sprintf("%g", t)
		}
	}
	return cfg
}
