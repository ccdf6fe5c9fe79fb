package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"helios/app/core/orchestrator/actions"
	"helios/app/pkg/logger"
)

// functionCatalog is injected into the system prompt so the model knows
// the marker grammar and the actions it can request.
const functionCatalog = `
You can take actions by replying with exactly one marker line:

FUNCTION_CALL: function_name(param="value", other="value")

Available functions:
- create_task(title="...", priority="LOW|MEDIUM|HIGH|URGENT", description="...")
- delete_task(ref="task title or id")
- update_task(ref="task title or id", status="TODO|IN_PROGRESS|DONE|BLOCKED", priority="...", title="...")
- list_tasks(status="...", priority="...")
- get_task_details(ref="task title or id")
- list_integrations()
- get_stats()
- predict_issues()
- troubleshoot(problem="description of the problem")
- get_recommendations()
- orchestrate(command="deploy|restart|status|sync")
- generate_dashboard()
- get_insights()
- github_query(query="the github question")
- list_github_repos()
- list_pull_requests(repo="owner/repo")
- list_issues(repo="owner/repo")
- list_commits(repo="owner/repo")
- list_branches(repo="owner/repo")
- get_repo_info(repo="owner/repo")
- get_repo_stats(repo="owner/repo")

Use a function call when the user asks you to do something. Answer
directly when they are just asking a question about what you can see.`

// Router runs the two-phase chat protocol: one completion to decide, an
// optional action, and a second completion to phrase the result.
type Router struct {
	provider  Provider
	registry  *actions.Registry
	history   *History
	agentName string
}

func NewRouter(provider Provider, registry *actions.Registry, history *History, agentName string) *Router {
	return &Router{
		provider:  provider,
		registry:  registry,
		history:   history,
		agentName: agentName,
	}
}

// Process answers one user turn. The returned bool reports whether a
// function call was executed.
func (r *Router) Process(ctx context.Context, userID, sessionID, userText string, snapshot ContextSnapshot) (string, bool, error) {
	system := SystemPrompt(r.agentName, snapshot) + functionCatalog

	messages := []ChatMessage{{Role: RoleSystem, Content: system}}
	messages = append(messages, r.history.Get(sessionID)...)
	messages = append(messages, ChatMessage{Role: RoleUser, Content: userText})

	reply, err := r.provider.Chat(ctx, messages)
	if err != nil {
		return providerErrorMessage(r.provider.Name(), err), false, err
	}

	call, ok := ParseFunctionCall(reply)
	if !ok {
		r.remember(sessionID, userText, reply)
		return strings.TrimSpace(reply), false, nil
	}

	logger.Info("model requested function %s", call.Name)
	result := r.dispatch(ctx, userID, call)

	resultJSON, _ := sjson.Set("", "success", result.Success)
	resultJSON, _ = sjson.Set(resultJSON, "message", result.Message)

	messages = append(messages,
		ChatMessage{Role: RoleAssistant, Content: reply},
		ChatMessage{Role: RoleUser, Content: "Function result: " + resultJSON +
			"\n\nRelay this result to the user in a friendly, concise way. Do not call another function."})

	final, err := r.provider.Chat(ctx, messages)
	if err != nil {
		// The action already ran; fall back to its raw message.
		logger.Error("formatting completion failed: %v", err)
		r.remember(sessionID, userText, result.Message)
		return result.Message, true, nil
	}
	if _, again := ParseFunctionCall(final); again {
		final = result.Message
	}
	final = strings.TrimSpace(final)
	r.remember(sessionID, userText, final)
	return final, true, nil
}

func (r *Router) remember(sessionID, userText, reply string) {
	r.history.Append(sessionID, RoleUser, userText)
	r.history.Append(sessionID, RoleAssistant, reply)
}

// dispatch runs a parsed call. GitHub browse functions are shortcuts the
// registry doesn't own, everything else goes through it.
func (r *Router) dispatch(ctx context.Context, userID string, call FunctionCall) actions.Result {
	switch call.Name {
	case "list_github_repos", "list_pull_requests", "list_issues",
		"list_commits", "list_branches", "get_repo_info", "get_repo_stats":
		return r.githubShortcut(ctx, userID, call)
	default:
		return r.registry.Execute(ctx, userID, call.Name, call.Params)
	}
}

func (r *Router) githubShortcut(ctx context.Context, userID string, call FunctionCall) actions.Result {
	client := r.registry.GitHubClient(ctx, userID)
	if !client.Configured() {
		return actions.Result{Success: false,
			Message: "GitHub is not connected yet. Add a GitHub integration with a personal access token first."}
	}
	repo := call.Params["repo"]
	if repo == "" {
		repo = client.ExtractRepo("")
	}

	var reply string
	var err error
	switch call.Name {
	case "list_github_repos":
		reply, err = client.ListRepositories(ctx)
	case "list_pull_requests":
		reply, err = client.ListPullRequests(ctx, repo)
	case "list_issues":
		reply, err = client.ListIssues(ctx, repo)
	case "list_commits":
		reply, err = client.ListCommits(ctx, repo)
	case "list_branches":
		reply, err = client.ListBranches(ctx, repo)
	case "get_repo_info", "get_repo_stats":
		reply, err = client.RepoStats(ctx, repo)
	}
	if err != nil {
		return actions.Result{Success: false, Message: fmt.Sprintf("GitHub call failed: %v", err)}
	}
	return actions.Result{Success: true, Message: reply}
}

func providerErrorMessage(provider string, err error) string {
	var b strings.Builder
	b.WriteString("I couldn't reach the language model.\n\n")
	b.WriteString(fmt.Sprintf("Error: %v\n\n", err))
	switch provider {
	case "ollama":
		b.WriteString("Check that ollama is running (`ollama serve`) and the configured model is pulled.")
	case "openai":
		b.WriteString("Check that OPENAI_API_KEY is set and valid.")
	default:
		b.WriteString("Check the llm section of your configuration.")
	}
	return b.String()
}
