package intent

import (
	"regexp"
	"strings"
)

// Intent is the recognized action derived from free text, before execution.
// It lives only for the duration of one request.
type Intent struct {
	Action string
	Params map[string]string
}

// Creation patterns are tried in order: the specific "by the name" /
// "with name" / "called" variants first, the generic colon/space form last,
// so the most specific capture wins deterministically.
var createPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:create|add|make) (?:a |an |new )?task(?: for me)? by (?:the )?name(?: of)? (.+)`),
	regexp.MustCompile(`(?i)(?:create|add|make) (?:a |an |new )?task(?: for me)? with (?:the )?name (.+)`),
	regexp.MustCompile(`(?i)(?:create|add|make) (?:a |an |new )?task (?:called|named) (.+)`),
	regexp.MustCompile(`(?i)(?:create|add|make) (?:a |an |new )?task[:\s]+(.+)`),
	regexp.MustCompile(`(?i)new task[:\s]+(.+)`),
}

var deletePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:delete|remove) (?:the )?task (?:with )?id[:\s]+(.+)`),
	regexp.MustCompile(`(?i)(?:delete|remove) (?:the )?task[:\s]+(.+)`),
}

var (
	statusPattern   = regexp.MustCompile(`(?i)(?:mark|set|move|change) task (.+?) (?:as|to) (todo|in.progress|done|blocked)`)
	completePattern = regexp.MustCompile(`(?i)(?:complete|finish) (?:the )?task[:\s]+(.+)`)
)

// Substring trigger families, checked after the regex families. First match
// wins within and across families.
var phraseFamilies = []struct {
	action  string
	phrases []string
}{
	{"list_tasks", []string{"list tasks", "show tasks", "what tasks", "my tasks", "all tasks"}},
	{"list_integrations", []string{"list integrations", "show integrations", "what integrations"}},
	{"get_stats", []string{"stats", "statistics", "summary", "overview"}},
	{"predict_issues", []string{"predict", "forecast", "what will happen", "future issues"}},
	{"troubleshoot", []string{"troubleshoot", "debug", "diagnose", "problem with", "issue with", "not working"}},
	{"get_recommendations", []string{"recommend", "suggestions", "what should i", "advice", "guidance", "daily briefing"}},
	{"get_insights", []string{"insights", "analysis", "patterns", "trends", "analytics"}},
	{"generate_dashboard", []string{"dashboard", "metrics", "kpi", "performance"}},
	{"orchestrate", []string{"deploy", "orchestrate", "execute", "run workflow", "check status", "restart service"}},
	{"github_query", []string{
		"github", "repo", "repository", "pull request", "pr", "prs",
		"commits", "branches", "issues", "create issue", "show commits",
		"list repos", "show prs", "show issues",
	}},
}

// Match recognizes common commands directly from raw text. Rule families are
// tried in a fixed priority order and the first match wins; no scoring. The
// second return is false when no family matches and the caller should fall
// through to the LLM path.
func Match(text string) (Intent, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Intent{}, false
	}
	lower := strings.ToLower(trimmed)

	for _, p := range createPatterns {
		if m := p.FindStringSubmatch(trimmed); m != nil {
			title, priority := CleanTitle(m[1])
			return Intent{
				Action: "create_task",
				Params: map[string]string{"title": title, "priority": priority},
			}, true
		}
	}

	for _, p := range deletePatterns {
		if m := p.FindStringSubmatch(trimmed); m != nil {
			return Intent{
				Action: "delete_task",
				Params: map[string]string{"ref": strings.TrimSpace(m[1])},
			}, true
		}
	}

	if m := statusPattern.FindStringSubmatch(trimmed); m != nil {
		return Intent{
			Action: "update_task",
			Params: map[string]string{
				"ref":    strings.TrimSpace(m[1]),
				"status": strings.TrimSpace(m[2]),
			},
		}, true
	}
	if m := completePattern.FindStringSubmatch(trimmed); m != nil {
		return Intent{
			Action: "update_task",
			Params: map[string]string{
				"ref":    strings.TrimSpace(m[1]),
				"status": "DONE",
			},
		}, true
	}

	for _, family := range phraseFamilies {
		for _, phrase := range family.phrases {
			if strings.Contains(lower, phrase) {
				params := map[string]string{}
				switch family.action {
				case "troubleshoot":
					params["problem"] = trimmed
				case "orchestrate":
					params["command"] = trimmed
				case "github_query":
					params["query"] = trimmed
				case "generate_dashboard":
					params["type"] = "overview"
				}
				return Intent{Action: family.action, Params: params}, true
			}
		}
	}

	return Intent{}, false
}
