package insights

import (
	"fmt"
	"strings"
	"time"

	"helios/app/core/orchestrator/task"
)

// Analysis is the full predictive-analytics result over a task snapshot.
type Analysis struct {
	Workload        Workload
	Completion      Completion
	Bottlenecks     []Bottleneck
	Risks           []Risk
	RiskLevel       string // "low", "high", "critical"
	Capacity        Capacity
	Recommendations []string
}

type Workload struct {
	Trend          string // "stable", "increasing", "decreasing"
	CompletionRate float64
	Todo           int
	InProgress     int
	Done           int
	Blocked        int
	Alert          string
}

type Completion struct {
	Prediction    string
	EstimatedDate string
	ActiveCount   int
	Confidence    string
}

type Bottleneck struct {
	Type           string
	Severity       string
	Count          int
	Description    string
	Recommendation string
}

type Risk struct {
	Type    string
	Level   string // "medium", "high", "critical"
	Count   int
	Message string
	Impact  string
}

type Capacity struct {
	Status         string
	Used           float64
	Available      float64
	Recommendation string
}

// Analyze runs the heuristic pattern analysis over the user's current tasks.
func Analyze(tasks []task.Task) Analysis {
	a := Analysis{
		Workload:    analyzeWorkload(tasks),
		Completion:  predictCompletion(tasks),
		Bottlenecks: detectBottlenecks(tasks),
		Capacity:    forecastCapacity(tasks),
	}
	a.Risks, a.RiskLevel = assessRisks(tasks)
	a.Recommendations = buildRecommendations(a)
	return a
}

func countByStatus(tasks []task.Task) (todo, inProgress, done, blocked int) {
	for _, t := range tasks {
		switch t.Status {
		case task.StatusTodo:
			todo++
		case task.StatusInProgress:
			inProgress++
		case task.StatusDone:
			done++
		case task.StatusBlocked:
			blocked++
		}
	}
	return
}

func analyzeWorkload(tasks []task.Task) Workload {
	if len(tasks) == 0 {
		return Workload{Trend: "stable"}
	}
	todo, inProgress, done, blocked := countByStatus(tasks)
	w := Workload{
		Trend:      "stable",
		Todo:       todo,
		InProgress: inProgress,
		Done:       done,
		Blocked:    blocked,
	}
	w.CompletionRate = float64(done) / float64(len(tasks)) * 100

	if todo > done*2 {
		w.Trend = "increasing"
		w.Alert = "Workload growing faster than completion rate"
	} else if done > todo*2 {
		w.Trend = "decreasing"
		w.Alert = "Completing tasks faster than new ones arrive"
	}
	if blocked > 0 {
		w.Alert = fmt.Sprintf("%d blocked task(s) need attention", blocked)
	}
	return w
}

func predictCompletion(tasks []task.Task) Completion {
	var urgent, high, medium, low, active int
	for _, t := range tasks {
		if t.Status != task.StatusTodo && t.Status != task.StatusInProgress {
			continue
		}
		active++
		switch t.Priority {
		case task.PriorityUrgent:
			urgent++
		case task.PriorityHigh:
			high++
		case task.PriorityMedium:
			medium++
		default:
			low++
		}
	}
	if active == 0 {
		return Completion{Prediction: "No active tasks", EstimatedDate: "N/A", Confidence: "high"}
	}

	days := float64(urgent)*0.5 + float64(high)*1 + float64(medium)*2 + float64(low)*3
	confidence := "medium"
	if active >= 20 {
		confidence = "low"
	}
	return Completion{
		Prediction:    fmt.Sprintf("Estimated %.1f days to complete active tasks", days),
		EstimatedDate: time.Now().Add(time.Duration(days*24) * time.Hour).Format("2006-01-02"),
		ActiveCount:   active,
		Confidence:    confidence,
	}
}

func detectBottlenecks(tasks []task.Task) []Bottleneck {
	var out []Bottleneck
	todo, inProgress, _, blocked := countByStatus(tasks)

	if blocked > 0 {
		out = append(out, Bottleneck{
			Type:           "blocked_tasks",
			Severity:       "high",
			Count:          blocked,
			Description:    fmt.Sprintf("%d blocked task(s) preventing progress", blocked),
			Recommendation: "Unblock these tasks immediately to restore workflow",
		})
	}
	if inProgress > 10 {
		out = append(out, Bottleneck{
			Type:           "context_switching",
			Severity:       "medium",
			Count:          inProgress,
			Description:    fmt.Sprintf("%d tasks in progress simultaneously", inProgress),
			Recommendation: "Focus on completing existing tasks before starting new ones",
		})
	}
	if todo > 20 {
		out = append(out, Bottleneck{
			Type:           "task_backlog",
			Severity:       "medium",
			Count:          todo,
			Description:    fmt.Sprintf("%d tasks in backlog", todo),
			Recommendation: "Review and prioritize backlog, consider delegating",
		})
	}
	return out
}

func assessRisks(tasks []task.Task) ([]Risk, string) {
	var risks []Risk
	var urgentOpen, blockedCritical, active int
	for _, t := range tasks {
		if t.Priority == task.PriorityUrgent && t.Status != task.StatusDone {
			urgentOpen++
		}
		if (t.Priority == task.PriorityUrgent || t.Priority == task.PriorityHigh) && t.Status == task.StatusBlocked {
			blockedCritical++
		}
		if t.Status == task.StatusTodo || t.Status == task.StatusInProgress {
			active++
		}
	}

	if urgentOpen > 0 {
		risks = append(risks, Risk{
			Type:    "urgent_tasks",
			Level:   "high",
			Count:   urgentOpen,
			Message: fmt.Sprintf("%d urgent task(s) require immediate attention", urgentOpen),
			Impact:  "High risk of missing critical deadlines",
		})
	}
	if blockedCritical > 0 {
		risks = append(risks, Risk{
			Type:    "blocked_critical",
			Level:   "critical",
			Count:   blockedCritical,
			Message: fmt.Sprintf("%d critical task(s) blocked", blockedCritical),
			Impact:  "Severe risk of project delays",
		})
	}
	if active > 30 {
		risks = append(risks, Risk{
			Type:    "overload",
			Level:   "medium",
			Count:   active,
			Message: fmt.Sprintf("%d active tasks may lead to burnout", active),
			Impact:  "Risk of decreased productivity and quality",
		})
	}

	level := "low"
	for _, r := range risks {
		if r.Level == "critical" {
			level = "critical"
			break
		}
		level = "high"
	}
	return risks, level
}

func forecastCapacity(tasks []task.Task) Capacity {
	var active int
	for _, t := range tasks {
		if t.Status == task.StatusTodo || t.Status == task.StatusInProgress {
			active++
		}
	}
	used := float64(active) / 50 * 100
	if used > 100 {
		used = 100
	}

	c := Capacity{Status: "healthy", Used: used, Available: 100 - used}
	switch {
	case used > 80:
		c.Status = "at_capacity"
		c.Recommendation = "Consider delegating tasks or deferring non-critical work"
	case used > 60:
		c.Status = "high_utilization"
		c.Recommendation = "Monitor workload closely, avoid taking on new commitments"
	case used < 20:
		c.Status = "underutilized"
		c.Recommendation = "Capacity available for new projects"
	}
	return c
}

func buildRecommendations(a Analysis) []string {
	var out []string
	if a.Workload.Alert != "" {
		out = append(out, a.Workload.Alert)
	}
	for _, b := range a.Bottlenecks {
		out = append(out, fmt.Sprintf("%s: %s", b.Description, b.Recommendation))
	}
	for _, r := range a.Risks {
		out = append(out, fmt.Sprintf("%s: %s", r.Message, r.Impact))
	}
	if a.Capacity.Recommendation != "" {
		out = append(out, a.Capacity.Recommendation)
	}
	if len(out) == 0 {
		out = append(out, "Everything looks good! Keep up the great work!")
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// Summary renders a short human-readable prediction report.
func (a Analysis) Summary() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Workload Trend:** %s (%.1f%% completion rate)\n", titleCase(a.Workload.Trend), a.Workload.CompletionRate))
	if len(a.Risks) > 0 {
		b.WriteString(fmt.Sprintf("**Risk Level:** %s (%d risk(s) detected)\n", strings.ToUpper(a.RiskLevel), len(a.Risks)))
	}
	b.WriteString(fmt.Sprintf("**Prediction:** %s\n", a.Completion.Prediction))
	if len(a.Recommendations) > 0 {
		b.WriteString(fmt.Sprintf("\n**Top Recommendation:** %s", a.Recommendations[0]))
	}
	return b.String()
}

// InsightsReport renders the fuller insight view used by the get_insights
// action.
func (a Analysis) InsightsReport() string {
	var b strings.Builder
	b.WriteString("**Predictive Insights:**\n\n")
	b.WriteString(fmt.Sprintf("**Workload:** %s (%.1f%% completion)\n\n", titleCase(a.Workload.Trend), a.Workload.CompletionRate))
	b.WriteString(fmt.Sprintf("**Risk Level:** %s\n", strings.ToUpper(a.RiskLevel)))
	for i, r := range a.Risks {
		if i >= 3 {
			break
		}
		b.WriteString(fmt.Sprintf("- %s\n", r.Message))
	}
	b.WriteString("\n")
	if len(a.Recommendations) > 0 {
		b.WriteString("**Top Recommendations:**\n")
		for i, rec := range a.Recommendations {
			if i >= 3 {
				break
			}
			b.WriteString(fmt.Sprintf("- %s\n", rec))
		}
	}
	return strings.TrimSpace(b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
