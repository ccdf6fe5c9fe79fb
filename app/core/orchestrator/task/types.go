package task

import "strings"

// Task statuses form a closed set; anything else normalizes to TODO.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusBlocked    = "BLOCKED"
)

// Task priorities form a closed set; anything else normalizes to MEDIUM.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Task sources.
const (
	SourceManual = "MANUAL"
	SourceSlack  = "SLACK"
	SourceArgoCD = "ARGOCD"
	SourceGitHub = "GITHUB"
	SourceJira   = "JIRA"
)

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	Source      string
	SourceID    string
	SourceURL   string
	DueDate     int64 // unix seconds, 0 when unset
	CompletedAt int64 // unix seconds, 0 when unset
	CreatedAt   int64
	UpdatedAt   int64
}

type Stats struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
	Blocked    int
	Urgent     int
	High       int
}

// NormalizeStatus maps arbitrary input to a valid status, defaulting to TODO.
// The mapping is total: it never fails on bad input.
func NormalizeStatus(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return s, true
	case "COMPLETE", "COMPLETED", "FINISHED", "CLOSED":
		return StatusDone, true
	default:
		return StatusTodo, false
	}
}

// NormalizePriority maps arbitrary input to a valid priority, defaulting to MEDIUM.
func NormalizePriority(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityUrgent, "CRITICAL":
		return PriorityUrgent, true
	default:
		return PriorityMedium, false
	}
}

// NormalizeSource maps arbitrary input to a valid source, defaulting to MANUAL.
func NormalizeSource(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case SourceManual:
		return SourceManual, true
	case SourceSlack:
		return SourceSlack, true
	case SourceArgoCD:
		return SourceArgoCD, true
	case SourceGitHub:
		return SourceGitHub, true
	case SourceJira:
		return SourceJira, true
	default:
		return SourceManual, false
	}
}

func priorityRank(p string) int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}
