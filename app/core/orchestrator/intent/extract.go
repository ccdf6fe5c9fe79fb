package intent

import (
	"regexp"
	"strings"

	"helios/app/core/orchestrator/task"
)

var (
	leadingFillerPattern = regexp.MustCompile(`(?i)^(for me|with (?:the )?name|called|named|by (?:the )?name (?:of )?|titled)\s*`)
	trailingForMePattern = regexp.MustCompile(`(?i)\s+for me\b`)
	priorityTokenPattern = regexp.MustCompile(`(?i)\s*\b(urgent|critical|high priority|low priority)\b\s*`)
)

// CleanTitle normalizes a raw captured title: leading filler phrases and a
// trailing "for me" are stripped, priority keywords are classified and
// removed from the text, and surrounding punctuation is trimmed. An empty
// result means the caller must report a validation error instead of creating
// a blank task.
func CleanTitle(raw string) (title string, priority string) {
	title = strings.TrimSpace(raw)
	title = leadingFillerPattern.ReplaceAllString(title, "")
	title = trailingForMePattern.ReplaceAllString(title, "")

	priority = InferPriority(title)
	title = priorityTokenPattern.ReplaceAllString(title, " ")

	title = strings.TrimSpace(title)
	title = strings.Trim(title, ".,;:!? ")
	title = strings.Join(strings.Fields(title), " ")
	return title, priority
}

// InferPriority sniffs priority keywords out of free text. "urgent" and
// "critical" map to URGENT; explicit "high priority"/"low priority" to their
// levels; everything else is MEDIUM.
func InferPriority(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "critical"):
		return task.PriorityUrgent
	case strings.Contains(lower, "high priority"):
		return task.PriorityHigh
	case strings.Contains(lower, "low priority"):
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}
