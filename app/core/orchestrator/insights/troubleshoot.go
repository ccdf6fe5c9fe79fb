package insights

import (
	"fmt"
	"strings"
)

type knownProblem struct {
	symptoms     []string
	quickFixes   []string
	commonCauses []string
	nextSteps    []string
}

// The knowledge base maps problem classes to canned diagnostics. Symptom
// keywords are matched as lowercase substrings of the problem description.
var knowledgeBase = map[string]knownProblem{
	"slow_performance": {
		symptoms: []string{"slow", "performance", "lag", "timeout", "delayed"},
		quickFixes: []string{
			"Restart the service",
			"Clear application cache",
			"Check recent deployments for issues",
		},
		commonCauses: []string{
			"Slow database queries",
			"Memory leak",
			"External API timeout",
			"CPU bottleneck",
		},
		nextSteps: []string{
			"Check CPU and memory usage",
			"Analyze database query performance",
			"Review recent code changes",
		},
	},
	"connection_error": {
		symptoms: []string{"connection", "refused", "unreachable", "network"},
		quickFixes: []string{
			"Restart the service",
			"Check service health endpoint",
			"Verify environment variables",
		},
		commonCauses: []string{
			"Service down",
			"Firewall blocking",
			"DNS misconfiguration",
			"Wrong endpoint",
		},
		nextSteps: []string{
			"Verify service is running",
			"Check network connectivity",
			"Verify firewall rules",
		},
	},
	"authentication_failed": {
		symptoms: []string{"authentication", "unauthorized", "401", "403", "forbidden", "access denied"},
		quickFixes: []string{
			"Regenerate API keys",
			"Clear auth cache",
			"Check credential vault",
		},
		commonCauses: []string{
			"Expired token",
			"Invalid credentials",
			"Missing permissions",
			"Auth service down",
		},
		nextSteps: []string{
			"Verify credentials are correct",
			"Check token expiration",
			"Review permission settings",
		},
	},
	"deployment_failed": {
		symptoms: []string{"deployment", "rollback", "build", "ci/cd"},
		quickFixes: []string{
			"Retry deployment",
			"Rollback to previous version",
			"Check CI/CD pipeline logs",
		},
		commonCauses: []string{
			"Test failures",
			"Missing environment variables",
			"Resource constraints",
			"Image not found",
		},
		nextSteps: []string{
			"Check build logs",
			"Verify tests are passing",
			"Check resource availability",
		},
	},
	"high_error_rate": {
		symptoms: []string{"errors", "500", "crashes", "exceptions", "failing"},
		quickFixes: []string{
			"Rollback to last known good version",
			"Restart affected services",
			"Enable circuit breakers",
		},
		commonCauses: []string{
			"Recent bad deployment",
			"Dependency failure",
			"Resource exhaustion",
			"Bug in code",
		},
		nextSteps: []string{
			"Check error logs for patterns",
			"Identify error frequency and timing",
			"Check recent changes and deployments",
		},
	},
}

// Deterministic iteration order for classification.
var problemOrder = []string{
	"slow_performance",
	"connection_error",
	"authentication_failed",
	"deployment_failed",
	"high_error_rate",
}

func classifyProblem(description string) string {
	lower := strings.ToLower(description)
	for _, name := range problemOrder {
		for _, symptom := range knowledgeBase[name].symptoms {
			if strings.Contains(lower, symptom) {
				return name
			}
		}
	}
	return "unknown"
}

// Troubleshoot produces a diagnosis and suggested fixes for a free-text
// problem description.
func Troubleshoot(problem string) string {
	problemType := classifyProblem(problem)

	var b strings.Builder
	b.WriteString("**Troubleshooting Analysis:**\n\n")

	if problemType == "unknown" {
		b.WriteString("**Diagnosis:** Unable to automatically diagnose\n\n")
		b.WriteString("**Quick Actions:**\n")
		for i, action := range []string{
			"Check application logs",
			"Verify all services are running",
			"Review recent changes",
		} {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, action))
		}
		return strings.TrimSpace(b.String())
	}

	kb := knowledgeBase[problemType]
	label := titleCase(strings.ReplaceAll(problemType, "_", " "))
	b.WriteString(fmt.Sprintf("**Diagnosis:** Likely %s issue\n\n", label))
	b.WriteString("**Quick Fixes to Try:**\n")
	for i, fix := range kb.quickFixes {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, fix))
	}
	b.WriteString("\n**Common Causes:**\n")
	for _, cause := range kb.commonCauses {
		b.WriteString(fmt.Sprintf("- %s\n", cause))
	}
	b.WriteString("\n**Next Steps:**\n")
	for _, step := range kb.nextSteps {
		b.WriteString(fmt.Sprintf("- %s\n", step))
	}
	return strings.TrimSpace(b.String())
}
