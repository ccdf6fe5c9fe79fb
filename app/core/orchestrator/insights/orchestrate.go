package insights

import (
	"fmt"
	"strings"
)

// Orchestrate interprets a free-text workflow command by keyword. Real
// execution is out of scope here so each branch returns the plan the
// system would run.
func Orchestrate(command string) string {
	lower := strings.ToLower(command)

	switch {
	case strings.Contains(lower, "deploy"):
		return strings.TrimSpace(`**Deployment Workflow:**

1. Run test suite
2. Build artifacts
3. Deploy to staging
4. Run smoke tests
5. Promote to production

Use your CI/CD pipeline or ArgoCD integration to execute this workflow.`)
	case strings.Contains(lower, "restart"):
		return strings.TrimSpace(`**Restart Workflow:**

1. Drain traffic from service
2. Restart service instances
3. Verify health checks pass
4. Restore traffic

Check the service health endpoint after restart.`)
	case strings.Contains(lower, "status"), strings.Contains(lower, "health"):
		return strings.TrimSpace(`**Status Check Workflow:**

1. Query service health endpoints
2. Check integration connectivity
3. Review recent error rates

Run '/integrations' to see current integration health.`)
	case strings.Contains(lower, "sync"):
		return strings.TrimSpace(`**Sync Workflow:**

1. Fetch latest items from connected integrations
2. Normalize into tasks
3. Update existing tasks that changed upstream

Connected integrations sync automatically on their schedule.`)
	case strings.Contains(lower, "workflow"):
		return strings.TrimSpace(`**Available Workflows:**

- deploy: staged deployment with smoke tests
- restart: safe service restart
- status: health and connectivity check
- sync: pull latest from integrations`)
	default:
		return fmt.Sprintf("I don't recognize the command '%s'.\n\nTry one of: deploy, restart, status, sync, workflow", command)
	}
}
