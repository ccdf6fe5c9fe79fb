package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"helios/app/core/integrations"
	"helios/app/core/orchestrator/task"
)

type Client struct {
	http    *http.Client
	baseURL string
	email   string
	token   string
	jql     string
}

func New(cfg, creds map[string]string, timeout time.Duration) *Client {
	jql := cfg["jql"]
	if jql == "" {
		jql = "assignee = currentUser() AND statusCategory != Done ORDER BY updated DESC"
	}
	return &Client{
		http:    integrations.NewHTTPClient(timeout),
		baseURL: strings.TrimRight(cfg["base_url"], "/"),
		email:   creds["email"],
		token:   creds["api_token"],
		jql:     jql,
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.email != "" && c.token != ""
}

func (c *Client) get(ctx context.Context, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("jira API %d: %s", resp.StatusCode, resp.Status)
	}
	return gjson.ParseBytes(raw), nil
}

func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if !c.Configured() {
		return false, "Jira base URL, email and API token are required"
	}
	res, err := c.get(ctx, "/rest/api/3/myself")
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("Connected as %s", res.Get("displayName").String())
}

// Fetch runs the configured JQL and normalizes the matching issues.
func (c *Client) Fetch(ctx context.Context) ([]integrations.Record, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("jira is not configured")
	}
	path := "/rest/api/3/search?maxResults=50&jql=" + url.QueryEscape(c.jql)
	res, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var records []integrations.Record
	res.Get("issues").ForEach(func(_, issue gjson.Result) bool {
		key := issue.Get("key").String()
		records = append(records, integrations.Record{
			ID:        key,
			Title:     issue.Get("fields.summary").String(),
			Status:    mapStatus(issue.Get("fields.status.statusCategory.key").String()),
			Priority:  mapPriority(issue.Get("fields.priority.name").String()),
			URL:       fmt.Sprintf("%s/browse/%s", c.baseURL, key),
			CreatedAt: parseJiraTime(issue.Get("fields.created").String()),
			UpdatedAt: parseJiraTime(issue.Get("fields.updated").String()),
		})
		return true
	})
	return records, nil
}

// Jira status categories are coarser than statuses and stable across
// workflow customization.
func mapStatus(category string) string {
	switch category {
	case "done":
		return task.StatusDone
	case "indeterminate":
		return task.StatusInProgress
	default:
		return task.StatusTodo
	}
}

func mapPriority(name string) string {
	switch strings.ToLower(name) {
	case "highest", "blocker", "critical":
		return task.PriorityUrgent
	case "high", "major":
		return task.PriorityHigh
	case "low", "lowest", "minor", "trivial":
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}

// Jira uses RFC3339 with a numeric zone and no colon.
func parseJiraTime(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02T15:04:05.000-0700", value)
	if err != nil {
		return integrations.ParseTime(value)
	}
	return t.Unix()
}
