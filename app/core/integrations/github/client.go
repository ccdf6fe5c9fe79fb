package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"helios/app/core/integrations"
	"helios/app/core/orchestrator/task"
)

const defaultBaseURL = "https://api.github.com"

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	repo    string // optional "owner/repo" default from config
}

// New builds a GitHub adapter from the integration's non-secret config
// and its decrypted credentials.
func New(cfg, creds map[string]string, timeout time.Duration) *Client {
	base := strings.TrimRight(cfg["base_url"], "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		http:    integrations.NewHTTPClient(timeout),
		baseURL: base,
		token:   creds["token"],
		repo:    cfg["repo"],
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

func (c *Client) do(ctx context.Context, method, path string, body string) (gjson.Result, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "message").String()
		if msg == "" {
			msg = resp.Status
		}
		return gjson.Result{}, fmt.Errorf("github API %d: %s", resp.StatusCode, msg)
	}
	return gjson.ParseBytes(raw), nil
}

// TestConnection verifies the token by fetching the authenticated user.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if !c.Configured() {
		return false, "GitHub token is not configured"
	}
	res, err := c.do(ctx, http.MethodGet, "/user", "")
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("Connected as %s", res.Get("login").String())
}

// Fetch pulls open issues from the configured repository as normalized
// records.
func (c *Client) Fetch(ctx context.Context) ([]integrations.Record, error) {
	if c.repo == "" {
		return nil, fmt.Errorf("github repo is not configured")
	}
	res, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/issues?state=open&per_page=50", c.repo), "")
	if err != nil {
		return nil, err
	}
	var records []integrations.Record
	res.ForEach(func(_, issue gjson.Result) bool {
		// Pull requests also show up in the issues listing.
		if issue.Get("pull_request").Exists() {
			return true
		}
		records = append(records, integrations.Record{
			ID:        issue.Get("number").String(),
			Title:     issue.Get("title").String(),
			Status:    task.StatusTodo,
			Priority:  labelPriority(issue.Get("labels")),
			URL:       issue.Get("html_url").String(),
			CreatedAt: integrations.ParseTime(issue.Get("created_at").String()),
			UpdatedAt: integrations.ParseTime(issue.Get("updated_at").String()),
		})
		return true
	})
	return records, nil
}

func labelPriority(labels gjson.Result) string {
	priority := task.PriorityMedium
	labels.ForEach(func(_, label gjson.Result) bool {
		switch strings.ToLower(label.Get("name").String()) {
		case "urgent", "critical", "p0":
			priority = task.PriorityUrgent
			return false
		case "high", "p1":
			priority = task.PriorityHigh
		case "low", "p3":
			if priority == task.PriorityMedium {
				priority = task.PriorityLow
			}
		}
		return true
	})
	return priority
}

// CreateIssue opens an issue in the given repository.
func (c *Client) CreateIssue(ctx context.Context, repo, title, body string) (string, error) {
	payload, _ := sjson.Set("", "title", title)
	if body != "" {
		payload, _ = sjson.Set(payload, "body", body)
	}
	res, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/issues", repo), payload)
	if err != nil {
		return "", err
	}
	return res.Get("html_url").String(), nil
}
