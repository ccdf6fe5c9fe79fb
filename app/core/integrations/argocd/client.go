package argocd

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"helios/app/core/integrations"
	"helios/app/core/orchestrator/task"
)

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func New(cfg, creds map[string]string, timeout time.Duration) *Client {
	client := integrations.NewHTTPClient(timeout)
	if cfg["insecure"] == "true" {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(cfg["base_url"], "/"),
		token:   creds["token"],
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

func (c *Client) get(ctx context.Context, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("argocd request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("argocd API %d: %s", resp.StatusCode, resp.Status)
	}
	return gjson.ParseBytes(raw), nil
}

func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if !c.Configured() {
		return false, "ArgoCD base URL and token are required"
	}
	res, err := c.get(ctx, "/api/v1/session/userinfo")
	if err != nil {
		return false, err.Error()
	}
	if !res.Get("loggedIn").Bool() {
		return false, "ArgoCD token is not valid"
	}
	return true, fmt.Sprintf("Connected as %s", res.Get("username").String())
}

// Fetch lists applications. Unhealthy or out-of-sync apps surface as
// actionable records.
func (c *Client) Fetch(ctx context.Context) ([]integrations.Record, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("argocd is not configured")
	}
	res, err := c.get(ctx, "/api/v1/applications")
	if err != nil {
		return nil, err
	}
	var records []integrations.Record
	res.Get("items").ForEach(func(_, app gjson.Result) bool {
		name := app.Get("metadata.name").String()
		health := app.Get("status.health.status").String()
		sync := app.Get("status.sync.status").String()
		records = append(records, integrations.Record{
			ID:        name,
			Title:     fmt.Sprintf("%s: %s / %s", name, health, sync),
			Status:    mapStatus(health, sync),
			Priority:  mapPriority(health),
			URL:       fmt.Sprintf("%s/applications/%s", c.baseURL, name),
			UpdatedAt: integrations.ParseTime(app.Get("status.reconciledAt").String()),
		})
		return true
	})
	return records, nil
}

func mapStatus(health, sync string) string {
	switch health {
	case "Healthy":
		if sync == "Synced" {
			return task.StatusDone
		}
		return task.StatusInProgress
	case "Degraded", "Missing":
		return task.StatusBlocked
	case "Progressing":
		return task.StatusInProgress
	default:
		return task.StatusTodo
	}
}

func mapPriority(health string) string {
	switch health {
	case "Degraded", "Missing":
		return task.PriorityUrgent
	case "Progressing", "Suspended":
		return task.PriorityHigh
	default:
		return task.PriorityMedium
	}
}
