package slack

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
)

const apiBase = "https://slack.com/api"

type Client struct {
	http    *http.Client
	token   string
	channel string
}

func New(cfg, creds map[string]string, timeout time.Duration) *Client {
	return &Client{
		http:    integrations.NewHTTPClient(timeout),
		token:   creds["bot_token"],
		channel: cfg["channel"],
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

func (c *Client) post(ctx context.Context, method, body string) (gjson.Result, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/"+method, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.ParseBytes(raw)
	if !res.Get("ok").Bool() {
		return gjson.Result{}, fmt.Errorf("slack API error: %s", res.Get("error").String())
	}
	return res, nil
}

func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if !c.Configured() {
		return false, "Slack bot token is required"
	}
	res, err := c.post(ctx, "auth.test", "")
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("Connected to workspace %s as %s",
		res.Get("team").String(), res.Get("user").String())
}

// SendMessage posts text to the configured channel, or an explicit one.
func (c *Client) SendMessage(ctx context.Context, channel, text string) error {
	if channel == "" {
		channel = c.channel
	}
	if channel == "" {
		return fmt.Errorf("slack channel is not configured")
	}
	body, _ := sjson.Set("", "channel", channel)
	body, _ = sjson.Set(body, "text", text)
	_, err := c.post(ctx, "chat.postMessage", body)
	return err
}
