package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type OllamaProvider struct {
	http    *http.Client
	baseURL string
	model   string
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	body, _ := sjson.Set("", "model", p.model)
	body, _ = sjson.Set(body, "stream", false)
	for i, m := range messages {
		body, _ = sjson.Set(body, fmt.Sprintf("messages.%d.role", i), m.Role)
		body, _ = sjson.Set(body, fmt.Sprintf("messages.%d.content", i), m.Content)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed (is ollama running at %s?): %w", p.baseURL, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("ollama API error: %s", msg)
	}
	content := gjson.GetBytes(raw, "message.content").String()
	if content == "" {
		return "", fmt.Errorf("ollama returned an empty reply")
	}
	return content, nil
}
