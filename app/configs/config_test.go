package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManagerWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	if cfg.Agent.Name != "Helios" || cfg.LLM.Provider != "ollama" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Sync.IntervalMin != 15 || !cfg.Sync.Enabled {
		t.Fatalf("unexpected sync defaults %+v", cfg.Sync)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not written: %v", err)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"llm": {"provider": "OpenAI"}, "http": {"port": 9000}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := mgr.Get()
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("provider should be lowercased, got %q", cfg.LLM.Provider)
	}
	if cfg.HTTP.Port != 9000 {
		t.Fatalf("explicit port lost: %d", cfg.HTTP.Port)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Fatalf("missing fields should get defaults, got %+v", cfg.Chat)
	}
}

func TestUnknownProviderIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"llm": {"provider": "anthropic"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := mgr.Get().LLM.Provider; got != "anthropic" {
		t.Fatalf("unknown providers must not be silently replaced, got %q", got)
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.Update(func(c *Config) { c.HTTP.Port = 9191 }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get().HTTP.Port; got != 9191 {
		t.Fatalf("update was not persisted, got %d", got)
	}
}
