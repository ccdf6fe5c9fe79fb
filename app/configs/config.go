package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Config struct {
	Agent AgentConfig `json:"agent"`
	LLM   LLMConfig   `json:"llm"`
	HTTP  HTTPConfig  `json:"http"`
	Chat  ChatConfig  `json:"chat"`
	Sync  SyncConfig  `json:"sync"`
}

type AgentConfig struct {
	Name string `json:"name"`
}

type LLMConfig struct {
	Provider          string `json:"provider"` // "openai" or "ollama"
	Model             string `json:"model"`
	BaseURL           string `json:"base_url"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type HTTPConfig struct {
	Port int `json:"port"`
}

type ChatConfig struct {
	CLIUserID        string `json:"cli_user_id"`
	HistoryLimit     int    `json:"history_limit"`
	ContextPreview   int    `json:"context_preview"`
	TaskListLimit    int    `json:"task_list_limit"`
	VendorTimeoutSec int    `json:"vendor_timeout_sec"`
}

type SyncConfig struct {
	Enabled     bool `json:"enabled"`
	IntervalMin int  `json:"interval_min"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name: "Helios",
		},
		LLM: LLMConfig{
			Provider:          "ollama",
			Model:             "llama3.1:8b-instruct-q4_K_M",
			BaseURL:           "http://localhost:11434",
			RequestTimeoutSec: 120,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Chat: ChatConfig{
			CLIUserID:        "local_user",
			HistoryLimit:     10,
			ContextPreview:   5,
			TaskListLimit:    50,
			VendorTimeoutSec: 12,
		},
		Sync: SyncConfig{
			Enabled:     true,
			IntervalMin: 15,
		},
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = "Helios"
	}
	// Unknown provider values are kept and rejected at startup rather
	// than silently swapped.
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = "llama3.1:8b-instruct-q4_K_M"
	}
	if strings.TrimSpace(cfg.LLM.BaseURL) == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.RequestTimeoutSec <= 0 {
		cfg.LLM.RequestTimeoutSec = 120
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if strings.TrimSpace(cfg.Chat.CLIUserID) == "" {
		cfg.Chat.CLIUserID = "local_user"
	}
	if cfg.Chat.HistoryLimit <= 0 {
		cfg.Chat.HistoryLimit = 10
	}
	if cfg.Chat.ContextPreview <= 0 {
		cfg.Chat.ContextPreview = 5
	}
	if cfg.Chat.TaskListLimit <= 0 {
		cfg.Chat.TaskListLimit = 50
	}
	if cfg.Chat.VendorTimeoutSec <= 0 {
		cfg.Chat.VendorTimeoutSec = 12
	}
	if cfg.Sync.IntervalMin <= 0 {
		cfg.Sync.IntervalMin = 15
	}
}
