package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	config "helios/app/configs"
	"helios/app/core/interaction/cli"
	"helios/app/core/interaction/gateway"
	"helios/app/core/interaction/http"
	"helios/app/core/orchestrator/actions"
	"helios/app/core/orchestrator/agent"
	"helios/app/core/orchestrator/command"
	"helios/app/core/orchestrator/db"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/llm"
	tasksync "helios/app/core/orchestrator/sync"
	"helios/app/core/orchestrator/task"
	"helios/app/core/scheduler"
	"helios/app/core/vault"
	"helios/app/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("Helios starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	database, err := db.NewSQLiteDB("output/db")
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("Database initialized")

	credentialVault, err := vault.NewFromEnv()
	if err != nil {
		logger.Error("Failed to initialize vault: %v", err)
		os.Exit(1)
	}

	taskStore := task.NewStore(database)
	integrationStore := integration.NewStore(database)

	vendorTimeout := time.Duration(cfg.Chat.VendorTimeoutSec) * time.Second
	registry := actions.NewRegistry(taskStore, integrationStore, credentialVault, vendorTimeout, cfg.Chat.TaskListLimit)

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		logger.Error("Failed to initialize LLM provider: %v", err)
		os.Exit(1)
	}
	logger.Info("LLM provider: %s (%s)", provider.Name(), cfg.LLM.Model)

	history := llm.NewHistory(cfg.Chat.HistoryLimit)
	router := llm.NewRouter(provider, registry, history, cfg.Agent.Name)
	executor := command.NewExecutor(registry, history)

	brain := agent.NewAgent(cfg.Agent.Name, registry, router, executor,
		taskStore, integrationStore, cfg.Chat.ContextPreview)

	gw := gateway.NewGateway(brain)
	gw.RegisterChannel(cli.NewCLIChannel(cfg.Chat.CLIUserID, cfg.Agent.Name))

	httpChannel := http.NewHTTPChannel(cfg.HTTP.Port)
	httpChannel.SetStatusProvider(func(ctx context.Context) map[string]interface{} {
		health := gw.Health()
		return map[string]interface{}{
			"agent":              health.AgentName,
			"channels":           health.RegisteredChannels,
			"processed_messages": health.ProcessedMessages,
		}
	})
	gw.RegisterChannel(httpChannel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Sync.Enabled {
		syncer := tasksync.NewSyncer(taskStore, integrationStore, credentialVault, vendorTimeout)
		jobScheduler := scheduler.New()
		if err := jobScheduler.Register(scheduler.JobSpec{
			Name:       "integration-sync",
			Interval:   time.Duration(cfg.Sync.IntervalMin) * time.Minute,
			Timeout:    5 * time.Minute,
			RunOnStart: true,
			Run:        syncer.SyncAll,
		}); err != nil {
			logger.Error("Failed to register sync job: %v", err)
			os.Exit(1)
		}
		if err := jobScheduler.Start(ctx); err != nil {
			logger.Error("Failed to start scheduler: %v", err)
			os.Exit(1)
		}
		defer func() {
			if err := jobScheduler.Stop(3 * time.Second); err != nil {
				logger.Error("Scheduler shutdown timeout: %v", err)
			}
		}()
	}

	go func() {
		if err := gw.Start(ctx); err != nil {
			logger.Error("Gateway crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("Helios is ready.")
	fmt.Println("- CLI Interface:  Interactive")
	fmt.Printf("- HTTP Interface: http://localhost:%d/api/message (POST)\n", cfg.HTTP.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. Shutting down...", sig)
	cancel()
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return llm.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), cfg.Model)
	case "ollama", "":
		timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
		return llm.NewOllamaProvider(cfg.BaseURL, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (expected \"openai\" or \"ollama\")", cfg.Provider)
	}
}
