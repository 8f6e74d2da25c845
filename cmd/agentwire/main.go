package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentwire/agentwire/internal/agent"
	"github.com/agentwire/agentwire/internal/config"
	"github.com/agentwire/agentwire/internal/gateway"
	"github.com/agentwire/agentwire/internal/llm"
	"github.com/agentwire/agentwire/internal/message"
	"github.com/agentwire/agentwire/internal/schedule"
	"github.com/agentwire/agentwire/internal/tool"
	"github.com/agentwire/agentwire/internal/trace"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("agentwire v%s\n", version)
	case "serve":
		if err := serve(); err != nil {
			slog.Error("fatal", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("agentwire - agent event gateway")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  agentwire serve     Start the gateway server")
	fmt.Println("  agentwire version   Show version info")
}

func serve() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	home := config.ResolveHome()
	slog.Info("agentwire starting", "version", version, "home", home)

	for _, dir := range []string{config.ScheduleDir(), config.LogsDir()} {
		os.MkdirAll(dir, 0755)
	}

	cfgPath := config.ResolveConfigPath("")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}
	config.Set(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTrace, err := trace.Init(ctx, cfg.Trace)
	if err != nil {
		slog.Warn("tracing init failed", "error", err)
	} else {
		defer shutdownTrace(context.Background())
	}

	registry := tool.NewRegistry()
	registry.Register(tool.CurrentTimeTool{})

	factory := func(agentName, threadID string) (agent.Agent, error) {
		return buildAgent(config.Get(), registry, agentName, threadID)
	}

	srv := gateway.NewServer(cfg, factory)

	sched := schedule.NewScheduler(config.ScheduleJobsPath(), func(ctx context.Context, agentID, prompt string) error {
		ag, err := factory(agentID, "")
		if err != nil {
			return err
		}
		handle, err := ag.RunAgent(ctx, agent.RunParams{
			Messages: []message.Message{message.User(prompt)},
		}, gateway.BroadcastSubscriber(srv.Conns))
		if err != nil {
			return err
		}
		return handle.Wait(ctx)
	})
	if err := sched.Load(); err != nil {
		slog.Warn("failed to load scheduled jobs", "error", err)
	}
	for _, job := range cfg.Schedule {
		if _, err := sched.AddConfigJob(job.Name, job.Cron, job.Agent, job.Prompt); err != nil {
			slog.Warn("invalid scheduled job in config", "job", job.Name, "error", err)
		}
	}
	sched.Start()
	defer sched.Stop()
	srv.Sched = sched

	go config.Watch(ctx, cfgPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	return srv.Start(ctx)
}

func buildAgent(cfg *config.Config, registry *tool.Registry, agentName, threadID string) (agent.Agent, error) {
	agentCfg, ok := cfg.Agents[agentName]
	if !ok {
		return nil, fmt.Errorf("agent %q not configured", agentName)
	}
	provider, model, provCfg, err := config.ResolveProviderForAgent(cfg, &agentCfg)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", agentName, err)
	}
	return agent.NewChatAgent(agent.ChatAgentConfig{
		AgentID:      agentName,
		ThreadID:     threadID,
		Instructions: agentCfg.Instructions,
		Model:        model,
		MaxTokens:    agentCfg.MaxTokens,
		Client:       newClient(provider, provCfg),
		Tools:        registry,
	})
}

// newClient picks the provider adapter for a configured provider.
func newClient(provider string, p config.ProviderConfig) llm.Client {
	switch p.ClientType(provider) {
	case "anthropic":
		return llm.NewAnthropicClient(p.APIKey, p.BaseURL)
	default:
		return llm.NewOpenAIClient(p.APIKey, p.BaseURL)
	}
}
