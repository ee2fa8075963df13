package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"

	"github.com/nvprime/nvprime-agent/internal/agent"
	"github.com/nvprime/nvprime-agent/internal/collector"
	"github.com/nvprime/nvprime-agent/internal/config"
	"github.com/nvprime/nvprime-agent/internal/device"
	"github.com/nvprime/nvprime-agent/internal/errors"
	"github.com/nvprime/nvprime-agent/internal/health"
	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/internal/provider/smi"
	"github.com/nvprime/nvprime-agent/internal/snapshot"
	"github.com/nvprime/nvprime-agent/internal/transport"
)

func main() {
	// 1. Load and validate config.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 2. Create context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	slog.Info("nvprime-agent starting",
		"version", cfg.AgentVersion,
		"node_name", cfg.NodeName,
		"backend_url", cfg.BackendURL,
		"snapshot_interval", cfg.SnapshotInterval,
	)

	// 3. Create shared infrastructure.
	metrics := observability.NewMetrics()
	errCollector := errors.NewErrorCollector(errors.RealClock{})
	sm := agent.NewStateMachine(errors.RealClock{})

	// 4. Build the device capability pipeline.
	prov := smi.New(cfg.SMIBinary, cfg.QueryTimeout, metrics)
	manager := device.NewManager(prov, metrics)

	registry := collector.NewRegistry()
	deviceCollector := collector.NewDeviceCollector(manager, cfg.PollInterval, metrics, errCollector)
	registry.Register(deviceCollector)

	// 5. Build snapshot builder, transport, and agent.
	builder := snapshot.NewBuilder(&cfg, deviceCollector, metrics, errCollector)
	transportClient := transport.NewClient(&cfg, metrics, errCollector)
	ag := agent.NewAgent(&cfg, registry, builder, transportClient, sm, errCollector, metrics)

	// 6. Start health server.
	healthSrv := health.NewServer(cfg.HealthPort, metrics, ag, ag, deviceCollector, cfg.DebugEndpoints)
	if err := healthSrv.Start(); err != nil {
		slog.Error("failed to start health server", "error", err)
		os.Exit(1)
	}

	// 7. Run agent (blocks until context is canceled).
	if err := ag.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("agent exited with error", "error", err)
	}

	// 8. Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Stop(shutdownCtx); err != nil {
		slog.Error("health server shutdown error", "error", err)
	}

	slog.Info("nvprime-agent stopped")
}
