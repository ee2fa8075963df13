package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nvprime/nvprime-agent/internal/collector"
	"github.com/nvprime/nvprime-agent/internal/config"
	"github.com/nvprime/nvprime-agent/internal/errors"
	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/internal/snapshot"
	"github.com/nvprime/nvprime-agent/internal/transport"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// syncTimeout bounds the wait for the collectors' first poll.
const syncTimeout = 2 * time.Minute

// Agent is the main orchestrator that wires together all subsystems and
// runs the snapshot-send loop.
type Agent struct {
	config         *config.Config
	registry       *collector.Registry
	builder        *snapshot.Builder
	transport      *transport.Client
	stateMachine   *StateMachine
	errorCollector *errors.ErrorCollector
	metrics        *observability.Metrics

	latestSnapshot atomic.Pointer[model.NodeSnapshot]
	ready          atomic.Bool
}

// NewAgent creates an Agent with all required dependencies.
func NewAgent(
	cfg *config.Config,
	registry *collector.Registry,
	builder *snapshot.Builder,
	transport *transport.Client,
	stateMachine *StateMachine,
	errCollector *errors.ErrorCollector,
	metrics *observability.Metrics,
) *Agent {
	return &Agent{
		config:         cfg,
		registry:       registry,
		builder:        builder,
		transport:      transport,
		stateMachine:   stateMachine,
		errorCollector: errCollector,
		metrics:        metrics,
	}
}

// IsReady reports whether the agent has completed its first device poll
// and is actively collecting data. Implements health.ReadinessChecker.
func (a *Agent) IsReady() bool {
	return a.ready.Load()
}

// LatestSnapshot returns the most recent NodeSnapshot, or nil if none
// has been built yet. Implements health.SnapshotProvider.
func (a *Agent) LatestSnapshot() interface{} {
	snap := a.latestSnapshot.Load()
	if snap == nil {
		return nil
	}
	return snap
}

// Run executes the agent lifecycle: start collectors, wait for the
// first poll, then enter the snapshot-send loop until the context is
// canceled or the state machine transitions to a terminal state.
func (a *Agent) Run(ctx context.Context) error {
	// 1. Start all collectors.
	if err := a.registry.StartAll(ctx); err != nil {
		var partial *collector.PartialStartError
		if stderrors.As(err, &partial) {
			slog.Warn("some collectors failed to start, continuing with partial data",
				"failed", partial.Failed, "total", partial.Total)
		} else {
			return fmt.Errorf("failed to start collectors: %w", err)
		}
	}
	defer a.registry.StopAll()

	// 2. Wait for the first device poll.
	slog.Info("waiting for first device poll", "timeout", syncTimeout)
	syncCtx, syncCancel := context.WithTimeout(ctx, syncTimeout)
	defer syncCancel()
	syncStart := time.Now()
	if err := a.registry.WaitForSync(syncCtx); err != nil {
		a.errorCollector.Report(errors.AgentError{
			Code:      errors.ErrTimeout,
			Message:   fmt.Sprintf("first poll timed out after %s: %v", syncTimeout, err),
			Component: "agent",
			Timestamp: time.Now().UnixMilli(),
			Err:       err,
		})
		slog.Warn("first poll incomplete, continuing with partial data",
			"error", err,
			"elapsed", time.Since(syncStart).Round(time.Millisecond),
		)
		// Continue: partial data is better than no data.
	} else {
		slog.Info("first device poll completed",
			"elapsed", time.Since(syncStart).Round(time.Millisecond),
		)
	}

	// 3. Transition to Running.
	a.setState(StateRunning, "first poll complete")
	a.ready.Store(true)
	slog.Info("agent is ready", "state", StateRunning)

	// 4. Main loop.
	ticker := time.NewTicker(a.config.SnapshotInterval)
	defer ticker.Stop()

	// Do first snapshot immediately.
	a.doSnapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		switch state := a.stateMachine.State(); state {
		case StateRunning:
			a.doSnapshot(ctx)
		case StateBackoff:
			if a.stateMachine.IsBackoffExpired() {
				a.setState(StateRunning, "backoff expired")
				a.doSnapshot(ctx)
			} else {
				slog.Debug("in backoff, skipping snapshot",
					"remaining", a.stateMachine.BackoffRemaining())
			}
		case StateStopped:
			slog.Info("agent exiting", "state", state,
				"reason", a.stateMachine.StateReason())
			return nil
		}

		if s := a.stateMachine.State(); s == StateStopped {
			slog.Info("agent exiting", "state", s,
				"reason", a.stateMachine.StateReason())
			return nil
		}
	}
}

func (a *Agent) setState(state AgentState, reason string) {
	a.stateMachine.TransitionTo(state, reason)
	a.updateStateMetric()
}

func (a *Agent) updateStateMetric() {
	if a.metrics == nil {
		return
	}
	current := a.stateMachine.State()
	for _, s := range []AgentState{StateStarting, StateRunning, StateBackoff, StateStopped} {
		v := 0.0
		if s == current {
			v = 1.0
		}
		a.metrics.AgentState.WithLabelValues(string(s)).Set(v)
	}
}

func (a *Agent) doSnapshot(ctx context.Context) {
	snap := a.builder.Build()
	a.latestSnapshot.Store(snap)

	resp, err := a.transport.Send(ctx, snap)
	if err != nil {
		var rle *transport.RateLimitError
		if stderrors.As(err, &rle) {
			a.stateMachine.HandleHTTPStatus(429, int(rle.RetryAfter/time.Second))
			a.updateStateMetric()
		}
		slog.Error("snapshot send failed", "error", err)
		return
	}

	a.stateMachine.HandleHTTPStatus(200, 0)
	a.updateStateMetric()

	if resp != nil {
		slog.Info("snapshot sent successfully",
			"snapshot_id", snap.SnapshotID,
			"devices", snap.Summary.DeviceCount,
		)
	}
}
