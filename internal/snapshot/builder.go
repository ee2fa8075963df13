package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/nvprime/nvprime-agent/internal/config"
	"github.com/nvprime/nvprime-agent/internal/errors"
	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// DeviceSource provides the latest collected device snapshots.
type DeviceSource interface {
	Devices() []model.DeviceCapabilities
	ProviderAvailable() bool
}

// Builder assembles complete NodeSnapshots from the latest collected
// device data, agent identity, and active error state.
type Builder struct {
	config         *config.Config
	devices        DeviceSource
	metrics        *observability.Metrics
	errorCollector *errors.ErrorCollector
	startedAt      time.Time
}

// NewBuilder creates a Builder with all required dependencies.
func NewBuilder(cfg *config.Config, devices DeviceSource, metrics *observability.Metrics, errCollector *errors.ErrorCollector) *Builder {
	return &Builder{
		config:         cfg,
		devices:        devices,
		metrics:        metrics,
		errorCollector: errCollector,
		startedAt:      time.Now(),
	}
}

// Build returns a complete NodeSnapshot reflecting the latest poll.
func (b *Builder) Build() *model.NodeSnapshot {
	start := time.Now()

	devices := b.devices.Devices()
	errorCodes := b.errorCollector.GetActiveErrorCodes()

	snap := &model.NodeSnapshot{
		SnapshotID:   uuid.New().String(),
		AgentID:      b.config.AgentID,
		NodeName:     b.config.NodeName,
		Timestamp:    time.Now().UnixMilli(),
		AgentVersion: b.config.AgentVersion,
		Devices:      devices,
		Health: model.AgentHealth{
			ProviderAvailable: b.devices.ProviderAvailable(),
			ActiveErrorsCount: len(errorCodes),
			ErrorCodes:        errorCodes,
			UptimeSeconds:     int64(time.Since(b.startedAt).Seconds()),
			StartedAt:         b.startedAt.UnixMilli(),
		},
	}

	// The driver version is host-wide; any device carries it.
	if len(devices) > 0 {
		snap.DriverVersion = devices[0].DriverVersion
	}

	snap.Summary = ComputeSummary(snap)

	if b.metrics != nil {
		b.metrics.SnapshotBuildDuration.Observe(time.Since(start).Seconds())
	}
	return snap
}
