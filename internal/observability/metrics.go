package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for agent self-monitoring.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// Provider metrics
	ProviderQueryDuration *prometheus.HistogramVec
	ProviderQueryErrors   *prometheus.CounterVec
	SMIParseFailures      prometheus.Counter

	// Device metrics
	Devices      prometheus.Gauge
	DeviceHealth *prometheus.GaugeVec
	PollDuration prometheus.Histogram
	PollsTotal   *prometheus.CounterVec

	// Snapshot metrics
	SnapshotBuildDuration prometheus.Histogram
	SnapshotSendDuration  prometheus.Histogram
	SnapshotSizeBytes     *prometheus.HistogramVec
	SnapshotSendTotal     *prometheus.CounterVec

	// Transport metrics
	TransportRetries prometheus.Counter

	// State metrics
	AgentState *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	sizeBuckets := prometheus.ExponentialBuckets(1024, 4, 10)

	m := &Metrics{
		Registry: reg,

		ProviderQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nvprime_agent_provider_query_duration_seconds",
			Help:    "Duration of device provider queries in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		ProviderQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvprime_agent_provider_query_errors_total",
			Help: "Total number of failed device provider queries.",
		}, []string{"query"}),
		SMIParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nvprime_agent_smi_parse_failures_total",
			Help: "Total number of nvidia-smi output lines that failed to parse.",
		}),

		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nvprime_agent_devices",
			Help: "Number of GPU devices seen in the last poll.",
		}),
		DeviceHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nvprime_agent_device_health",
			Help: "Number of devices per health tier in the last poll.",
		}, []string{"health"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nvprime_agent_poll_duration_seconds",
			Help:    "Duration of full device poll cycles in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvprime_agent_polls_total",
			Help: "Total number of device poll cycles.",
		}, []string{"status"}),

		SnapshotBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nvprime_agent_snapshot_build_duration_seconds",
			Help:    "Duration of snapshot build operations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotSendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nvprime_agent_snapshot_send_duration_seconds",
			Help:    "Duration of snapshot send operations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nvprime_agent_snapshot_size_bytes",
			Help:    "Size of snapshots in bytes.",
			Buckets: sizeBuckets,
		}, []string{"type"}),
		SnapshotSendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvprime_agent_snapshot_send_total",
			Help: "Total number of snapshot send attempts.",
		}, []string{"status"}),

		TransportRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nvprime_agent_transport_retries_total",
			Help: "Total number of transport retry attempts.",
		}),

		AgentState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nvprime_agent_state",
			Help: "Current agent state (1 = active, 0 = inactive).",
		}, []string{"state"}),
	}

	// Register all metrics with the custom registry.
	reg.MustRegister(
		m.ProviderQueryDuration,
		m.ProviderQueryErrors,
		m.SMIParseFailures,
		m.Devices,
		m.DeviceHealth,
		m.PollDuration,
		m.PollsTotal,
		m.SnapshotBuildDuration,
		m.SnapshotSendDuration,
		m.SnapshotSizeBytes,
		m.SnapshotSendTotal,
		m.TransportRetries,
		m.AgentState,
	)

	return m
}
