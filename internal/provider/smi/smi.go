// Package smi implements the provider contract on top of the nvidia-smi
// command line tool. Reads use --query-gpu CSV output plus the
// -q -d TEMPERATURE report for thermal thresholds; fields the tool
// reports as "[N/A]" or "[Not Supported]" come back nil and are turned
// into sentinels downstream.
package smi

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/internal/provider"
)

const (
	enumFields     = "index,pci.bus_id"
	identityFields = "name,uuid,pci.bus_id,compute_cap,driver_version,memory.total,memory.used,pcie.link.gen.current,pcie.link.width.current"
	clockFields    = "clocks.gr,clocks.mem,clocks.sm,clocks.video,clocks.max.gr,clocks.max.mem,clocks.default_applications.gr,clocks.default_applications.mem,pstate,utilization.gpu,utilization.memory"
	powerFields    = "power.draw,power.limit,power.default_limit,power.min_limit,power.max_limit,temperature.gpu,temperature.memory,fan.speed"
	flagFields     = "power.management,encoder.stats.sessionCount,clocks.gr,fan.speed,driver_version"
)

// Runner executes the nvidia-smi binary. Abstracted for testability.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct {
	binary  string
	timeout time.Duration
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, r.binary, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("smi: running %s %s: %v: %w", r.binary, strings.Join(args, " "), err, provider.ErrUnavailable)
	}
	return out, nil
}

// Provider implements provider.Provider via nvidia-smi.
type Provider struct {
	runner  Runner
	metrics *observability.Metrics
}

// New creates a Provider executing the given nvidia-smi binary.
// Each invocation is bounded by timeout when it is positive.
// metrics may be nil.
func New(binary string, timeout time.Duration, metrics *observability.Metrics) *Provider {
	return &Provider{runner: &execRunner{binary: binary, timeout: timeout}, metrics: metrics}
}

// NewWithRunner creates a Provider with a custom Runner (tests).
func NewWithRunner(r Runner, metrics *observability.Metrics) *Provider {
	return &Provider{runner: r, metrics: metrics}
}

// Devices enumerates installed devices in index order.
func (p *Provider) Devices(ctx context.Context) ([]provider.DeviceHandle, error) {
	out, err := p.query(ctx, enumFields, -1)
	if err != nil {
		return nil, err
	}

	var handles []provider.DeviceHandle
	for _, line := range csvLines(out) {
		fields := splitCSV(line)
		if len(fields) != 2 {
			p.parseFailure()
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			p.parseFailure()
			continue
		}
		handles = append(handles, provider.DeviceHandle{Index: idx, BusID: fields[1]})
	}
	return handles, nil
}

// Identity reads the stable identity fields for a device.
func (p *Provider) Identity(ctx context.Context, h provider.DeviceHandle) (provider.Identity, error) {
	out, err := p.query(ctx, identityFields, h.Index)
	if err != nil {
		return provider.Identity{}, err
	}
	fields, err := p.singleLine(out, 9)
	if err != nil {
		return provider.Identity{}, err
	}

	major, minor := parseComputeCap(fields[3])
	return provider.Identity{
		Name:          fields[0],
		UUID:          fields[1],
		BusID:         fields[2],
		ComputeMajor:  major,
		ComputeMinor:  minor,
		DriverVersion: fields[4],
		VRAMTotalMB:   parseU64(fields[5]),
		VRAMUsedMB:    parseU64(fields[6]),
		PCIeGen:       parseInt(fields[7]),
		PCIeWidth:     parseInt(fields[8]),
	}, nil
}

// Clocks reads the current clock/pstate/utilization values.
func (p *Provider) Clocks(ctx context.Context, h provider.DeviceHandle) (provider.ClockReadings, error) {
	out, err := p.query(ctx, clockFields, h.Index)
	if err != nil {
		return provider.ClockReadings{}, err
	}
	fields, err := p.singleLine(out, 11)
	if err != nil {
		return provider.ClockReadings{}, err
	}

	return provider.ClockReadings{
		GPUClockMHz:        parseU32(fields[0]),
		MemClockMHz:        parseU32(fields[1]),
		SMClockMHz:         parseU32(fields[2]),
		VideoClockMHz:      parseU32(fields[3]),
		MaxGPUClockMHz:     parseU32(fields[4]),
		MaxMemClockMHz:     parseU32(fields[5]),
		DefaultGPUClockMHz: parseU32(fields[6]),
		DefaultMemClockMHz: parseU32(fields[7]),
		PState:             parsePState(fields[8]),
		GPUUtilization:     parseF64(fields[9]),
		MemUtilization:     parseF64(fields[10]),
	}, nil
}

// PowerThermal reads power/temperature/fan values. Thermal thresholds
// are not part of the --query-gpu surface, so a second -q TEMPERATURE
// report is parsed for them; its failure leaves the thresholds absent
// rather than failing the read.
func (p *Provider) PowerThermal(ctx context.Context, h provider.DeviceHandle) (provider.PowerThermalReadings, error) {
	out, err := p.query(ctx, powerFields, h.Index)
	if err != nil {
		return provider.PowerThermalReadings{}, err
	}
	fields, err := p.singleLine(out, 8)
	if err != nil {
		return provider.PowerThermalReadings{}, err
	}

	readings := provider.PowerThermalReadings{
		PowerDrawW:         parseF64(fields[0]),
		PowerLimitW:        parseF64(fields[1]),
		PowerLimitDefaultW: parseF64(fields[2]),
		PowerLimitMinW:     parseF64(fields[3]),
		PowerLimitMaxW:     parseF64(fields[4]),
		GPUTempC:           parseInt(fields[5]),
		MemoryTempC:        parseInt(fields[6]),
		FanSpeedPercent:    parseInt(fields[7]),
	}

	if report, err := p.runner.Run(ctx, "-q", "-d", "TEMPERATURE", "-i", strconv.Itoa(h.Index)); err == nil {
		th := parseThermalReport(report)
		readings.ThermalTargetC = th.target
		readings.ThermalSlowdownC = th.slowdown
		readings.ThermalShutdownC = th.shutdown
		readings.HotspotTempC = th.hotspot
	}

	return readings, nil
}

// FeatureFlags reads the driver-reported capability bits. The SMI
// surface has no direct DLSS/Reflex query; those bits stand on a
// driver-version floor, and the resolver still gates every bit by
// architecture generation.
func (p *Provider) FeatureFlags(ctx context.Context, h provider.DeviceHandle) (provider.FeatureFlags, error) {
	out, err := p.query(ctx, flagFields, h.Index)
	if err != nil {
		return provider.FeatureFlags{}, err
	}
	fields, err := p.singleLine(out, 5)
	if err != nil {
		return provider.FeatureFlags{}, err
	}

	driverMajor := parseDriverMajor(fields[4])
	return provider.FeatureFlags{
		PowerManagement: strings.EqualFold(fields[0], "Enabled") || strings.EqualFold(fields[0], "Supported"),
		NVENC:           parseInt(fields[1]) != nil,
		ClockControl:    parseU32(fields[2]) != nil,
		FanControl:      parseInt(fields[3]) != nil,
		RTX:             driverMajor >= 418,
		DLSS:            driverMajor >= 445,
		Reflex:          driverMajor >= 456,
		DLSS3:           driverMajor >= 520,
	}, nil
}

// SetPowerLimit sets the device power limit. nvidia-smi takes whole
// watts; the milliwatt value is rounded to the nearest watt.
func (p *Provider) SetPowerLimit(ctx context.Context, h provider.DeviceHandle, limitMilliwatts uint32) error {
	watts := (limitMilliwatts + 500) / 1000
	if watts == 0 {
		return fmt.Errorf("smi: power limit %d mW rounds to 0 W", limitMilliwatts)
	}
	out, err := p.runner.Run(ctx, "-i", strconv.Itoa(h.Index), "-pl", strconv.FormatUint(uint64(watts), 10))
	if isPermissionDenied(string(out)) {
		return fmt.Errorf("smi: setting power limit on device %d: %w", h.Index, provider.ErrPermissionDenied)
	}
	if err != nil {
		return err
	}
	return nil
}

func (p *Provider) query(ctx context.Context, fields string, index int) ([]byte, error) {
	args := []string{"--query-gpu=" + fields, "--format=csv,noheader,nounits"}
	if index >= 0 {
		args = append(args, "-i", strconv.Itoa(index))
	}
	return p.runner.Run(ctx, args...)
}

// singleLine parses a one-device query result and validates the field count.
func (p *Provider) singleLine(out []byte, want int) ([]string, error) {
	lines := csvLines(out)
	if len(lines) == 0 {
		p.parseFailure()
		return nil, fmt.Errorf("smi: empty query result: %w", provider.ErrUnavailable)
	}
	fields := splitCSV(lines[0])
	if len(fields) != want {
		p.parseFailure()
		return nil, fmt.Errorf("smi: expected %d fields, got %d: %w", want, len(fields), provider.ErrUnavailable)
	}
	return fields, nil
}

func (p *Provider) parseFailure() {
	if p.metrics != nil {
		p.metrics.SMIParseFailures.Inc()
	}
}

func isPermissionDenied(out string) bool {
	return strings.Contains(out, "Insufficient Permissions") ||
		strings.Contains(out, "requires root")
}
