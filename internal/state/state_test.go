package state

import (
	"math"
	"testing"

	"github.com/nvprime/nvprime-agent/internal/provider"
	"github.com/nvprime/nvprime-agent/pkg/model"
	"github.com/stretchr/testify/assert"
)

func u32p(v uint32) *uint32   { return &v }
func intp(v int) *int         { return &v }
func f64p(v float64) *float64 { return &v }
func strp(v string) *string   { return &v }

func TestBuildCoreState_FullReadings(t *testing.T) {
	raw := provider.ClockReadings{
		GPUClockMHz:    u32p(1800),
		MemClockMHz:    u32p(7000),
		SMClockMHz:     u32p(1800),
		VideoClockMHz:  u32p(1530),
		PState:         u32p(2),
		GPUUtilization: f64p(67.4),
		MemUtilization: f64p(33.6),
	}
	got := BuildCoreState(raw)
	assert.Equal(t, model.CoreState{
		GPUClockMHz:    1800,
		MemClockMHz:    7000,
		SMClockMHz:     1800,
		VideoClockMHz:  1530,
		PState:         2,
		GPUUtilization: 67,
		MemUtilization: 34,
	}, got)
}

func TestBuildCoreState_AbsentReadingsAreZero(t *testing.T) {
	got := BuildCoreState(provider.ClockReadings{})
	assert.Equal(t, model.CoreState{}, got)
}

func TestBuildCoreState_UtilizationClamped(t *testing.T) {
	raw := provider.ClockReadings{
		GPUUtilization: f64p(140),
		MemUtilization: f64p(-5),
	}
	got := BuildCoreState(raw)
	assert.Equal(t, uint32(100), got.GPUUtilization)
	assert.Equal(t, uint32(0), got.MemUtilization)
}

func TestBuildCoreState_NaNUtilization(t *testing.T) {
	raw := provider.ClockReadings{GPUUtilization: f64p(math.NaN())}
	assert.Equal(t, uint32(0), BuildCoreState(raw).GPUUtilization)
}

func TestBuildClockLimits_Envelope(t *testing.T) {
	raw := provider.ClockReadings{
		MinGPUClockMHz:     u32p(210),
		MaxGPUClockMHz:     u32p(2100),
		DefaultGPUClockMHz: u32p(1800),
		MinMemClockMHz:     u32p(405),
		MaxMemClockMHz:     u32p(7001),
		DefaultMemClockMHz: u32p(7001),
	}
	got := BuildClockLimits(raw)
	assert.Equal(t, model.ClockLimits{
		MinGPUMHz:     210,
		MaxGPUMHz:     2100,
		DefaultGPUMHz: 1800,
		MinMemMHz:     405,
		MaxMemMHz:     7001,
		DefaultMemMHz: 7001,
	}, got)
}

func TestBuildClockLimits_DefaultOutsideEnvelopeClamped(t *testing.T) {
	raw := provider.ClockReadings{
		MinGPUClockMHz:     u32p(300),
		MaxGPUClockMHz:     u32p(2000),
		DefaultGPUClockMHz: u32p(2500),
		MinMemClockMHz:     u32p(400),
		MaxMemClockMHz:     u32p(7000),
		DefaultMemClockMHz: u32p(100),
	}
	got := BuildClockLimits(raw)
	assert.Equal(t, uint32(2000), got.DefaultGPUMHz)
	assert.Equal(t, uint32(400), got.DefaultMemMHz)
}

func TestBuildClockLimits_MissingDefaultFallsBackToMax(t *testing.T) {
	raw := provider.ClockReadings{
		MinGPUClockMHz: u32p(300),
		MaxGPUClockMHz: u32p(2000),
	}
	got := BuildClockLimits(raw)
	assert.Equal(t, uint32(2000), got.DefaultGPUMHz)
}

func TestBuildClockLimits_MinAboveMaxCollapses(t *testing.T) {
	raw := provider.ClockReadings{
		MinGPUClockMHz: u32p(2500),
		MaxGPUClockMHz: u32p(2000),
	}
	got := BuildClockLimits(raw)
	assert.Equal(t, uint32(2000), got.MinGPUMHz)
	assert.Equal(t, uint32(2000), got.MaxGPUMHz)
}

func TestBuildPowerState_FullReadings(t *testing.T) {
	raw := provider.PowerThermalReadings{
		PowerDrawW:         f64p(250.3),
		PowerLimitW:        f64p(300),
		PowerLimitDefaultW: f64p(300),
		PowerLimitMinW:     f64p(100),
		PowerLimitMaxW:     f64p(350),
		GPUTempC:           intp(72),
		MemoryTempC:        intp(80),
		HotspotTempC:       intp(85),
		ThermalTargetC:     intp(83),
		ThermalSlowdownC:   intp(95),
		ThermalShutdownC:   intp(100),
		FanSpeedPercent:    intp(45),
		FanSpeedRPM:        intp(1600),
		FanTargetPercent:   intp(50),
		FanMode:            strp("manual"),
	}
	got := BuildPowerState(raw)
	assert.InDelta(t, 250.3, got.PowerDrawW, 0.001)
	assert.Equal(t, uint32(72), got.GPUTempC)
	assert.Equal(t, uint32(83), got.ThermalTargetC)
	assert.Equal(t, uint32(45), got.FanSpeedPercent)
	assert.Equal(t, uint32(1600), got.FanSpeedRPM)
	assert.Equal(t, model.FanManual, got.FanMode)
}

func TestBuildPowerState_AbsentReadingsAreSentinels(t *testing.T) {
	got := BuildPowerState(provider.PowerThermalReadings{})
	assert.Zero(t, got.PowerDrawW)
	assert.Zero(t, got.GPUTempC)
	assert.Zero(t, got.ThermalSlowdownC)
	assert.Zero(t, got.FanSpeedPercent)
	assert.Equal(t, model.FanAuto, got.FanMode)
}

func TestBuildPowerState_NegativeTempIsAbsent(t *testing.T) {
	raw := provider.PowerThermalReadings{GPUTempC: intp(-1)}
	assert.Zero(t, BuildPowerState(raw).GPUTempC)
}

func TestBuildPowerState_FanPercentClamped(t *testing.T) {
	raw := provider.PowerThermalReadings{
		FanSpeedPercent:  intp(130),
		FanTargetPercent: intp(-3),
	}
	got := BuildPowerState(raw)
	assert.Equal(t, uint32(100), got.FanSpeedPercent)
	assert.Equal(t, uint32(0), got.FanTargetPercent)
}

func TestBuildPowerState_FanModes(t *testing.T) {
	tests := []struct {
		raw  *string
		want model.FanMode
	}{
		{nil, model.FanAuto},
		{strp("auto"), model.FanAuto},
		{strp("manual"), model.FanManual},
		{strp("curve"), model.FanCurve},
		{strp("zero_rpm"), model.FanZeroRPM},
		{strp("bogus"), model.FanAuto},
	}
	for _, tt := range tests {
		got := BuildPowerState(provider.PowerThermalReadings{FanMode: tt.raw})
		assert.Equal(t, tt.want, got.FanMode)
	}
}

func TestBuildPowerState_NonFiniteDrawIsZero(t *testing.T) {
	raw := provider.PowerThermalReadings{
		PowerDrawW:  f64p(math.Inf(1)),
		PowerLimitW: f64p(math.NaN()),
	}
	got := BuildPowerState(raw)
	assert.Zero(t, got.PowerDrawW)
	assert.Zero(t, got.PowerLimitW)
}
