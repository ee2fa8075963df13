package policy

import (
	"testing"

	"github.com/nvprime/nvprime-agent/pkg/model"
	"github.com/stretchr/testify/assert"
)

var profileOrder = []model.PerformanceProfile{
	model.ProfileMaximum,
	model.ProfileBalanced,
	model.ProfileEfficient,
	model.ProfileQuiet,
}

var efficiencyOrder = []model.EfficiencyMode{
	model.EffPerformance,
	model.EffBalanced,
	model.EffQuiet,
	model.EffEfficiency,
}

func TestProfileTargets_KnownValues(t *testing.T) {
	assert.Equal(t, uint32(100), ProfileGPUClockPercent(model.ProfileMaximum))
	assert.Equal(t, uint32(85), ProfileGPUClockPercent(model.ProfileBalanced))
	assert.Equal(t, uint32(70), ProfileGPUClockPercent(model.ProfileEfficient))
	assert.Equal(t, uint32(50), ProfileGPUClockPercent(model.ProfileQuiet))

	assert.Equal(t, uint32(90), ProfileMemClockPercent(model.ProfileBalanced))
	assert.Equal(t, uint32(90), ProfilePowerLimitPercent(model.ProfileBalanced))
}

func TestProfileTargets_MonotonicAndBounded(t *testing.T) {
	lookups := []func(model.PerformanceProfile) uint32{
		ProfileGPUClockPercent,
		ProfileMemClockPercent,
		ProfilePowerLimitPercent,
	}
	for _, lookup := range lookups {
		prev := uint32(101)
		for _, p := range profileOrder {
			v := lookup(p)
			assert.LessOrEqual(t, v, uint32(100), "profile %v", p)
			assert.Greater(t, v, uint32(0), "profile %v", p)
			assert.LessOrEqual(t, v, prev, "profile %v not monotonic", p)
			prev = v
		}
	}
}

func TestEfficiencyTargets_KnownValues(t *testing.T) {
	assert.Equal(t, uint32(100), EfficiencyPowerPercent(model.EffPerformance))
	assert.Equal(t, uint32(60), EfficiencyPowerPercent(model.EffEfficiency))
	assert.Equal(t, uint32(87), EfficiencyThermalTarget(model.EffPerformance))
	assert.Equal(t, uint32(72), EfficiencyThermalTarget(model.EffEfficiency))
}

func TestEfficiencyTargets_Monotonic(t *testing.T) {
	prevPower := uint32(101)
	prevTemp := uint32(200)
	for _, m := range efficiencyOrder {
		power := EfficiencyPowerPercent(m)
		temp := EfficiencyThermalTarget(m)
		assert.LessOrEqual(t, power, uint32(100), "mode %v", m)
		assert.LessOrEqual(t, power, prevPower, "mode %v power not monotonic", m)
		assert.LessOrEqual(t, temp, prevTemp, "mode %v temp not monotonic", m)
		prevPower = power
		prevTemp = temp
	}
}

func TestLookup_OutOfRangeFallsBackToBalanced(t *testing.T) {
	bogusProfile := model.PerformanceProfile(99)
	assert.Equal(t, ProfileGPUClockPercent(model.ProfileBalanced), ProfileGPUClockPercent(bogusProfile))
	assert.Equal(t, ProfilePowerLimitPercent(model.ProfileBalanced), ProfilePowerLimitPercent(bogusProfile))

	bogusMode := model.EfficiencyMode(99)
	assert.Equal(t, EfficiencyPowerPercent(model.EffBalanced), EfficiencyPowerPercent(bogusMode))
	assert.Equal(t, EfficiencyThermalTarget(model.EffBalanced), EfficiencyThermalTarget(bogusMode))
}

func TestLookup_IsStable(t *testing.T) {
	// Same input, same output, no shared state drift.
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint32(70), ProfileGPUClockPercent(model.ProfileEfficient))
		assert.Equal(t, uint32(78), EfficiencyThermalTarget(model.EffQuiet))
	}
}
