package state

import (
	"testing"

	"github.com/nvprime/nvprime-agent/pkg/model"
	"github.com/stretchr/testify/assert"
)

// thresholds shared by the tier tests: target 83, slowdown 95,
// shutdown 100, limit 300 W, max limit 350 W.
func thresholds() model.PowerState {
	return model.PowerState{
		PowerLimitW:      300,
		PowerLimitMaxW:   350,
		ThermalTargetC:   83,
		ThermalSlowdownC: 95,
		ThermalShutdownC: 100,
	}
}

func TestInferHealth_Tiers(t *testing.T) {
	tests := []struct {
		name string
		temp uint32
		draw float64
		want model.PowerHealth
	}{
		{"cool and idle", 45, 30, model.HealthOptimal},
		{"just below target", 82, 250, model.HealthOptimal},
		{"at target", 83, 250, model.HealthModerate},
		{"between target and slowdown", 90, 250, model.HealthModerate},
		{"at slowdown", 95, 250, model.HealthThrottling},
		{"at power limit", 70, 300, model.HealthThrottling},
		{"at shutdown", 100, 250, model.HealthCritical},
		{"at max power limit", 70, 350, model.HealthCritical},
		{"shutdown beats slowdown", 100, 300, model.HealthCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := thresholds()
			ps.GPUTempC = tt.temp
			ps.PowerDrawW = tt.draw
			assert.Equal(t, tt.want, InferHealth(ps))
		})
	}
}

func TestInferHealth_WarmButBelowSlowdown(t *testing.T) {
	ps := thresholds()
	ps.GPUTempC = 84
	ps.PowerDrawW = 250
	assert.Equal(t, model.HealthModerate, InferHealth(ps))
	assert.False(t, IsThermalThrottling(ps))
	assert.False(t, IsPowerThrottling(ps))
}

func TestInferHealth_ZeroThresholdDisablesClause(t *testing.T) {
	// Hardware that reports no thresholds is never misclassified by
	// the zero sentinels, whatever the live readings say.
	ps := model.PowerState{GPUTempC: 70, PowerDrawW: 200}
	assert.Equal(t, model.HealthOptimal, InferHealth(ps))
	assert.False(t, IsThermalThrottling(ps))
	assert.False(t, IsPowerThrottling(ps))
}

func TestInferHealth_PartialThresholds(t *testing.T) {
	// Only the target is known: the device can reach Moderate but
	// never Throttling or Critical on the thermal axis.
	ps := model.PowerState{GPUTempC: 99, ThermalTargetC: 83}
	assert.Equal(t, model.HealthModerate, InferHealth(ps))
}

func TestInferHealth_MonotonicInTemperature(t *testing.T) {
	prev := model.HealthOptimal
	for temp := uint32(0); temp <= 110; temp++ {
		ps := thresholds()
		ps.GPUTempC = temp
		got := InferHealth(ps)
		assert.GreaterOrEqual(t, int(got), int(prev), "temp %d", temp)
		prev = got
	}
}

func TestIsThermalThrottling(t *testing.T) {
	ps := thresholds()
	ps.GPUTempC = 95
	assert.True(t, IsThermalThrottling(ps))

	ps.GPUTempC = 94
	assert.False(t, IsThermalThrottling(ps))

	// Shutdown reached with no slowdown threshold reported.
	ps = model.PowerState{GPUTempC: 100, ThermalShutdownC: 100}
	assert.True(t, IsThermalThrottling(ps))
}

func TestIsPowerThrottling(t *testing.T) {
	ps := thresholds()
	ps.PowerDrawW = 300
	assert.True(t, IsPowerThrottling(ps))

	ps.PowerDrawW = 299.9
	assert.False(t, IsPowerThrottling(ps))

	// Max limit reached with no operating limit reported.
	ps = model.PowerState{PowerDrawW: 350, PowerLimitMaxW: 350}
	assert.True(t, IsPowerThrottling(ps))
}

func TestThrottleProbesAreIndependent(t *testing.T) {
	ps := thresholds()
	ps.GPUTempC = 96
	ps.PowerDrawW = 100
	assert.True(t, IsThermalThrottling(ps))
	assert.False(t, IsPowerThrottling(ps))

	ps.GPUTempC = 50
	ps.PowerDrawW = 310
	assert.False(t, IsThermalThrottling(ps))
	assert.True(t, IsPowerThrottling(ps))
}
