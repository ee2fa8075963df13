package snapshot

import "github.com/nvprime/nvprime-agent/pkg/model"

// ComputeSummary calculates device counts and totals from a snapshot.
func ComputeSummary(snapshot *model.NodeSnapshot) model.NodeSummary {
	s := model.NodeSummary{
		DeviceCount: len(snapshot.Devices),
	}

	for i := range snapshot.Devices {
		d := &snapshot.Devices[i]

		switch d.Health {
		case model.HealthOptimal:
			s.OptimalCount++
		case model.HealthModerate:
			s.ModerateCount++
		case model.HealthThrottling:
			s.ThrottlingCount++
		case model.HealthCritical:
			s.CriticalCount++
		}

		if d.ThermalThrottling {
			s.ThermalThrottlingCount++
		}
		if d.PowerThrottling {
			s.PowerThrottlingCount++
		}

		s.TotalVRAMMB += d.VRAMTotalMB
		s.UsedVRAMMB += d.VRAMUsedMB
		s.TotalPowerDrawW += d.Power.PowerDrawW

		if d.Power.GPUTempC > s.MaxTemperatureC {
			s.MaxTemperatureC = d.Power.GPUTempC
		}
		if d.Power.PowerDrawW > s.MaxPowerDrawW {
			s.MaxPowerDrawW = d.Power.PowerDrawW
		}
	}

	return s
}
