package smi

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// Field values nvidia-smi emits when a sensor or query is not available
// on the device or driver. Treated as absent, never as data.
func isBlank(field string) bool {
	switch field {
	case "", "N/A", "[N/A]", "[Not Supported]", "[Unknown Error]":
		return true
	}
	return false
}

// csvLines splits raw output into non-empty trimmed lines.
func csvLines(out []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitCSV splits one CSV line into trimmed
// fields. nvidia-smi never quotes fields, so a plain split is safe.
func splitCSV(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseU32(field string) *uint32 {
	if isBlank(field) {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v < 0 {
		return nil
	}
	u := uint32(v)
	return &u
}

func parseU64(field string) *uint64 {
	if isBlank(field) {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v < 0 {
		return nil
	}
	u := uint64(v)
	return &u
}

func parseF64(field string) *float64 {
	if isBlank(field) {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(field string) *int {
	if isBlank(field) {
		return nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return nil
	}
	return &v
}

// parsePState parses a performance state like "P0" or "P8".
func parsePState(field string) *uint32 {
	if isBlank(field) {
		return nil
	}
	s := strings.TrimPrefix(strings.ToUpper(field), "P")
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	u := uint32(v)
	return &u
}

// parseComputeCap parses a compute capability like "8.9" into its
// major/minor pair. Returns zeros when unparseable.
func parseComputeCap(field string) (int, int) {
	if isBlank(field) {
		return 0, 0
	}
	majorStr, minorStr, ok := strings.Cut(field, ".")
	if !ok {
		return 0, 0
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return 0, 0
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return major, 0
	}
	return major, minor
}

// parseDriverMajor extracts the major component of a driver version
// like "535.129.03". Returns 0 when unparseable.
func parseDriverMajor(field string) int {
	if isBlank(field) {
		return 0
	}
	majorStr, _, _ := strings.Cut(field, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return 0
	}
	return major
}

// thermalThresholds holds values parsed from the -q TEMPERATURE report.
type thermalThresholds struct {
	target   *int
	slowdown *int
	shutdown *int
	hotspot  *int
}

// Report line prefixes in the -q -d TEMPERATURE output.
const (
	lineShutdownTemp = "GPU Shutdown Temp"
	lineSlowdownTemp = "GPU Slowdown Temp"
	lineMaxOpTemp    = "GPU Max Operating Temp"
	lineTargetTemp   = "GPU Target Temperature"
	lineHotspotTemp  = "GPU T.Limit Temp"
)

// parseThermalReport extracts thermal thresholds from the human-readable
// -q -d TEMPERATURE report. Lines look like
// "    GPU Shutdown Temp             : 98 C".
func parseThermalReport(report []byte) thermalThresholds {
	var th thermalThresholds
	scanner := bufio.NewScanner(bytes.NewReader(report))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		celsius := parseCelsius(value)
		if celsius == nil {
			continue
		}
		switch key {
		case lineShutdownTemp:
			th.shutdown = celsius
		case lineSlowdownTemp:
			th.slowdown = celsius
		case lineTargetTemp:
			th.target = celsius
		case lineMaxOpTemp:
			// Target temperature is preferred; max operating temp is
			// the fallback on drivers that do not report a target.
			if th.target == nil {
				th.target = celsius
			}
		case lineHotspotTemp:
			th.hotspot = celsius
		}
	}
	return th
}

// parseCelsius parses a report value like " 98 C".
func parseCelsius(value string) *int {
	fields := strings.Fields(value)
	if len(fields) == 0 || isBlank(fields[0]) {
		return nil
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &v
}
