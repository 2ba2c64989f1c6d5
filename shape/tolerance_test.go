package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		gridUnit float64
		expected float64
	}{
		{"on grid", 5.08, 2.54, 5.08},
		{"just below", 5.07, 2.54, 5.08},
		{"just above", 5.09, 2.54, 5.08},
		{"zero", 0, 2.54, 0},
		{"negative", -2.55, 2.54, -2.54},
		{"half rounds to even multiple", 1.27, 2.54, 0},
		{"one and a half rounds to even multiple", 3.81, 2.54, 5.08},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SnapToGrid(tt.value, tt.gridUnit), 1e-9)
		})
	}
}

func TestSnapToGridIdempotent(t *testing.T) {
	for _, v := range []float64{0, 1.3, 2.54, 5.07, -3.9, 100.001} {
		snapped := SnapToGrid(v, 2.54)
		assert.InDelta(t, snapped, SnapToGrid(snapped, 2.54), 1e-9, "value %v", v)
	}
}

func TestCheckGridAlignment(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		gridUnit  float64
		tolerance float64
		aligned   bool
		deviation float64
	}{
		{"exact", 5.08, 2.54, 0.001, true, 0},
		{"within tolerance", 5.0805, 2.54, 0.001, true, 0.0005},
		{"off grid", 5.2, 2.54, 0.001, false, 0.12},
		{"halfway", 1.27, 2.54, 0.001, false, 1.27},
		{"negative value", -5.08, 2.54, 0.001, true, 0},
		{"negative off grid", -5.2, 2.54, 0.001, false, 0.12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aligned, dev := CheckGridAlignment(tt.value, tt.gridUnit, tt.tolerance)
			assert.Equal(t, tt.aligned, aligned)
			assert.InDelta(t, tt.deviation, dev, 1e-9)
		})
	}
}

func TestCheckGridAlignmentDeviationBounds(t *testing.T) {
	grid := 2.54
	for _, v := range []float64{-10.5, -2.55, -0.3, 0, 0.7, 1.27, 3.9, 12.701} {
		_, dev := CheckGridAlignment(v, grid, 0.001)
		assert.GreaterOrEqual(t, dev, 0.0, "value %v", v)
		assert.LessOrEqual(t, dev, grid/2+1e-9, "value %v", v)
	}
}

func TestCheckValueMatch(t *testing.T) {
	tests := []struct {
		name      string
		actual    float64
		expected  float64
		status    Status
		deviation float64
	}{
		{"exact", 1.27, 1.27, StatusOK, 0},
		{"small deviation is fixable", 1.28, 1.27, StatusFixable, 0.01},
		{"large deviation is error", 1.5, 1.27, StatusError, 0.23},
		{"within tolerance", 1.2705, 1.27, StatusOK, 0.0005},
		{"expected zero uses absolute deviation", 0.05, 0, StatusFixable, 0.05},
		{"expected zero error", 0.2, 0, StatusError, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, dev := CheckValueMatch(tt.actual, tt.expected, DefaultTolerance, DefaultErrorThreshold)
			assert.Equal(t, tt.status, status)
			assert.InDelta(t, tt.deviation, dev, 1e-9)
		})
	}
}
