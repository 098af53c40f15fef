// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"min maps to zero", 10, 10, 20, 0},
		{"max maps to one", 20, 10, 20, 1},
		{"midpoint", 15, 10, 20, 0.5},
		{"degenerate range", 7, 3, 3, 1},
		{"degenerate range at value", 3, 3, 3, 1},
		{"below range is not clamped", 5, 10, 20, -0.5},
		{"above range is not clamped", 30, 10, 20, 2},
		{"negative range", -5, -10, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.value, tt.min, tt.max); !approxEqual(got, tt.want) {
				t.Errorf("Normalize(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}
