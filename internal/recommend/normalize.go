// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

// Normalize scales value linearly so that minVal maps to 0 and maxVal to 1.
// A degenerate range (maxVal == minVal) returns 1 instead of dividing by zero.
// Values outside the range are not clamped.
func Normalize(value, minVal, maxVal float64) float64 {
	if maxVal == minVal {
		return 1
	}
	return (value - minVal) / (maxVal - minVal)
}
