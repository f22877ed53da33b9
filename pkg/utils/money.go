package utils

import "math"

// Round2 rounds a monetary amount to 2 decimal places. Every arithmetic
// step in booking pricing goes through this, not just the final result;
// changing that would shift cent-level outcomes for existing data.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
