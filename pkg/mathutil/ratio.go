// Package mathutil provides common mathematical utility functions.
//
// Every ratio helper here is guarded: a zero denominator yields 0 (or false
// for the ok-returning variants) rather than Inf or NaN.
package mathutil

import "github.com/iwvelando/sales-analytics/pkg/constants"

// SafeDivide returns numerator/denominator, or 0 when the denominator is 0.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// PercentChange returns (current/previous - 1) * 100. The second return value
// is false when previous is 0 and the change is undefined.
func PercentChange(previous, current float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current/previous - 1) * constants.PercentageMultiplier, true
}

// PercentDiff is PercentChange with an undefined change reported as 0.
func PercentDiff(previous, current float64) float64 {
	diff, _ := PercentChange(previous, current)
	return diff
}

// Normalize scales value into [0,1] against max; max of 0 gives 0.
func Normalize(value, max float64) float64 {
	return SafeDivide(value, max)
}
