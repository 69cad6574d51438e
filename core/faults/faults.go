// Package faults defines the error taxonomy shared by the scheduling engine.
// Each failure class is a sentinel that concrete errors wrap, so callers can
// route on errors.Is without depending on message text.
package faults

import (
	"errors"
	"fmt"
)

// ErrValidation covers malformed requests: mismatched series lengths,
// negative configuration values, invalid aggregation policies or date ranges.
var ErrValidation = errors.New("validation error")

// ErrData covers unusable input data: a single-row series with undefined
// granularity, or a merge that leaves no overlapping rows.
var ErrData = errors.New("data error")

// ErrOptimization covers solver failures: infeasible or unbounded models and
// time limits reached without closing the gap.
var ErrOptimization = errors.New("optimization error")

// ErrCoverage is returned when the reconciled data does not span the
// requested date range exactly.
var ErrCoverage = errors.New("coverage error")

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Dataf wraps ErrData with a formatted message.
func Dataf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrData)...)
}

// Optimizationf wraps ErrOptimization with a formatted message.
func Optimizationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOptimization)...)
}

// Coveragef wraps ErrCoverage with a formatted message.
func Coveragef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrCoverage)...)
}
