package endpoint

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied by DefaultLimits.
const (
	DefaultMaxPageSize                = 10000
	DefaultMaxIterationDuration       = 100 * time.Millisecond
	DefaultMinPageSizeDespiteDuration = 10
)

// Limits are the process-wide paging bounds, fixed at startup.
type Limits struct {
	// MaxPageSize is the upper clamp on any requested page size.
	MaxPageSize int
	// DefaultPageSize applies when a request names no page size.
	DefaultPageSize int
	// MaxIterationDuration is the soft wall-clock budget of one page.
	MaxIterationDuration time.Duration
	// MinPageSizeDespiteDuration items are returned even when the
	// budget runs out earlier.
	MinPageSizeDespiteDuration int
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxPageSize:                DefaultMaxPageSize,
		DefaultPageSize:            DefaultMaxPageSize,
		MaxIterationDuration:       DefaultMaxIterationDuration,
		MinPageSizeDespiteDuration: DefaultMinPageSizeDespiteDuration,
	}
}

// Validate checks that the limits are self-consistent.
func (l Limits) Validate() error {
	var errs []error
	if l.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("max page size must be at least 1, got %d", l.MaxPageSize))
	}
	if l.DefaultPageSize < 1 || l.DefaultPageSize > l.MaxPageSize {
		errs = append(errs, fmt.Errorf("default page size must be between 1 and %d, got %d", l.MaxPageSize, l.DefaultPageSize))
	}
	if l.MaxIterationDuration <= 0 {
		errs = append(errs, fmt.Errorf("max iteration duration must be positive, got %s", l.MaxIterationDuration))
	}
	if l.MinPageSizeDespiteDuration < 1 {
		errs = append(errs, fmt.Errorf("min page size despite duration must be at least 1, got %d", l.MinPageSizeDespiteDuration))
	}
	return errors.Join(errs...)
}
