package memory

import "time"

// Range classifies records by age for List filtering.
type Range string

const (
	// RangeWeek keeps records created within the last 7 days.
	RangeWeek Range = "week"

	// RangeMonth keeps records created within the last 30 days.
	RangeMonth Range = "month"

	// RangeYear keeps records created within the last 365 days.
	RangeYear Range = "year"

	// RangeAll applies no date filter.
	RangeAll Range = "all"
)

// window returns the age limit the range admits.
// bounded is false for RangeAll (and unknown ranges).
func (r Range) window() (d time.Duration, bounded bool) {
	switch r {
	case RangeWeek:
		return 7 * 24 * time.Hour, true
	case RangeMonth:
		return 30 * 24 * time.Hour, true
	case RangeYear:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// ListOption is a function type for configuring List operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type ListOption func(*ListOptions)

// ListOptions contains configuration options for List operations.
type ListOptions struct {
	// Range keeps only records created within the window.
	// Default: RangeAll.
	Range Range

	// IncludeArchived indicates whether archived records are listed.
	// Default: false.
	IncludeArchived bool
}

// WithRange restricts List to records created within r.
//
// Example:
//
//	recent := store.List(memory.WithRange(memory.RangeMonth))
func WithRange(r Range) ListOption {
	return func(opts *ListOptions) {
		opts.Range = r
	}
}

// WithArchived sets whether archived records are included in List results.
//
// Example:
//
//	everything := store.List(memory.WithArchived(true))
func WithArchived(include bool) ListOption {
	return func(opts *ListOptions) {
		opts.IncludeArchived = include
	}
}

// applyListOptions applies List options to create ListOptions.
func applyListOptions(opts []ListOption) *ListOptions {
	options := &ListOptions{
		Range: RangeAll,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// StoreOption configures a Store at construction time.
type StoreOption func(*Store)

// WithClock replaces the store's time source. Intended for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDSource replaces the store's identifier source. Intended for tests.
func WithIDSource(newID func() string) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}
