package lcs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the lcs package.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("lcs: invalid option supplied")

	// ErrTableMismatch indicates a table that was not built for the
	// sequences it is used with: wrong dimensions or wrong contents.
	ErrTableMismatch = errors.New("lcs: table does not match sequences")

	// ErrIndexOutOfRange is returned by Table.AtChecked for coordinates
	// outside the table.
	ErrIndexOutOfRange = errors.New("lcs: table index out of range")

	// ErrNotSubsequence indicates a candidate that is not a subsequence
	// of one of the source sequences.
	ErrNotSubsequence = errors.New("lcs: candidate is not a subsequence")

	// ErrNotOptimal indicates a candidate whose length differs from the
	// LCS length of the source sequences.
	ErrNotOptimal = errors.New("lcs: candidate length is not optimal")
)

// Reason classifies why a bounded enumeration stopped.
type Reason int

const (
	// Completed means the work list drained: the result set is complete.
	Completed Reason = iota

	// CountLimitReached means the result set reached MaxResults.
	CountLimitReached

	// TimeLimitReached means the wall-clock budget was exceeded.
	TimeLimitReached

	// StateLimitReached means the explored-state or frontier ceiling was exceeded.
	StateLimitReached

	// Cancelled means the caller's context was cancelled; results are discarded.
	Cancelled
)

// String returns the wire name of the reason.
func (r Reason) String() string {
	switch r {
	case Completed:
		return "completed"
	case CountLimitReached:
		return "countLimitReached"
	case TimeLimitReached:
		return "timeLimitReached"
	case StateLimitReached:
		return "stateLimitReached"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Truncated reports whether a ceiling stopped the search before the
// result set was known to be complete.
func (r Reason) Truncated() bool {
	return r == CountLimitReached || r == TimeLimitReached || r == StateLimitReached
}

// Decision labels a single traversal step recorded by AllWithSteps.
type Decision int

const (
	// DecisionMatch: symbols are equal, forced diagonal step.
	DecisionMatch Decision = iota
	// DecisionUp: only the up neighbour preserves the optimum.
	DecisionUp
	// DecisionLeft: only the left neighbour preserves the optimum.
	DecisionLeft
	// DecisionBoth: both neighbours preserve the optimum; the walk forks.
	DecisionBoth
	// DecisionBase: row or column 0 reached; Suffix holds the finished LCS.
	DecisionBase
)

func (d Decision) String() string {
	switch d {
	case DecisionMatch:
		return "match"
	case DecisionUp:
		return "up"
	case DecisionLeft:
		return "left"
	case DecisionBoth:
		return "both"
	case DecisionBase:
		return "base"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Step is one visited traversal state.
//
// I and J are table coordinates. Suffix is the partial LCS accumulated so
// far, in reading order (for DecisionBase it is the complete LCS).
// A and B are the compared symbols; both are zero for DecisionBase.
type Step struct {
	I, J     int
	Suffix   string
	Decision Decision
	A, B     rune
}

// BoundedStats are the counters of one bounded run.
type BoundedStats struct {
	Found       int           // distinct LCS collected
	Explored    int           // states popped from the work list
	MaxFrontier int           // largest work-list size observed
	Elapsed     time.Duration // wall-clock time of the run
	Reason      Reason        // why the run stopped
}

// BoundedResult is the outcome of Bounded.
//
// LCS is sorted ascending and holds only valid optimal subsequences.
// When Stats.Reason is Completed it is the complete set.
type BoundedResult struct {
	LCS    []string
	Length int
	Stats  BoundedStats
}

// Progress is a "still working" notification emitted during a bounded run.
type Progress struct {
	Found    int
	Explored int
	Frontier int
	Elapsed  time.Duration
	Message  string
}

// Defaults for bounded enumeration.
const (
	DefaultMaxResults    = 50
	DefaultTimeout       = 2 * time.Second
	DefaultMaxFrontier   = 10000
	DefaultProgressEvery = 500
)

// Option configures Bounded via functional arguments.
// Invalid values are recorded and surfaced as ErrOptionViolation when
// Bounded is invoked.
type Option func(*Options)

// Options holds the ceilings and hooks of a bounded run.
//
// A zero ceiling disables that ceiling.
type Options struct {
	// Ctx allows cooperative cancellation.
	Ctx context.Context

	// MaxResults stops the run once this many distinct LCS are known.
	MaxResults int

	// Timeout stops the run once this much wall-clock time has elapsed.
	Timeout time.Duration

	// MaxStates stops the run once this many states have been explored.
	MaxStates int

	// MaxFrontier stops the run once more than this many states are pending.
	MaxFrontier int

	// ProgressEvery is the number of explored states between OnProgress calls.
	ProgressEvery int

	// OnFound is called each time a new distinct LCS is collected, with the
	// running count.
	OnFound func(count int, lcs string)

	// OnProgress receives periodic and start/finish status notifications.
	OnProgress func(p Progress)

	// Now is the clock used for the time ceiling.
	Now func() time.Time

	err error
}

// DefaultOptions returns Options with the defaults used by interactive
// callers:
//   - Ctx:           context.Background()
//   - MaxResults:    50
//   - Timeout:       2s
//   - MaxStates:     0 (unlimited)
//   - MaxFrontier:   10000
//   - ProgressEvery: 500
//   - no-op hooks, time.Now clock
func DefaultOptions() Options {
	return Options{
		Ctx:           context.Background(),
		MaxResults:    DefaultMaxResults,
		Timeout:       DefaultTimeout,
		MaxStates:     0,
		MaxFrontier:   DefaultMaxFrontier,
		ProgressEvery: DefaultProgressEvery,
		OnFound:       func(int, string) {},
		OnProgress:    func(Progress) {},
		Now:           time.Now,
	}
}

// CheckOptions applies opts to the defaults and returns the first
// ErrOptionViolation they record, so that a caller can reject a bad set
// before running anything.
func CheckOptions(opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o.err
}

// WithContext sets a context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithMaxResults caps the number of results.
//
//	n > 0:  stop at n distinct LCS
//	n == 0: no count ceiling
//	n < 0:  ErrOptionViolation
func WithMaxResults(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxResults cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxResults = n
	}
}

// WithTimeout caps wall-clock time. Zero disables the ceiling.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: Timeout cannot be negative (%s)", ErrOptionViolation, d)
			return
		}
		o.Timeout = d
	}
}

// WithMaxStates caps the number of explored states. Zero disables the ceiling.
func WithMaxStates(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxStates cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxStates = n
	}
}

// WithMaxFrontier caps the number of pending states. Zero disables the ceiling.
func WithMaxFrontier(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxFrontier cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxFrontier = n
	}
}

// WithProgressEvery sets how many explored states separate two progress
// notifications. Must be positive.
func WithProgressEvery(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = fmt.Errorf("%w: ProgressEvery must be positive (%d)", ErrOptionViolation, n)
			return
		}
		o.ProgressEvery = n
	}
}

// WithUnbounded disables every ceiling. The run still honours the context.
func WithUnbounded() Option {
	return func(o *Options) {
		o.MaxResults = 0
		o.Timeout = 0
		o.MaxStates = 0
		o.MaxFrontier = 0
	}
}

// WithOnFound registers a callback invoked for each new distinct LCS.
func WithOnFound(fn func(count int, lcs string)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnFound = fn
		}
	}
}

// WithOnProgress registers a callback for progress notifications.
func WithOnProgress(fn func(p Progress)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnProgress = fn
		}
	}
}

// WithClock replaces time.Now for the time ceiling and Elapsed stats.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}
