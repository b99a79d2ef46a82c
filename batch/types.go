package batch

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lcsall/lcs"
)

// Sentinel errors for the batch format.
var (
	// ErrEmptyInput is returned when the input has no header line.
	ErrEmptyInput = errors.New("batch: input must contain at least the dataset count")

	// ErrBadCount is returned when the header is not an integer.
	ErrBadCount = errors.New("batch: dataset count is not a number")

	// ErrCountOutOfRange is returned when the header is outside [1, MaxDatasets].
	ErrCountOutOfRange = errors.New("batch: dataset count out of range")

	// ErrIncomplete is returned when fewer than 1+2·D lines are present.
	ErrIncomplete = errors.New("batch: incomplete input")

	// ErrEmptySequence is returned for a blank sequence line.
	ErrEmptySequence = errors.New("batch: empty sequences are not allowed")

	// ErrTooLong is returned for a sequence longer than MaxLength symbols.
	ErrTooLong = errors.New("batch: sequence too long")

	// ErrBadSymbol is returned for a symbol outside the allowed alphabet.
	ErrBadSymbol = errors.New("batch: symbol not allowed")

	// ErrNoCommonSymbols is returned, when WithRejectEmpty is set, for a
	// dataset whose LCS is the empty string.
	ErrNoCommonSymbols = errors.New("batch: sequences have no common symbol")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("batch: invalid option supplied")
)

// DatasetError reports a failure confined to one dataset.
// Index is 1-based, as datasets are numbered in messages.
type DatasetError struct {
	Index int
	Err   error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %d: %v", e.Index, e.Err)
}

func (e *DatasetError) Unwrap() error { return e.Err }

// Limits bound what Parse accepts.
type Limits struct {
	// MaxDatasets is the largest accepted D.
	MaxDatasets int `yaml:"max_datasets"`

	// MaxLength is the largest accepted sequence length, in symbols.
	MaxLength int `yaml:"max_length"`

	// Symbols lists the allowed symbols. Empty allows any symbol.
	Symbols string `yaml:"symbols"`
}

// DefaultLimits returns the limits of the reference format:
// at most 10 datasets, sequences of 1–80 lowercase letters.
func DefaultLimits() Limits {
	return Limits{
		MaxDatasets: 10,
		MaxLength:   80,
		Symbols:     "abcdefghijklmnopqrstuvwxyz",
	}
}

// Dataset is one validated pair of sequences.
type Dataset struct {
	Index int // 1-based
	A, B  string
}

// Result is the computed LCS set of one dataset.
type Result struct {
	Dataset
	LCS    []string
	Length int
	Reason lcs.Reason
}

// Option configures Run and Process.
type Option func(*Options)

// Options holds the batch processing policy.
type Options struct {
	Limits      Limits
	Parallelism int
	RejectEmpty bool

	// Bounded, when non-nil, switches from exhaustive to bounded
	// enumeration with these options.
	Bounded []lcs.Option

	err error
}

// DefaultOptions returns exhaustive enumeration, DefaultLimits and one
// dataset at a time.
func DefaultOptions() Options {
	return Options{
		Limits:      DefaultLimits(),
		Parallelism: 1,
	}
}

// WithLimits replaces the parsing limits.
func WithLimits(l Limits) Option {
	return func(o *Options) {
		if l.MaxDatasets <= 0 || l.MaxLength <= 0 {
			o.err = fmt.Errorf("%w: limits must be positive (%+v)", ErrOptionViolation, l)
			return
		}
		o.Limits = l
	}
}

// WithParallelism computes up to n datasets concurrently. n must be positive.
func WithParallelism(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = fmt.Errorf("%w: parallelism must be positive (%d)", ErrOptionViolation, n)
			return
		}
		o.Parallelism = n
	}
}

// WithRejectEmpty treats a zero-length LCS as ErrNoCommonSymbols.
func WithRejectEmpty() Option {
	return func(o *Options) {
		o.RejectEmpty = true
	}
}

// WithBounded enumerates each dataset with lcs.Bounded instead of lcs.All.
// Invalid lcs options fail the whole call before any dataset runs; the error
// matches both ErrOptionViolation and lcs.ErrOptionViolation.
func WithBounded(opts ...lcs.Option) Option {
	return func(o *Options) {
		if err := lcs.CheckOptions(opts...); err != nil {
			o.err = fmt.Errorf("%w: bounded: %w", ErrOptionViolation, err)
			return
		}
		o.Bounded = append([]lcs.Option{}, opts...)
	}
}
