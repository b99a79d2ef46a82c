package batch

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse reads the batch format from r and validates it against lim.
//
// Header problems (ErrEmptyInput, ErrBadCount, ErrCountOutOfRange,
// ErrIncomplete) abort with no datasets. A dataset that fails validation
// stops parsing with a *DatasetError; the datasets before it are returned
// alongside the error so callers can still process them.
//
// Surrounding whitespace on every line is ignored, so CRLF input parses.
func Parse(r io.Reader, lim Limits) ([]Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("batch: read input: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, ErrEmptyInput
	}
	lines := strings.Split(text, "\n")

	header := strings.TrimSpace(lines[0])
	d, err := strconv.Atoi(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadCount, header)
	}
	if d < 1 || d > lim.MaxDatasets {
		return nil, fmt.Errorf("%w: %d, must be between 1 and %d", ErrCountOutOfRange, d, lim.MaxDatasets)
	}
	if want := 1 + 2*d; len(lines) < want {
		return nil, fmt.Errorf("%w: expected %d lines, found %d", ErrIncomplete, want, len(lines))
	}

	out := make([]Dataset, 0, d)
	for k := 0; k < d; k++ {
		ds := Dataset{
			Index: k + 1,
			A:     strings.TrimSpace(lines[1+2*k]),
			B:     strings.TrimSpace(lines[2+2*k]),
		}
		if err := lim.check(ds); err != nil {
			return out, &DatasetError{Index: ds.Index, Err: err}
		}
		out = append(out, ds)
	}

	return out, nil
}

// check validates both sequences of one dataset.
func (l Limits) check(ds Dataset) error {
	for _, s := range []string{ds.A, ds.B} {
		if s == "" {
			return ErrEmptySequence
		}
		if n := utf8.RuneCountInString(s); n > l.MaxLength {
			return fmt.Errorf("%w: %d symbols, at most %d allowed", ErrTooLong, n, l.MaxLength)
		}
		if l.Symbols == "" {
			continue
		}
		for _, r := range s {
			if !strings.ContainsRune(l.Symbols, r) {
				return fmt.Errorf("%w: %q (allowed: %s)", ErrBadSymbol, r, l.Symbols)
			}
		}
	}

	return nil
}
