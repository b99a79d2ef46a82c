package lcs

import (
	"fmt"
	"unicode/utf8"
)

// IsSubsequence reports whether cand appears in src in the same relative
// order, not necessarily contiguously. The empty candidate is a
// subsequence of everything.
//
// Two-pointer scan, O(len(src)).
func IsSubsequence[T comparable](cand, src []T) bool {
	k := 0
	for j := 0; j < len(src) && k < len(cand); j++ {
		if cand[k] == src[j] {
			k++
		}
	}

	return k == len(cand)
}

// IsSubsequenceString is IsSubsequence over runes, without allocating.
func IsSubsequenceString(cand, src string) bool {
	for _, r := range src {
		if cand == "" {
			return true
		}
		c, size := utf8.DecodeRuneInString(cand)
		if c == r {
			cand = cand[size:]
		}
	}

	return cand == ""
}

// ValidateAll checks that every candidate is a subsequence of both a and b
// and has the LCS length of a and b.
//
// The first failing candidate is reported, wrapping ErrNotSubsequence or
// ErrNotOptimal.
func ValidateAll(candidates []string, a, b string) error {
	want := Length([]rune(a), []rune(b))
	for _, c := range candidates {
		if !IsSubsequenceString(c, a) || !IsSubsequenceString(c, b) {
			return fmt.Errorf("%w: %q", ErrNotSubsequence, c)
		}
		if n := utf8.RuneCountInString(c); n != want {
			return fmt.Errorf("%w: %q has length %d, want %d", ErrNotOptimal, c, n, want)
		}
	}

	return nil
}
