// Package lcs computes longest common subsequences (LCS) of two sequences,
// including every distinct optimal subsequence, not just one.
//
// 🚀 What is an LCS?
//
//	The longest sequence that can be obtained from both inputs by deleting
//	symbols without reordering the rest. "ijkijkii" and "ikjikji" share
//	seven different LCS of length 5: ijiji, ijiki, ijkji, ikiji, ikiki,
//	ikjii, ikjki.
//
// ✨ Key features:
//   - BuildTable: the (n+1)×(m+1) optimal-length table, O(n·m)
//   - Length: length only, two rolling rows, O(min(n,m)) memory
//   - Reconstruct / One: a single LCS walking the table once, O(n+m)
//   - All: every distinct LCS, deduplicated and sorted ascending
//   - AllWithSteps: the same set plus the traversal trace
//   - Bounded: All under result-count, wall-clock, explored-state and
//     frontier ceilings, with progress hooks and context cancellation
//   - IsSubsequence / ValidateAll: two-pointer subsequence checks
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/lcsall/lcs"
//
//	all := lcs.All("ijkijkii", "ikjikji") // 7 strings, sorted
//
//	res, err := lcs.Bounded("ijkijkii", "ikjikji",
//	    lcs.WithMaxResults(2),
//	    lcs.WithTimeout(time.Second),
//	)
//	// res.Stats.Reason == lcs.CountLimitReached, len(res.LCS) == 2
//
// Enumeration walks the table from (n,m) back to row or column 0. A match
// forces a diagonal step; otherwise the walk branches up and/or left to
// every neighbour that preserves the optimal value. Distinct paths can spell
// the same string, so results are collected in a set keyed by content.
// The number of paths is exponential in the worst case (up to 2^min(n,m)),
// which is what Bounded exists for.
//
// Performance:
//
//   - Table: O(n·m) time and memory
//   - All:   O(n·m) table + exponential enumeration in the worst case
//
// Ceiling termination in Bounded is a normal outcome reported through
// BoundedStats.Reason, never an error.
package lcs
