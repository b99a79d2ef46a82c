// Package lcsall enumerates every longest common subsequence of two
// sequences, and wraps that core in batch, worker and network surfaces.
//
// 🚀 What is lcsall?
//
//	A small library plus a CLI that bring together:
//		• DP table construction, generic over comparable symbols
//		• Single-path reconstruction with a fixed tie-break
//		• Exhaustive enumeration with sorted, duplicate-free output
//		• Bounded enumeration under result, time and state ceilings,
//		  with progress hooks and context cancellation
//		• Subsequence and optimality validation
//
// ✨ Why lcsall?
//
//   - The number of LCS can grow exponentially; the bounded enumerator
//     always terminates and says why it stopped
//   - Pure core – the lcs package has no dependencies and never logs
//   - Surfaces on top – batch text format, a message-streaming worker,
//     a websocket server with Prometheus metrics, and a cobra CLI
//
// Packages:
//
//	lcs/              table, reconstruction, enumeration, validation
//	batch/            multi-dataset text format: parse, run, format
//	worker/           request execution with progress/terminal messages
//	server/           HTTP + websocket transport, metrics, health
//	internal/config/  YAML + .env + LCSALL_* configuration
//	internal/logging/ slog construction
//	cmd/lcsall/       command-line interface
//
// Quick start:
//
//	all := lcs.All("ijkijkii", "ikjikji")
//	// [ijiji ijiki ijkji ikiji ikiki ikjii ikjki]
//
//	res, err := lcs.Bounded(a, b, lcs.WithMaxResults(10), lcs.WithTimeout(time.Second))
//	if err == nil && res.Stats.Reason.Truncated() {
//		// res.LCS is a subset of the full set
//	}
package lcsall
