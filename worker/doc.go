// Package worker runs LCS requests off the caller's goroutine and reports
// back through a stream of messages.
//
// 🚀 What it does
//
//   - computeTable: builds the DP table and returns its rows, the LCS
//     length and one reconstructed LCS.
//   - computeAllBounded: enumerates LCS under the ceilings of lcs.Bounded
//     and returns the (possibly truncated) set with its terminal reason.
//
// 📨 Protocol
//
// Submit returns a channel that carries zero or more progress messages,
// then exactly one terminal message (tableResult, boundedResult or error),
// and is then closed. Progress messages are advisory and may be dropped
// when the consumer falls behind; the terminal message never is.
//
// Cancelling the context passed to Submit tears the run down: the
// enumeration stops at its next step, partial results are discarded and
// the terminal message is an error carrying the context error.
//
// ⚙️ Ambient behaviour
//
//   - DP tables are cached per sequence pair in an LRU, so a bounded
//     enumeration following a table request on the same pair reuses it.
//   - Requests without an ID get a random UUID.
//   - At most Config.MaxConcurrent requests compute at once; the rest wait.
//   - Every request runs inside an OpenTelemetry span.
//   - Close cancels in-flight runs and waits for them to finish.
package worker
