package lcs

import (
	"fmt"
	"time"
)

// boundedRun wraps a walker with the ceilings and hooks of one Bounded call.
type boundedRun struct {
	w     *walker
	opts  Options
	start time.Time
	stats BoundedStats
}

// Bounded enumerates the LCS of a and b like All, but under ceilings:
//
//   - MaxResults:  stop once that many distinct LCS are known.
//   - Timeout:     stop once the wall-clock budget is spent.
//   - MaxStates:   stop once that many states have been explored.
//   - MaxFrontier: stop once more than that many states are pending.
//
// Every ceiling is checked before each state is explored. When one triggers
// the run stops at once and returns what it has; Stats.Reason tells which
// ceiling it was. Returned strings are always valid optimal LCS; the set is
// complete only when Stats.Reason is Completed.
//
// Traversal uses an explicit LIFO work list rather than recursion, so the
// frontier size is directly observable and can be capped.
//
// OnFound is called for every new distinct LCS; OnProgress is called when
// the run starts, every ProgressEvery explored states, and when it stops.
//
// Errors:
//   - ErrOptionViolation for invalid options.
//   - ctx.Err() if the context is cancelled; the partial set is discarded
//     and the returned result carries only stats with Reason Cancelled.
func Bounded(a, b string, opts ...Option) (*BoundedResult, error) {
	ra, rb := []rune(a), []rune(b)

	return BoundedFromTable(ra, rb, BuildTable(ra, rb), opts...)
}

// BoundedFromTable is Bounded over a table already built for a and b.
// Returns ErrTableMismatch if t does not fit a and b, including a table of
// the right size built from other sequences.
func BoundedFromTable(a, b []rune, t *Table, opts ...Option) (*BoundedResult, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if err := t.check(len(a), len(b)); err != nil {
		return nil, err
	}

	r := &boundedRun{w: newWalker(a, b, t), opts: o, start: o.Now()}
	if err := r.loop(); err != nil {
		if r.w.err != nil {
			return nil, err
		}
		r.stats.Reason = Cancelled
		r.stats.Elapsed = r.elapsed()
		r.notify("search cancelled")

		return &BoundedResult{Length: t.Length(), Stats: r.stats}, err
	}

	r.stats.Elapsed = r.elapsed()
	if r.stats.Reason == Completed {
		r.notify(fmt.Sprintf("search complete. %d LCS found", r.stats.Found))
	} else {
		r.notify(fmt.Sprintf("search stopped (%s). %d LCS found", r.stats.Reason, r.stats.Found))
	}

	return &BoundedResult{LCS: r.w.results(), Length: t.Length(), Stats: r.stats}, nil
}

// loop drains the work list until it is empty, a ceiling triggers, or the
// context is cancelled.
func (r *boundedRun) loop() error {
	r.notify("starting search")
	r.observeFrontier()
	for len(r.w.stack) > 0 {
		select {
		case <-r.opts.Ctx.Done():
			return r.opts.Ctx.Err()
		default:
		}

		if reason, stop := r.ceiling(); stop {
			r.stats.Reason = reason
			return nil
		}

		s, added := r.w.step(r.w.pop())
		if r.w.err != nil {
			return r.w.err
		}
		r.stats.Explored++
		r.observeFrontier()
		if added {
			r.stats.Found++
			r.opts.OnFound(r.stats.Found, s)
		}
		if r.stats.Explored%r.opts.ProgressEvery == 0 {
			r.notify(fmt.Sprintf("%d LCS found...", r.stats.Found))
		}
	}
	r.stats.Reason = Completed

	return nil
}

// ceiling reports the first ceiling that has been reached, if any.
func (r *boundedRun) ceiling() (Reason, bool) {
	o := r.opts
	switch {
	case o.MaxResults > 0 && r.stats.Found >= o.MaxResults:
		return CountLimitReached, true
	case o.Timeout > 0 && r.elapsed() > o.Timeout:
		return TimeLimitReached, true
	case o.MaxStates > 0 && r.stats.Explored >= o.MaxStates:
		return StateLimitReached, true
	case o.MaxFrontier > 0 && len(r.w.stack) > o.MaxFrontier:
		return StateLimitReached, true
	}

	return Completed, false
}

func (r *boundedRun) observeFrontier() {
	if n := len(r.w.stack); n > r.stats.MaxFrontier {
		r.stats.MaxFrontier = n
	}
}

func (r *boundedRun) elapsed() time.Duration {
	return r.opts.Now().Sub(r.start)
}

func (r *boundedRun) notify(msg string) {
	r.opts.OnProgress(Progress{
		Found:    r.stats.Found,
		Explored: r.stats.Explored,
		Frontier: len(r.w.stack),
		Elapsed:  r.elapsed(),
		Message:  msg,
	})
}
