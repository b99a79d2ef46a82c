package lcs

import "slices"

// frame is one pending traversal state: table cell (i, j) and the LCS
// suffix collected on the way there, stored back-to-front.
//
// Siblings created at a fork share the same suffix backing array; it is
// only ever read, extend allocates a fresh one.
type frame struct {
	i, j   int
	suffix []rune
}

// extend returns a new suffix with r appended.
func extend(suffix []rune, r rune) []rune {
	next := make([]rune, len(suffix)+1)
	copy(next, suffix)
	next[len(suffix)] = r

	return next
}

// reversed turns a back-to-front suffix into the LCS string.
func reversed(suffix []rune) string {
	out := make([]rune, len(suffix))
	for k, r := range suffix {
		out[len(suffix)-1-k] = r
	}

	return string(out)
}

// walker holds the mutable state of one enumeration over a read-only table.
// All and Bounded both drive it; Bounded adds ceilings around step.
type walker struct {
	a, b  []rune
	t     *Table
	stack []frame
	found map[string]struct{}
	trace func(Step)
	err   error // set once a cell disagrees with a and b
}

func newWalker(a, b []rune, t *Table) *walker {
	w := &walker{
		a:     a,
		b:     b,
		t:     t,
		stack: make([]frame, 0, len(a)+len(b)+1),
		found: make(map[string]struct{}),
	}
	w.stack = append(w.stack, frame{i: len(a), j: len(b)})

	return w
}

// pop removes the most recently pushed frame.
func (w *walker) pop() frame {
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	return f
}

// step processes one frame and pushes its follow-up states.
// It returns the LCS and true when the frame is a base case that adds a
// string not seen before.
//
// Branching rule:
//   - i == 0 or j == 0: the suffix is complete.
//   - a[i-1] == b[j-1]: the symbol is in every LCS through this cell,
//     single diagonal branch.
//   - otherwise: branch up if T[i-1][j] == T[i][j], and left if
//     T[i][j-1] == T[i][j]; both may hold.
//
// Left is pushed before up, so up is explored first.
func (w *walker) step(f frame) (string, bool) {
	if f.i == 0 || f.j == 0 {
		s := reversed(f.suffix)
		w.record(Step{I: f.i, J: f.j, Suffix: s, Decision: DecisionBase})
		if _, seen := w.found[s]; seen {
			return "", false
		}
		w.found[s] = struct{}{}

		return s, true
	}

	ca, cb := w.a[f.i-1], w.b[f.j-1]
	if !w.t.consistent(f.i, f.j, ca == cb) {
		w.err = mismatchAt(f.i, f.j)
		w.stack = w.stack[:0]

		return "", false
	}
	if ca == cb {
		next := extend(f.suffix, ca)
		w.record(Step{I: f.i, J: f.j, Suffix: reversed(next), Decision: DecisionMatch, A: ca, B: cb})
		w.stack = append(w.stack, frame{i: f.i - 1, j: f.j - 1, suffix: next})

		return "", false
	}

	cur := w.t.At(f.i, f.j)
	up := w.t.At(f.i-1, f.j) == cur
	left := w.t.At(f.i, f.j-1) == cur
	if w.trace != nil {
		d := DecisionUp
		switch {
		case up && left:
			d = DecisionBoth
		case left:
			d = DecisionLeft
		}
		w.record(Step{I: f.i, J: f.j, Suffix: reversed(f.suffix), Decision: d, A: ca, B: cb})
	}
	if left {
		w.stack = append(w.stack, frame{i: f.i, j: f.j - 1, suffix: f.suffix})
	}
	if up {
		w.stack = append(w.stack, frame{i: f.i - 1, j: f.j, suffix: f.suffix})
	}

	return "", false
}

func (w *walker) record(s Step) {
	if w.trace != nil {
		w.trace(s)
	}
}

// results returns the collected set sorted ascending.
func (w *walker) results() []string {
	out := make([]string, 0, len(w.found))
	for s := range w.found {
		out = append(out, s)
	}
	slices.Sort(out)

	return out
}

// run drains the work list with no ceilings.
func (w *walker) run() ([]string, error) {
	for len(w.stack) > 0 {
		w.step(w.pop())
	}
	if w.err != nil {
		return nil, w.err
	}

	return w.results(), nil
}

// All returns every distinct LCS of a and b (compared rune by rune),
// sorted ascending. Inputs with no common symbol yield [""]: the empty
// string is their unique LCS.
//
// The number of explored states is exponential in the worst case; use
// Bounded when inputs are not known to be small.
func All(a, b string) []string {
	ra, rb := []rune(a), []rune(b)
	out, _ := newWalker(ra, rb, BuildTable(ra, rb)).run()

	return out
}

// AllFromTable is All over a table already built for a and b.
// Returns ErrTableMismatch if t does not fit a and b, including a table of
// the right size built from other sequences.
func AllFromTable(a, b []rune, t *Table) ([]string, error) {
	if err := t.check(len(a), len(b)); err != nil {
		return nil, err
	}

	return newWalker(a, b, t).run()
}

// AllWithSteps is All plus the trace of every visited state, in visit
// order. Useful for visualising how the walk forks and converges.
func AllWithSteps(a, b string) ([]string, []Step) {
	ra, rb := []rune(a), []rune(b)
	w := newWalker(ra, rb, BuildTable(ra, rb))
	var steps []Step
	w.trace = func(s Step) { steps = append(steps, s) }
	out, _ := w.run()

	return out, steps
}
