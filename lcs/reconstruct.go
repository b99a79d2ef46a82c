package lcs

// Reconstruct walks t once from (len(a), len(b)) and returns one LCS of a
// and b.
//
// At a match the symbol is taken and the walk moves diagonally. Otherwise it
// moves to the neighbour with the larger value. On a tie it moves up
// (drops a[i-1]); both directions keep the optimum, the fixed choice only
// keeps the output deterministic.
//
// Returns ErrTableMismatch if t was not built for a and b, whether its
// dimensions or its contents disagree.
//
// Complexity: O(n+m).
func Reconstruct[T comparable](a, b []T, t *Table) ([]T, error) {
	if err := t.check(len(a), len(b)); err != nil {
		return nil, err
	}

	out := make([]T, t.Length())
	k := len(out)
	i, j := len(a), len(b)
	for i > 0 && j > 0 {
		eq := a[i-1] == b[j-1]
		if (eq && k == 0) || !t.consistent(i, j, eq) {
			return nil, mismatchAt(i, j)
		}
		if eq {
			k--
			out[k] = a[i-1]
			i--
			j--
			continue
		}
		if t.At(i-1, j) >= t.At(i, j-1) {
			i--
		} else {
			j--
		}
	}
	if k != 0 {
		return nil, mismatchAt(i, j)
	}

	return out, nil
}

// One returns a single LCS of a and b, compared rune by rune.
func One(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	out, _ := Reconstruct(ra, rb, BuildTable(ra, rb))

	return string(out)
}
