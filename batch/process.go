package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lcsall/lcs"
)

// Run computes the LCS set of every dataset.
//
// Up to Options.Parallelism datasets run at once. Each dataset's failure is
// its own: the returned results are the prefix of datasets that completed
// before the first failing one, and the error is that dataset's
// *DatasetError. Cancelling ctx stops datasets that have not finished.
func Run(ctx context.Context, datasets []Dataset, opts ...Option) ([]Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	results := make([]Result, len(datasets))
	errs := make([]error, len(datasets))

	var g errgroup.Group
	g.SetLimit(o.Parallelism)
	for k, ds := range datasets {
		g.Go(func() error {
			results[k], errs[k] = compute(ctx, ds, o)
			return nil
		})
	}
	_ = g.Wait()

	for k, err := range errs {
		if err != nil {
			return results[:k], &DatasetError{Index: datasets[k].Index, Err: err}
		}
	}

	return results, nil
}

// compute enumerates one dataset according to o.
func compute(ctx context.Context, ds Dataset, o Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Dataset: ds, Reason: lcs.Completed}
	if o.Bounded == nil {
		res.LCS = lcs.All(ds.A, ds.B)
		res.Length = len([]rune(res.LCS[0]))
	} else {
		bopts := append([]lcs.Option{lcs.WithContext(ctx)}, o.Bounded...)
		br, err := lcs.Bounded(ds.A, ds.B, bopts...)
		if err != nil {
			return Result{}, err
		}
		res.LCS, res.Length, res.Reason = br.LCS, br.Length, br.Stats.Reason
	}

	if o.RejectEmpty && res.Length == 0 {
		return Result{}, ErrNoCommonSymbols
	}

	return res, nil
}

// Format writes results in the output format: each dataset's LCS one per
// line, datasets separated by a blank line.
func Format(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for k, r := range results {
		if k > 0 {
			bw.WriteString("\n")
		}
		for _, s := range r.LCS {
			bw.WriteString(s)
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// Process parses r, computes every dataset and writes the output to w.
//
// When a dataset is invalid or fails, the datasets before it are still
// written, then its *DatasetError is returned. Header errors write nothing.
func Process(ctx context.Context, r io.Reader, w io.Writer, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o.err
	}

	datasets, perr := Parse(r, o.Limits)
	var de *DatasetError
	if perr != nil && !errors.As(perr, &de) {
		return perr
	}

	results, rerr := Run(ctx, datasets, opts...)
	if err := Format(w, results); err != nil {
		return fmt.Errorf("batch: write output: %w", err)
	}
	if rerr != nil {
		return rerr
	}

	return perr
}

// ProcessString is Process over in-memory text.
func ProcessString(ctx context.Context, input string, opts ...Option) (string, error) {
	var sb strings.Builder
	err := Process(ctx, strings.NewReader(input), &sb, opts...)

	return sb.String(), err
}
