package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lcsall/batch"
	"github.com/katalvlaran/lcsall/lcs"
	"github.com/katalvlaran/lcsall/server"
	"github.com/katalvlaran/lcsall/worker"
)

func newTableCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table A B",
		Short: "Print the DP table and the LCS length",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := lcs.BuildTableString(args[0], args[1])
			out := cmd.OutOrStdout()
			fmt.Fprint(out, t.String())
			fmt.Fprintf(out, "length: %d\n", t.Length())

			return nil
		},
	}
}

func newOneCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "one A B",
		Short: "Print one LCS",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), lcs.One(args[0], args[1]))
			return nil
		},
	}
}

func newAllCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all A B",
		Short: "Print every LCS, one per line, in ascending order",
		Long:  "Exhaustive enumeration. The output can grow exponentially with the input; see bounded.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range lcs.All(args[0], args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newBoundedCmd(a *app) *cobra.Command {
	var (
		maxResults, maxStates, maxFrontier int
		timeout                            time.Duration
		progress                           bool
	)
	cmd := &cobra.Command{
		Use:   "bounded A B",
		Short: "Enumerate LCS under result, time and state ceilings",
		Long: `Prints the LCS found before a ceiling triggered, one per line, then a
summary line on stderr. Zero disables a ceiling. Flags default to the
configured limits.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lim := a.cfg.Limits
			f := cmd.Flags()
			if f.Changed("max-results") {
				lim.MaxResults = maxResults
			}
			if f.Changed("timeout") {
				ms, err := timeoutMS(timeout)
				if err != nil {
					return err
				}
				lim.TimeoutMS = ms
			}
			if f.Changed("max-states") {
				lim.MaxStates = maxStates
			}
			if f.Changed("max-frontier") {
				lim.MaxFrontier = maxFrontier
			}

			opts := append(lim.Options(), lcs.WithContext(cmd.Context()))
			errOut := cmd.ErrOrStderr()
			if progress {
				opts = append(opts, lcs.WithOnProgress(func(p lcs.Progress) {
					fmt.Fprintf(errOut, "[%s] %s\n", p.Elapsed.Round(time.Millisecond), p.Message)
				}))
			}

			res, err := lcs.Bounded(args[0], args[1], opts...)
			if err != nil {
				return err
			}
			for _, s := range res.LCS {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			st := res.Stats
			fmt.Fprintf(errOut, "found %d of length %d: %s (explored %d, peak frontier %d, %s)\n",
				st.Found, res.Length, st.Reason, st.Explored, st.MaxFrontier, st.Elapsed.Round(time.Millisecond))

			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxResults, "max-results", lcs.DefaultMaxResults, "stop after this many distinct LCS")
	f.DurationVar(&timeout, "timeout", lcs.DefaultTimeout, "wall-clock budget")
	f.IntVar(&maxStates, "max-states", 0, "stop after exploring this many states")
	f.IntVar(&maxFrontier, "max-frontier", lcs.DefaultMaxFrontier, "stop when this many states are pending")
	f.BoolVar(&progress, "progress", false, "print progress notifications on stderr")

	return cmd
}

// timeoutMS converts a --timeout value to whole milliseconds. Positive
// values round up, so a sub-millisecond budget stays a budget instead of
// turning into 0 (no ceiling).
func timeoutMS(d time.Duration) (int, error) {
	if d < 0 {
		return 0, fmt.Errorf("timeout cannot be negative (%s)", d)
	}

	return int((d + time.Millisecond - 1) / time.Millisecond), nil
}

func newStepsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps A B",
		Short: "Print the backtracking trace of the exhaustive enumeration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, steps := lcs.AllWithSteps(args[0], args[1])
			out := cmd.OutOrStdout()
			for k, s := range steps {
				fmt.Fprintf(out, "%4d  (%d,%d)  %-5s  %q\n", k+1, s.I, s.J, s.Decision, s.Suffix)
			}
			fmt.Fprintf(out, "%d LCS: %v\n", len(all), all)

			return nil
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var bounded bool
	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Process the batch format from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			return batch.Process(cmd.Context(), in, cmd.OutOrStdout(), a.cfg.BatchOptions(bounded)...)
		},
	}
	cmd.Flags().BoolVar(&bounded, "bounded", false, "use bounded enumeration under the configured limits")

	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the worker protocol, batch endpoint and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scfg := a.cfg.Server
			if cmd.Flags().Changed("addr") {
				scfg.Addr = addr
			}

			w, err := worker.New(a.cfg.WorkerConfig(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			return server.New(scfg, w, a.logger, a.cfg.BatchOptions(false)...).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultConfig().Addr, "listen address")

	return cmd
}
