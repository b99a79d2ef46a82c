package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lcsall/internal/config"
	"github.com/katalvlaran/lcsall/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	jsonLogs   bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lcsall",
		Short: "Enumerate every longest common subsequence of two sequences",
		Long: `lcsall builds the LCS dynamic-programming table for two sequences and
enumerates every distinct longest common subsequence, exhaustively or under
result, time and state ceilings.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "emit logs as JSON")

	root.AddCommand(
		newTableCmd(a),
		newOneCmd(a),
		newAllCmd(a),
		newBoundedCmd(a),
		newStepsCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
	)

	return root
}

// setup loads configuration and builds the logger. Flags override the
// environment, which overrides the file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.Log.JSON = a.jsonLogs
	}
	cfg.Log.Writer = cmd.ErrOrStderr()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger

	return nil
}
