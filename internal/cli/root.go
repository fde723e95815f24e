// Package cli provides the command-line interface for ordermatters.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/config"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/llm"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/service"
)

// Version is set at build time.
var Version = "0.1.0"

// app is the state shared by the commands of one invocation.
type app struct {
	// Global flags
	verbose  bool
	dataFile string

	cfg      config.Config
	data     *dataset.Dataset
	engine   *service.Engine
	logger   *slog.Logger
	closeLog func() error
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ordermatters",
		Short: "Explore how input order biases LLM fault localization",
		Long: `ordermatters scores orderings with Kendall Tau, reorders sequences,
ranks methods with competing ordering strategies and looks up the accuracy
figures measured for each ordering.

Run 'ordermatters play' for the interactive terminal UI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for version and help commands
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd.Name() == "play")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				if err := a.closeLog(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
				}
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&a.dataFile, "data", "", "YAML dataset overriding the embedded one")

	rootCmd.AddCommand(newTauCmd(a))
	rootCmd.AddCommand(newRankCmd(a))
	rootCmd.AddCommand(newMutateCmd(a))
	rootCmd.AddCommand(newSegmentCmd(a))
	rootCmd.AddCommand(newResultsCmd(a))
	rootCmd.AddCommand(newAskCmd(a))
	rootCmd.AddCommand(newPlayCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))

	return rootCmd
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads configuration, logging and the dataset. quiet keeps log
// output off the terminal.
func (a *app) setup(quiet bool) error {
	a.cfg = config.Load()
	if a.dataFile != "" {
		a.cfg.DataFile = a.dataFile
	}

	level := max(a.cfg.LogLevel, slog.LevelWarn)
	if a.verbose {
		level = slog.LevelDebug
	}
	if quiet {
		a.logger, a.closeLog = config.SetupQuietLogger(a.cfg.LogFile, level)
	} else {
		a.logger, a.closeLog = config.SetupLogger(a.cfg.LogFile, level)
	}

	data, err := dataset.Load(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	a.data = data
	a.engine = service.NewEngine(data, metrics.NewCollector())

	a.logger.Debug("dataset loaded",
		"file", a.cfg.DataFile,
		"playground", len(data.Playground),
		"strategy_entities", len(data.StrategyEntities),
	)
	return nil
}

// newAssistant connects the configured language model.
func (a *app) newAssistant(ctx context.Context) (*chat.Assistant, error) {
	model, err := llm.NewModel(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	model.WithRecorder(a.engine.Metrics())
	return chat.NewAssistant(model, a.data.BriefingContext(), a.cfg.LLMTimeout, a.logger), nil
}
