// tradelab - trade journal analytics for broker Flex statements
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trade-journal-lab/internal/config"
	"trade-journal-lab/internal/logging"
	"trade-journal-lab/internal/observability"
)

var version = "0.1.0"

// app carries what every subcommand shares once the root pre-run has loaded
// the configuration.
type app struct {
	configPath string
	fixtures   bool

	cfg     *config.Config
	logger  *logrus.Logger
	metrics *observability.Metrics
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tradelab",
		Short: "Trade journal analytics",
		Long: `tradelab imports broker Flex statements, matches executions into closed
trades with FIFO lots, groups them into strategies and campaigns, and
renders P&L reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	// Flags
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&a.fixtures, "fixtures", false, "Load the demonstration journal before running")

	// Subcommands
	rootCmd.AddCommand(a.importCmd())
	rootCmd.AddCommand(a.analyzeCmd())
	rootCmd.AddCommand(a.reportCmd())
	rootCmd.AddCommand(a.checkCmd())
	rootCmd.AddCommand(a.verifyCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = observability.NewMetrics(observability.DefaultNamespace)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradelab version %s\n", version)
		},
	}
}
