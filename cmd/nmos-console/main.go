package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan-r-thorpe/nmos-js/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose bool
	cfg     config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nmos-console",
	Short: "Web console for NMOS registries",
	Long: `nmos-console browses the resources held by an NMOS registry (IS-04 Query API)
and edits the staged connection parameters of senders and receivers
(IS-05 Connection API).

Run "nmos-console serve" to start the web console.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := cfg.Load(cmd.Flags()); err != nil {
			return err
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd, showCmd, listCmd, versionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
