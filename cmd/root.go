package cmd

import (
	"fmt"
	"os"

	"bakai-assistant/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bakai-assistant",
	Short: "Query resolution and retrieval service for the Bakai Bank assistant",
	Long: `Resolves customer questions against the bank's knowledge collection:
exact FAQ answers first, then keyword, similar-question and nearest-neighbor
fallbacks, plus the service category and outbound link for the question.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		config.Cleanup()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

// initConfig loads configuration, then rebuilds the logger at the configured level.
func initConfig() error {
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = config.LoadFile(cfgFile, tempLogger)
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err = config.InitLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to re-initialize logger with configured level: %w", err)
	}
	return nil
}
