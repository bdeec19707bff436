// Package cli implements the assistant command line: the long-running
// serve command plus a few operator utilities that work directly on the
// database file.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kdziekansky/telegram2/internal/daemon"
)

// version is stamped at build time via -ldflags.
var version = "0.1.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Telegram AI assistant with a prepaid credit ledger",
	Long: `assistant runs a Telegram bot that answers with an LLM and charges
per operation from a prepaid credit balance. Users buy credit packages,
redeem activation codes or invite friends; every balance change is a row
in an append-only ledger.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config file path")

	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".assistant", "config.toml")
}

func loadConfig() (daemon.Config, error) {
	cfg, err := daemon.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the process logger from config. Pretty output is for
// terminals; the default is JSON lines.
func newLogger(cfg daemon.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("assistant", version)
	},
}
