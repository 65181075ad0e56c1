package main

import (
	"fmt"
	"os"
	"path/filepath"

	"tslpm/internal/core"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	configDir string
	dataDir   string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tslpm",
	Short: "TSLPatcher mod patch manager",
	Long: `tslpm builds a catalog of TSLPatcher-style patches scattered across your
mod folders, detects cross-mod file conflicts, and applies the enabled
patches in load-order priority against an isolated reassembly copy of the
game installation.

Use subcommands for operations. Run 'tslpm --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/tslpm)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/tslpm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command. Exit codes: 0 = ran to completion
// (individual patch failures are reported in the summary), 1 = a hard
// precondition failed or the command errored.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Verbose:   verbose,
	}
	if cfg.ConfigDir != "" && cfg.DataDir != "" {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "tslpm")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "tslpm")
	}
	return cfg, nil
}
