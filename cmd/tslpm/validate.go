package main

import (
	"fmt"
	"os"
	"path/filepath"

	"tslpm/internal/core"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [mod-name]",
	Short: "Check mod folder layout",
	Long: `Check whether mod folders follow the expected game layout.

A mod is valid when its content sits in recognized game directories (or it
ships a patch-data folder), fixable when payload files are loose or buried
in unknown folders, and invalid when it contains nothing usable or a
restricted directory. The check is read-only.

Without a mod name, all mods in the mods root are checked.

Examples:
  tslpm validate
  tslpm validate "Ultimate Sound Mod"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	var modNames []string
	if len(args) > 0 {
		modNames = args
	} else {
		entries, err := os.ReadDir(svc.Config.ModsRoot)
		if err != nil {
			return fmt.Errorf("reading mods root: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				modNames = append(modNames, e.Name())
			}
		}
	}

	for _, name := range modNames {
		report, err := core.CheckModLayout(filepath.Join(svc.Config.ModsRoot, name))
		if err != nil {
			fmt.Printf("  ? %s - %v\n", name, err)
			continue
		}
		switch report.Verdict {
		case core.LayoutValid:
			fmt.Printf("  + %s\n", name)
		case core.LayoutFixable:
			fmt.Printf("  ~ %s (fixable)\n", name)
		default:
			fmt.Printf("  x %s (invalid)\n", name)
		}
		if verbose {
			for _, p := range report.Problems {
				fmt.Printf("      %s\n", p)
			}
		}
	}
	return nil
}
