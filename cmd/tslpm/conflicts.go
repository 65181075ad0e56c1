package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Show files touched by more than one mod",
	Long: `Display the cross-mod conflict report produced by the last 'tslpm build'.

A conflict means two or more mods reference the same file name in their
patch configurations. Conflicts are informational: the install order (your
load order) decides which patch wins, later patches overriding earlier ones
in the reassembly tree.

Examples:
  tslpm conflicts`,
	Args: cobra.NoArgs,
	RunE: runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	records, err := svc.Conflicts()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No conflicts found.")
		return nil
	}

	fmt.Printf("Found %d conflicting file(s):\n\n", len(records))
	for _, r := range records {
		fmt.Printf("  %s (%d mods)\n", r.FileName, r.ModCount())
		fmt.Printf("    Touched by: %s\n", strings.Join(r.Mods, ", "))
	}
	return nil
}
