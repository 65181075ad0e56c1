package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Apply all enabled patches against the reassembly directory",
	Long: `Run the install orchestrator: rebuild the reassembly staging tree, copy
in every game file the enabled patches need, then execute the external
patcher for each enabled patch in catalog (load-order priority) order.

One failing patch never blocks the rest of the batch. Required files the
patcher left untouched are removed from the reassembly tree afterwards, so
the tree contains only files that were actually modified.

Exit code 0 means the run completed, even when individual patches failed
(see the summary); exit code 1 means a hard precondition failed: missing
patcher executable, missing catalog, missing or empty game directory,
active reserved output mod, or no enabled patches.

Examples:
  tslpm install
  tslpm install --verbose`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	summary, err := svc.Install(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\nProcessed: %d", summary.Processed)
	fmt.Printf(", Succeeded: %d", summary.Succeeded)
	if summary.Failed > 0 {
		fmt.Printf(", Failed: %d", summary.Failed)
	}
	if summary.Skipped > 0 {
		fmt.Printf(", Skipped: %d", summary.Skipped)
	}
	if summary.Missing > 0 {
		fmt.Printf(", Missing files: %d", summary.Missing)
	}
	fmt.Println()
	return nil
}
