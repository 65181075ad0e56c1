package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent install runs",
	Long: `List recent install runs and their outcome counts.

With a run ID, shows the per-patch results of that run.

Examples:
  tslpm history
  tslpm history 12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	if len(args) > 0 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id: %s", args[0])
		}
		results, err := svc.RunResults(runID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("No results for run %d.\n", runID)
			return nil
		}
		for _, r := range results {
			fmt.Printf("  %-10s %s / %s", r.Status, r.ModName, r.PatchName)
			if r.Reason != "" {
				fmt.Printf(" (%s)", r.Reason)
			}
			fmt.Println()
		}
		return nil
	}

	runs, err := svc.History(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("  #%-4d %s  processed=%d succeeded=%d failed=%d skipped=%d missing=%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Summary.Processed, r.Summary.Succeeded, r.Summary.Failed,
			r.Summary.Skipped, r.Summary.Missing)
	}
	return nil
}
