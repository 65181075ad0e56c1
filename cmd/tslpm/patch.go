package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "List, enable or disable cataloged patches",
	Long: `Manage the enabled state of cataloged patches.

Only the Enabled flag is ever written back; every other catalog column is
preserved unchanged, matched by mod name and patch name.`,
}

var patchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cataloged patches",
	Args:  cobra.NoArgs,
	RunE:  runPatchList,
}

var patchEnableCmd = &cobra.Command{
	Use:   "enable <mod-name> [patch-name]",
	Short: "Enable a patch (patch name defaults to \"Default\")",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPatchEnabled(args, true)
	},
}

var patchDisableCmd = &cobra.Command{
	Use:   "disable <mod-name> [patch-name]",
	Short: "Disable a patch (patch name defaults to \"Default\")",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPatchEnabled(args, false)
	},
}

func init() {
	patchCmd.AddCommand(patchListCmd)
	patchCmd.AddCommand(patchEnableCmd)
	patchCmd.AddCommand(patchDisableCmd)
	rootCmd.AddCommand(patchCmd)
}

func runPatchList(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	descriptors, err := svc.Catalog()
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		fmt.Println("Catalog is empty. Run 'tslpm build' first.")
		return nil
	}

	for _, d := range descriptors {
		marker := " "
		if d.Enabled {
			marker = "*"
		}
		fmt.Printf("[%s] %s / %s", marker, d.ModName, d.PatchName)
		if d.Description != "" {
			fmt.Printf(" - %s", d.Description)
		}
		fmt.Println()
	}
	return nil
}

func setPatchEnabled(args []string, enabled bool) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	modName := args[0]
	patchName := "Default"
	if len(args) > 1 {
		patchName = args[1]
	}

	if err := svc.SetPatchEnabled(modName, patchName, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("%s / %s %s\n", modName, patchName, state)
	return nil
}
