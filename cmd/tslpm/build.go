package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the patch catalog from the mods directory",
	Long: `Scan every mod folder for patch definitions, parse their configuration
files, and rewrite the patch catalog.

The rebuild is always full: previously cataloged patches that no longer
exist on disk disappear, newly discovered patches are added disabled, and
your enable/disable selections are preserved by (mod, patch) key. The
cross-mod conflict report is refreshed alongside.

Examples:
  tslpm build
  tslpm build --verbose`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	descriptors, conflicts, err := svc.BuildCatalog()
	if err != nil {
		return err
	}

	enabled := 0
	for _, d := range descriptors {
		if d.Enabled {
			enabled++
		}
	}

	fmt.Printf("Cataloged %d patch(es) (%d enabled) into %s\n",
		len(descriptors), enabled, svc.Config.CatalogPath)

	if len(conflicts) > 0 {
		fmt.Printf("Found %d conflicting file(s); see %s or run 'tslpm conflicts'\n",
			len(conflicts), svc.Config.ConflictsPath)
	} else {
		fmt.Println("No file conflicts between mods.")
	}
	return nil
}
