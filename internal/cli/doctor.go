package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stackgen-labs/stackgen/internal/choice"
	"github.com/stackgen-labs/stackgen/internal/manifest"
	"github.com/stackgen-labs/stackgen/internal/toolcheck"
	"github.com/stackgen-labs/stackgen/internal/ui"
)

var checkManifest string

func init() {
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a package.json or .stackgen.yaml at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which package managers can be used",
	Long: `Probe npm, pnpm and bun in parallel and report whether each one can be
used to install a generated project. With --check-manifest, also validate an
existing manifest against the schema "new" writes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := make([]string, 0, len(choice.PackageManagers()))
		for _, pm := range choice.PackageManagers() {
			names = append(names, pm.String())
		}

		spinner := ui.StartSpinner("Checking package managers...")
		results := toolcheck.CheckAll(cmd.Context(), newChecker(), names)
		spinner.Stop()

		if err := ui.RenderTable([]string{"PACKAGE MANAGER", "STATUS", "VERSION", "DETAIL"}, doctorRows(results)); err != nil {
			return err
		}

		available := 0
		for _, r := range results {
			if r.Available {
				available++
			}
		}
		if available == 0 {
			ui.Warning("No usable package manager found. Install npm, pnpm or bun, or run \"new --no-install\".")
		}

		if checkManifest != "" {
			return runManifestCheck(cmd.OutOrStdout(), checkManifest)
		}
		return nil
	},
}

func doctorRows(results []toolcheck.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "[ OK ]"
		detail := r.Path
		if !r.Available {
			status = "[MISS]"
			detail = r.Reason
		}
		version := r.VersionString()
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{r.Name, status, version, detail})
	}
	return rows
}

func runManifestCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		fmt.Fprintf(w, "  [ OK ] %s\n", describeManifest(path))
		return nil
	}

	fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "    - %s\n", issue)
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}

// describeManifest summarizes a manifest that already passed validation.
func describeManifest(path string) string {
	kind, _ := manifest.KindOf(path)
	switch kind {
	case manifest.KindPackageJSON:
		if p, err := manifest.ParsePackageJSON(path); err == nil {
			return fmt.Sprintf("Valid package.json: %s (v%s)", p.Name, p.Version)
		}
	case manifest.KindStackRecord:
		if r, err := manifest.ParseStackRecord(path); err == nil {
			return fmt.Sprintf("Valid project record: %s (%s, %s)", r.Name, r.PackageManager, r.Backend)
		}
	}
	return "Valid manifest"
}
