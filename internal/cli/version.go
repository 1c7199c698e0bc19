package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/stackgen-labs/stackgen/internal/branding"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	f := versionCmd.Flags()
	f.BoolVar(&versionShort, "short", false, "Print the version number only")
	f.BoolVar(&versionJSON, "json", false, "Print build details as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
	rootCmd.AddCommand(versionCmd)
}

// buildInfo is what "version --json" prints.
type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// currentBuild combines the ldflags values with the module version recorded
// by "go install", which fills in builds made without ldflags.
func currentBuild() buildInfo {
	info := buildInfo{
		Version:  buildVersion,
		Commit:   buildCommit,
		Date:     buildDate,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "" || info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the generator version",
	Long: `Show the version recorded in every generated .stackgen.yaml, together
with the commit, build date and Go toolchain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild()
		out := cmd.OutOrStdout()

		switch {
		case versionShort:
			_, err := fmt.Fprintln(out, info.Version)
			return err
		case versionJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		_, err := fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n%s %s\n",
			branding.CLIName(), info.Version, info.Commit, info.Date, info.Go, info.Platform)
		return err
	},
}
