package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackgen-labs/stackgen/internal/naming"
	"github.com/stackgen-labs/stackgen/internal/ui"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <name>...",
	Short: "Check project names without creating anything",
	Long: `Validate each name as a project directory name and show the package
name it would be published under. Exits non-zero if any name would be
rejected by "new".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sanitizer := newSanitizer()

		var rows [][]string
		rejected := 0
		for _, name := range args {
			verdict, detail, ok := checkName(sanitizer, name)
			if !ok {
				rejected++
			}
			rows = append(rows, []string{fmt.Sprintf("%q", name), verdict, detail})
		}

		if err := ui.RenderTable([]string{"NAME", "VERDICT", "DETAIL"}, rows); err != nil {
			return err
		}

		if rejected > 0 {
			return fmt.Errorf("%d of %d name(s) rejected", rejected, len(args))
		}
		return nil
	},
}

// checkName runs the name through the validator and the sanitizer.
func checkName(s *naming.Sanitizer, name string) (verdict, detail string, ok bool) {
	if err := naming.Validate(name); err != nil {
		return "invalid", err.Error(), false
	}
	pkg, err := s.Sanitize(name)
	if err != nil {
		return "unusable", err.Error(), false
	}
	return "valid", "package name: " + pkg.String(), true
}
