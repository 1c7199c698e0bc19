package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/stackgen-labs/stackgen/internal/naming"
)

// FormatError renders err for display. Naming errors get a kind badge so the
// rule that failed is visible at a glance.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ne *naming.Error
	if errors.As(err, &ne) {
		badge := pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold).
			Sprintf(" %s ", strings.ToUpper(ne.Kind.String()))
		return fmt.Sprintf("%s %s\n", badge, pterm.FgRed.Sprint(err.Error()))
	}

	return fmt.Sprintf("%s %s\n", pterm.FgRed.Sprint("✗"), err.Error())
}

// WriteError writes a formatted error to w.
func WriteError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// PrintError prints a formatted error to the configured error writer.
func PrintError(err error) {
	WriteError(ErrWriter(), err)
}
