package cli

import (
	"io"

	"github.com/stackgen-labs/stackgen/internal/config"
	"github.com/stackgen-labs/stackgen/internal/install"
	"github.com/stackgen-labs/stackgen/internal/logging"
	"github.com/stackgen-labs/stackgen/internal/naming"
	"github.com/stackgen-labs/stackgen/internal/toolcheck"
)

// Constructors for collaborators that reach outside the process. Tests swap
// them for fakes.
var (
	newChecker = func() toolcheck.Checker {
		return &toolcheck.ExecChecker{
			Timeout:     config.CheckTimeout(),
			MinVersions: config.MinVersions(),
			Logger:      logging.L(),
		}
	}

	newInstallRunner = func(stdout, stderr io.Writer) install.Runner {
		return &install.ExecRunner{Stdout: stdout, Stderr: stderr}
	}
)

// newSanitizer returns a sanitizer that also refuses the configured extra
// reserved identifiers.
func newSanitizer() *naming.Sanitizer {
	return naming.NewSanitizer(naming.DefaultReserved(), config.ReservedIdentifiers())
}
