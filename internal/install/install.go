package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/stackgen-labs/stackgen/internal/choice"
	"github.com/stackgen-labs/stackgen/internal/logging"
)

// Command is one package-manager invocation.
type Command struct {
	Name string   // executable, e.g. "pnpm"
	Args []string // arguments after the executable
}

// Argv returns the full argument vector.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// DevDependencies are installed for every project regardless of backend.
var DevDependencies = []string{"vite", "@vitejs/plugin-react", "tailwindcss", "@tailwindcss/vite"}

// BackendSDK returns the client SDK package for a backend.
func BackendSDK(b choice.Backend) string {
	switch b {
	case choice.Supabase:
		return "@supabase/supabase-js"
	default:
		return "firebase"
	}
}

// Dependencies returns the runtime dependencies for a backend.
func Dependencies(b choice.Backend) []string {
	return []string{"react", "react-dom", BackendSDK(b)}
}

// Verb returns the subcommand that adds packages: npm uses "install", pnpm and
// bun use "add".
func Verb(pm choice.PackageManager) string {
	if pm == choice.NPM {
		return "install"
	}
	return "add"
}

// DevFlag returns the flag marking packages as development dependencies.
func DevFlag(pm choice.PackageManager) string {
	if pm == choice.NPM {
		return "--save-dev"
	}
	return "-D"
}

// Plan returns the commands that install a project's dependencies: runtime
// dependencies first, then development dependencies.
func Plan(pm choice.PackageManager, b choice.Backend) []Command {
	name := pm.String()
	verb := Verb(pm)

	runtimeArgs := append([]string{verb}, Dependencies(b)...)
	devArgs := append([]string{verb, DevFlag(pm)}, DevDependencies...)

	return []Command{
		{Name: name, Args: runtimeArgs},
		{Name: name, Args: devArgs},
	}
}

// DevCommand is the command that starts the development server.
func DevCommand(pm choice.PackageManager) string {
	if pm == choice.NPM {
		return "npm run dev"
	}
	return pm.String() + " dev"
}

// Error reports a failed install command.
type Error struct {
	Command  Command
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("running %s: %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner executes a command inside dir.
type Runner interface {
	Run(ctx context.Context, dir string, cmd Command) error
}

// ExecRunner runs commands with os/exec, streaming output to Stdout/Stderr.
type ExecRunner struct {
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes cmd in dir. A non-zero exit or a start failure is returned as
// *Error.
func (r *ExecRunner) Run(ctx context.Context, dir string, cmd Command) error {
	bin, err := exec.LookPath(cmd.Name)
	if err != nil {
		return &Error{Command: cmd, ExitCode: -1, Err: err}
	}

	c := exec.CommandContext(ctx, bin, cmd.Args...)
	c.Dir = dir

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stderrBuf bytes.Buffer
	c.Stdout = stdout
	c.Stderr = io.MultiWriter(stderr, &stderrBuf)

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error{Command: cmd, ExitCode: -1, Stderr: stderrBuf.String(), Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Error{Command: cmd, ExitCode: exitErr.ExitCode(), Stderr: stderrBuf.String(), Err: err}
		}
		return &Error{Command: cmd, ExitCode: -1, Err: err}
	}
	return nil
}

// Installer installs dependencies for a generated project.
type Installer struct {
	Runner Runner
	Logger *slog.Logger
}

// New returns an Installer backed by r.
func New(r Runner) *Installer {
	return &Installer{Runner: r}
}

// Install runs the install plan in dir, stopping at the first failure.
func (i *Installer) Install(ctx context.Context, dir string, pm choice.PackageManager, b choice.Backend) error {
	log := i.Logger
	if log == nil {
		log = logging.L()
	}
	runner := i.Runner
	if runner == nil {
		runner = &ExecRunner{}
	}

	for _, cmd := range Plan(pm, b) {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("install.run", "dir", dir, "cmd", cmd.String())
		if err := runner.Run(ctx, dir, cmd); err != nil {
			log.Debug("install.failed", "cmd", cmd.String(), "err", err)
			return fmt.Errorf("installing dependencies: %w", err)
		}
	}
	return nil
}
