package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackgen-labs/stackgen/internal/choice"
	"github.com/stackgen-labs/stackgen/internal/config"
	"github.com/stackgen-labs/stackgen/internal/install"
	"github.com/stackgen-labs/stackgen/internal/logging"
	"github.com/stackgen-labs/stackgen/internal/naming"
	"github.com/stackgen-labs/stackgen/internal/prompt"
	"github.com/stackgen-labs/stackgen/internal/scaffold"
	"github.com/stackgen-labs/stackgen/internal/ui"
)

var (
	newPM            string
	newBackend       string
	newInstall       bool
	newNoInstall     bool
	newYes           bool
	newDir           string
	newKeepOnFailure bool
)

func init() {
	f := newCmd.Flags()
	f.StringVar(&newPM, "pm", "", "Package manager: npm, pnpm, bun (or 1-3)")
	f.StringVar(&newBackend, "backend", "", "Backend: firebase, supabase (or 1-2)")
	f.BoolVar(&newInstall, "install", false, "Install dependencies after generating")
	f.BoolVar(&newNoInstall, "no-install", false, "Skip dependency installation")
	f.BoolVarP(&newYes, "yes", "y", false, "Use defaults for every question not answered by a flag")
	f.StringVar(&newDir, "dir", "", "Parent directory for the project (default: current directory)")
	f.BoolVar(&newKeepOnFailure, "keep-on-failure", false, "Keep the partial project when a step fails")
	newCmd.MarkFlagsMutuallyExclusive("install", "no-install")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a React + Vite + Tailwind project with a feature-based layout.

Questions not answered by flags are asked interactively. With --yes the
configured defaults are used instead and the project name must be given as an
argument.`,
	Example: `  stackgen new
  stackgen new shop --pm pnpm --backend supabase
  stackgen new shop --yes --no-install --dir ~/code`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.L()

	answers, err := collectAnswers(cmd, args)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("cancelled, nothing was created: %w", err)
		}
		return err
	}

	pkg, err := newSanitizer().Sanitize(answers.Name)
	if err != nil {
		return fmt.Errorf("cannot derive a package name from %q: %w", answers.Name, err)
	}
	log.Debug("new.answers",
		"name", answers.Name, "package", pkg.String(),
		"pm", answers.PackageManager.String(), "backend", answers.Backend.String(),
		"install", answers.Install)

	tool := newChecker().Check(ctx, answers.PackageManager.String())
	if !tool.Available {
		if answers.Install {
			return fmt.Errorf("%s is not usable (%s); choose another package manager or pass --no-install",
				answers.PackageManager, tool.Reason)
		}
		ui.Warning("%s is not usable (%s). Install it before running the project.", answers.PackageManager, tool.Reason)
	}

	m := &scaffold.Materializer{
		Parent: newDir,
		Installer: &install.Installer{
			Runner: newInstallRunner(cmd.OutOrStdout(), cmd.ErrOrStderr()),
			Logger: log,
		},
		Logger: log,
	}
	if answers.Install {
		ui.Info("Installing dependencies with %s...", answers.PackageManager)
	}

	res, err := m.Materialize(ctx, scaffold.Options{
		Name:           answers.Name,
		PackageName:    pkg,
		PackageManager: answers.PackageManager,
		Backend:        answers.Backend,
		Install:        answers.Install,
		KeepOnFailure:  newKeepOnFailure,
		Version:        currentBuild().Version,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("cancelled, nothing was kept: %w", err)
		}
		return fmt.Errorf("creating project: %w", err)
	}

	for _, w := range res.Warnings {
		ui.Warning("%s", w)
	}
	ui.Success("Created %s (package %s, %s, %s)", res.Dir, pkg, answers.PackageManager, answers.Backend)
	ui.Printf("")
	ui.Printf("Next steps:")
	for _, step := range scaffold.NextSteps(filepath.Join(newDir, answers.Name), answers.PackageManager, res.Installed) {
		ui.Printf("  %s", step)
	}
	return nil
}

// collectAnswers merges flags, config defaults and, unless --yes is set,
// interactive answers for everything the flags left open.
func collectAnswers(cmd *cobra.Command, args []string) (*prompt.Answers, error) {
	flags := cmd.Flags()
	a := prompt.Answers{
		PackageManager: config.PackageManager(),
		Backend:        config.Backend(),
		Install:        config.Install(),
	}

	pmSet := flags.Changed("pm")
	if pmSet {
		pm, err := resolveFlag("pm", newPM, choice.ResolvePackageManager, "npm, pnpm or bun")
		if err != nil {
			return nil, err
		}
		a.PackageManager = pm
	}

	backendSet := flags.Changed("backend")
	if backendSet {
		b, err := resolveFlag("backend", newBackend, choice.ResolveBackend, "firebase or supabase")
		if err != nil {
			return nil, err
		}
		a.Backend = b
	}

	installSet := true
	switch {
	case flags.Changed("no-install"):
		a.Install = !newNoInstall
	case flags.Changed("install"):
		a.Install = newInstall
	default:
		installSet = false
	}

	if len(args) == 1 {
		a.Name = args[0]
	}

	if newYes {
		if a.Name == "" {
			return nil, errors.New("a project name argument is required with --yes")
		}
		if err := naming.Validate(a.Name); err != nil {
			return nil, err
		}
		return &a, nil
	}

	p := prompt.NewContext(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())

	if a.Name != "" {
		if err := naming.Validate(a.Name); err != nil {
			ui.Warning("%s", err)
			a.Name = ""
		}
	}

	var err error
	if a.Name == "" {
		if a.Name, err = p.ProjectName(""); err != nil {
			return nil, err
		}
	}
	if !pmSet {
		if a.PackageManager, err = p.PackageManager(a.PackageManager); err != nil {
			return nil, err
		}
	}
	if !backendSet {
		if a.Backend, err = p.Backend(a.Backend); err != nil {
			return nil, err
		}
	}
	if !installSet {
		if a.Install, err = p.Install(a.Install, a.PackageManager); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// resolveFlag resolves a flag value with the same rules as the interactive
// menus, except that an empty value is an error.
func resolveFlag[T any](name, value string, resolve func(string) (T, bool), allowed string) (T, error) {
	var zero T
	if strings.TrimSpace(value) == "" {
		return zero, fmt.Errorf("--%s needs a value: choose %s", name, allowed)
	}
	v, ok := resolve(value)
	if !ok {
		return zero, fmt.Errorf("invalid --%s %q: choose %s", name, value, allowed)
	}
	return v, nil
}
