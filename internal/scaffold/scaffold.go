package scaffold

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stackgen-labs/stackgen/internal/choice"
	"github.com/stackgen-labs/stackgen/internal/install"
	"github.com/stackgen-labs/stackgen/internal/logging"
	"github.com/stackgen-labs/stackgen/internal/manifest"
	"github.com/stackgen-labs/stackgen/internal/naming"
)

//go:embed all:scaffolds
var scaffoldFS embed.FS

// ErrTargetExists is returned when the project directory already exists.
var ErrTargetExists = errors.New("target directory already exists")

// Folders are created in every project, relative to its root.
var Folders = []string{
	"src/features/auth/components",
	"src/features/auth/hooks",
	"src/features/auth/services",
	"src/components",
	"src/lib",
	"src/hooks",
	"src/utils",
	"public",
}

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name           string // raw project name, also the directory name
	PackageName    string // sanitized package identifier
	DisplayName    string // e.g. "My App" for "my-app"
	PackageManager string
	Backend        string
	BackendTitle   string // e.g. "Supabase"
	DevCommand     string // e.g. "pnpm dev"
	Year           int
}

// NewData derives template variables from the project options.
func NewData(opts Options, now time.Time) *Data {
	title := cases.Title(language.English)
	words := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(opts.Name)

	return &Data{
		Name:           opts.Name,
		PackageName:    opts.PackageName.String(),
		DisplayName:    title.String(strings.Join(strings.Fields(words), " ")),
		PackageManager: opts.PackageManager.String(),
		Backend:        opts.Backend.String(),
		BackendTitle:   title.String(opts.Backend.String()),
		DevCommand:     install.DevCommand(opts.PackageManager),
		Year:           now.Year(),
	}
}

// Options describes the project to generate.
type Options struct {
	Name           string             // must pass naming.Validate
	PackageName    naming.PackageName // written to package.json, never the raw name
	PackageManager choice.PackageManager
	Backend        choice.Backend
	Install        bool
	KeepOnFailure  bool   // leave a partial project on disk when generation fails
	Version        string // generator version recorded in .stackgen.yaml
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	Dir       string
	Files     []string // slash-separated, relative to Dir
	Installed bool
	Warnings  []string
}

// Installer installs a generated project's dependencies.
type Installer interface {
	Install(ctx context.Context, dir string, pm choice.PackageManager, b choice.Backend) error
}

// Materializer creates projects on disk.
type Materializer struct {
	Parent    string // directory the project is created in; "" means the working directory
	Installer Installer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Materialize creates the project directory, its folder layout, the rendered
// templates and package.json, optionally installs dependencies, and finally
// writes the .stackgen.yaml record.
// Unless opts.KeepOnFailure is set, any failure (including cancellation of
// ctx) removes the directory it created.
func (m *Materializer) Materialize(ctx context.Context, opts Options) (res *Result, err error) {
	if verr := naming.Validate(opts.Name); verr != nil {
		return nil, fmt.Errorf("refusing to scaffold: %w", verr)
	}
	if opts.PackageName == "" {
		return nil, errors.New("refusing to scaffold: package name is empty")
	}
	if !slices.Contains(choice.PackageManagers(), opts.PackageManager) {
		return nil, fmt.Errorf("refusing to scaffold: unknown package manager %q", opts.PackageManager)
	}
	if !slices.Contains(choice.Backends(), opts.Backend) {
		return nil, fmt.Errorf("refusing to scaffold: unknown backend %q", opts.Backend)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := m.logger().With("project", opts.Name)
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	dir := filepath.Join(m.Parent, opts.Name)
	if _, statErr := os.Lstat(dir); statErr == nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, dir)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrTargetExists, dir)
		}
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	log.Debug("scaffold.created", "dir", dir)

	defer func() {
		if err == nil || opts.KeepOnFailure {
			return
		}
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn("scaffold.cleanup_failed", "dir", dir, "err", rmErr)
			return
		}
		log.Debug("scaffold.cleaned_up", "dir", dir, "cause", err)
	}()

	res = &Result{Dir: dir}

	for _, folder := range Folders {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(folder)), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", folder, err)
		}
	}

	data := NewData(opts, now())
	for _, set := range []string{"common", opts.Backend.String()} {
		files, err := renderSet(ctx, set, dir, data)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, files...)
	}

	pkg, err := manifest.MarshalPackageJSON(manifest.NewPackageJSON(opts.PackageName.String()))
	if err != nil {
		return nil, err
	}
	if err := writeManifest(dir, manifest.PackageJSONFile, manifest.KindPackageJSON, pkg, res); err != nil {
		return nil, err
	}

	if opts.Install {
		if m.Installer == nil {
			return nil, errors.New("install requested but no installer configured")
		}
		if err := m.Installer.Install(ctx, dir, opts.PackageManager, opts.Backend); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Installed = true
	}

	record := manifest.NewStackRecord(opts.Name, opts.PackageName.String(),
		opts.PackageManager.String(), opts.Backend.String(), versionOrDev(opts.Version), now())
	record.Installed = res.Installed
	if err := writeRecord(dir, record, res); err != nil {
		return nil, err
	}

	log.Debug("scaffold.done", "files", len(res.Files), "installed", res.Installed)
	return res, nil
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return logging.L()
}

// renderSet writes one embedded template set into dir. Files ending in .tmpl
// are executed with data and lose the suffix; everything else is copied
// verbatim. A leading "_" in a file name becomes "." so dotfiles can live in
// the embedded tree.
func renderSet(ctx context.Context, set, dir string, data *Data) ([]string, error) {
	root := path.Join("scaffolds", set)
	if _, err := fs.Stat(scaffoldFS, root); err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", set, err)
	}

	var files []string
	err := fs.WalkDir(scaffoldFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := outputName(strings.TrimPrefix(p, root+"/"))
		dst := filepath.Join(dir, filepath.FromSlash(rel))

		content, err := fs.ReadFile(scaffoldFS, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		if strings.HasSuffix(p, ".tmpl") {
			tmpl, err := template.New(path.Base(p)).Option("missingkey=error").Parse(string(content))
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", p, err)
			}
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return fmt.Errorf("executing template %s: %w", p, err)
			}
			content = buf.Bytes()
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// outputName maps an embedded path to the path written in the project.
func outputName(rel string) string {
	rel = strings.TrimSuffix(rel, ".tmpl")
	dirPart, base := path.Split(rel)
	if strings.HasPrefix(base, "_") {
		base = "." + base[1:]
	}
	return dirPart + base
}

func writeManifest(dir, name string, kind manifest.Kind, data []byte, res *Result) error {
	result, err := manifest.Validate(kind, data)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Could not validate %s: %v", name, err))
	} else if !result.Valid {
		for _, issue := range result.Issues {
			res.Warnings = append(res.Warnings, name+": "+issue.String())
		}
	}

	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	res.Files = append(res.Files, name)
	return nil
}

func writeRecord(dir string, record *manifest.StackRecord, res *Result) error {
	data, err := manifest.MarshalStackRecord(record)
	if err != nil {
		return err
	}
	return writeManifest(dir, manifest.StackRecordFile, manifest.KindStackRecord, data, res)
}

func versionOrDev(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

// NextSteps returns the commands a user runs after generation.
func NextSteps(name string, pm choice.PackageManager, installed bool) []string {
	steps := []string{"cd " + name}
	if !installed {
		steps = append(steps, pm.String()+" install")
	}
	return append(steps, install.DevCommand(pm))
}
