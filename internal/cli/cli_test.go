package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackgen-labs/stackgen/internal/install"
	"github.com/stackgen-labs/stackgen/internal/manifest"
	"github.com/stackgen-labs/stackgen/internal/toolcheck"
)

type fakeChecker map[string]toolcheck.Result

func (f fakeChecker) Check(_ context.Context, name string) toolcheck.Result {
	r, ok := f[name]
	if !ok {
		return toolcheck.Result{Name: name, Reason: "not found in PATH"}
	}
	r.Name = name
	return r
}

type fakeRunner struct {
	commands []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, cmd install.Command) error {
	f.commands = append(f.commands, cmd.String())
	return nil
}

var allAvailable = fakeChecker{
	"npm":  {Available: true, Path: "/usr/bin/npm", Raw: "10.2.4"},
	"pnpm": {Available: true, Path: "/usr/bin/pnpm", Raw: "9.1.0"},
	"bun":  {Available: true, Path: "/usr/bin/bun", Raw: "1.1.8"},
}

type env struct {
	dir    string // parent directory for generated projects
	config string // config file path
	runner *fakeRunner
}

// setupCLI isolates config, viper state and external collaborators.
func setupCLI(t *testing.T, checker toolcheck.Checker) *env {
	t.Helper()
	e := &env{
		dir:    t.TempDir(),
		config: filepath.Join(t.TempDir(), "config.yaml"),
		runner: &fakeRunner{},
	}

	origChecker, origRunner := newChecker, newInstallRunner
	newChecker = func() toolcheck.Checker { return checker }
	newInstallRunner = func(_, _ io.Writer) install.Runner { return e.runner }

	viper.Reset()
	t.Cleanup(func() {
		newChecker, newInstallRunner = origChecker, origRunner
		viper.Reset()
		resetFlags(rootCmd)
	})
	return e
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return e.runContext(t, context.Background(), strings.NewReader(stdin), args...)
}

func (e *env) runContext(t *testing.T, ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(append([]string{"--no-color", "--config", e.config}, args...))
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	defer resetFlags(rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestValidateCommand(t *testing.T) {
	e := setupCLI(t, allAvailable)

	out, err := e.run(t, "", "validate", "My_App", "con", "fs")
	if err == nil {
		t.Fatal("expected error when a name is rejected")
	}
	if !strings.Contains(err.Error(), "2 of 3 name(s) rejected") {
		t.Errorf("error = %v", err)
	}
	for _, want := range []string{
		"package name: my-app",
		`Project name "con" is a reserved Windows filename.`,
		"Reserved package name",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestValidateCommand_AllValid(t *testing.T) {
	e := setupCLI(t, allAvailable)

	out, err := e.run(t, "", "validate", "shop", "@scope")
	if err == nil {
		t.Fatal("expected @scope to be rejected")
	}

	out, err = e.run(t, "", "validate", "shop", "my.app")
	if err != nil {
		t.Fatalf("validate error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "package name: my-app") {
		t.Errorf("output = %s", out)
	}
}

func TestNewCommand_YesNoInstall(t *testing.T) {
	e := setupCLI(t, allAvailable)

	out, err := e.run(t, "", "new", "Shop_Front", "--yes", "--no-install", "--dir", e.dir, "--pm", "2", "--backend", "supabase")
	if err != nil {
		t.Fatalf("new error: %v\n%s", err, out)
	}

	projectDir := filepath.Join(e.dir, "Shop_Front")
	pkg, err := manifest.ParsePackageJSON(filepath.Join(projectDir, "package.json"))
	if err != nil {
		t.Fatalf("package.json: %v", err)
	}
	if pkg.Name != "shop-front" {
		t.Errorf("package name = %q", pkg.Name)
	}
	rec, err := manifest.ParseStackRecord(filepath.Join(projectDir, ".stackgen.yaml"))
	if err != nil {
		t.Fatalf(".stackgen.yaml: %v", err)
	}
	if rec.PackageManager != "pnpm" || rec.Backend != "supabase" || rec.Installed {
		t.Errorf("record = %+v", rec)
	}
	if _, err := os.Stat(filepath.Join(projectDir, "src", "lib", "supabase.config.js")); err != nil {
		t.Errorf("supabase client missing: %v", err)
	}
	if len(e.runner.commands) != 0 {
		t.Errorf("--no-install ran %v", e.runner.commands)
	}
	for _, want := range []string{"Next steps:", "pnpm install", "pnpm dev"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestNewCommand_Interactive(t *testing.T) {
	e := setupCLI(t, allAvailable)

	stdin := "bad name\nMy-App\n3\n1\nn\n"
	out, err := e.run(t, stdin, "new", "--dir", e.dir)
	if err != nil {
		t.Fatalf("new error: %v\n%s", err, out)
	}

	if !strings.Contains(out, "Project name can only contain letters") {
		t.Errorf("expected re-prompt diagnostic:\n%s", out)
	}
	rec, err := manifest.ParseStackRecord(filepath.Join(e.dir, "My-App", ".stackgen.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.PackageName != "my-app" || rec.PackageManager != "bun" || rec.Backend != "firebase" {
		t.Errorf("record = %+v", rec)
	}
}

func TestNewCommand_CancelDuringPrompt(t *testing.T) {
	e := setupCLI(t, allAvailable)

	stdin, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := e.runContext(t, ctx, stdin, "new", "--dir", e.dir)
		done <- outcome{out, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		if !errors.Is(res.err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled\n%s", res.err, res.out)
		}
		if !strings.Contains(res.err.Error(), "nothing was created") {
			t.Errorf("error = %v", res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("new still blocked in the prompt after cancel")
	}

	entries, _ := os.ReadDir(e.dir)
	if len(entries) != 0 {
		t.Errorf("cancelled prompt left %d entries behind", len(entries))
	}
}

func TestNewCommand_InvalidArgumentFallsBackToPrompt(t *testing.T) {
	e := setupCLI(t, allAvailable)

	out, err := e.run(t, "good\n", "new", "bad/name", "--dir", e.dir, "--pm", "npm", "--backend", "1", "--no-install")
	if err != nil {
		t.Fatalf("new error: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(e.dir, "good")); err != nil {
		t.Errorf("project from prompted name missing: %v", err)
	}
}

func TestNewCommand_InstallRunsPlan(t *testing.T) {
	e := setupCLI(t, allAvailable)

	out, err := e.run(t, "", "new", "shop", "--yes", "--install", "--dir", e.dir, "--pm", "bun")
	if err != nil {
		t.Fatalf("new error: %v\n%s", err, out)
	}

	want := []string{
		"bun add react react-dom firebase",
		"bun add -D vite @vitejs/plugin-react tailwindcss @tailwindcss/vite",
	}
	if strings.Join(e.runner.commands, "\n") != strings.Join(want, "\n") {
		t.Errorf("commands = %v, want %v", e.runner.commands, want)
	}
	rec, err := manifest.ParseStackRecord(filepath.Join(e.dir, "shop", ".stackgen.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Installed {
		t.Error("record should note the install")
	}
}

func TestNewCommand_UnavailablePackageManager(t *testing.T) {
	checker := fakeChecker{"npm": {Available: true}}

	t.Run("install requested aborts", func(t *testing.T) {
		e := setupCLI(t, checker)
		_, err := e.run(t, "", "new", "shop", "--yes", "--install", "--pm", "pnpm", "--dir", e.dir)
		if err == nil || !strings.Contains(err.Error(), "pnpm is not usable") {
			t.Fatalf("error = %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(e.dir, "shop")); !os.IsNotExist(statErr) {
			t.Error("no directory should be created when the gate fails")
		}
	})

	t.Run("no install only warns", func(t *testing.T) {
		e := setupCLI(t, checker)
		out, err := e.run(t, "", "new", "shop", "--yes", "--no-install", "--pm", "pnpm", "--dir", e.dir)
		if err != nil {
			t.Fatalf("new error: %v", err)
		}
		if !strings.Contains(out, "pnpm is not usable") {
			t.Errorf("expected warning:\n%s", out)
		}
	})
}

func TestNewCommand_SanitizationAborts(t *testing.T) {
	e := setupCLI(t, allAvailable)

	_, err := e.run(t, "", "new", "fs", "--yes", "--no-install", "--dir", e.dir)
	if err == nil || !strings.Contains(err.Error(), "Reserved package name") {
		t.Fatalf("error = %v", err)
	}

	_, err = e.run(t, "", "new", "___", "--yes", "--no-install", "--dir", e.dir)
	if err == nil {
		t.Fatal("expected error for a name that sanitizes to nothing")
	}

	entries, _ := os.ReadDir(e.dir)
	if len(entries) != 0 {
		t.Errorf("sanitization failures must not touch the filesystem, found %d entries", len(entries))
	}
}

func TestNewCommand_ConfiguredReservedIdentifiers(t *testing.T) {
	e := setupCLI(t, allAvailable)
	os.WriteFile(e.config, []byte("reserved_identifiers: [shop, My_Lib]\n"), 0644)

	for _, name := range []string{"Shop", "My_Lib", "my.lib"} {
		_, err := e.run(t, "", "new", name, "--yes", "--no-install", "--dir", e.dir)
		if err == nil || !strings.Contains(err.Error(), "Reserved package name") {
			t.Fatalf("new %s: error = %v", name, err)
		}
	}
}

func TestNewCommand_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown pm", []string{"new", "x", "--yes", "--pm", "yarn"}, `invalid --pm "yarn"`},
		{"empty backend", []string{"new", "x", "--yes", "--backend", ""}, "--backend needs a value"},
		{"yes without name", []string{"new", "--yes"}, "project name argument is required"},
		{"yes with invalid name", []string{"new", "..", "--yes"}, `cannot be "." or ".."`},
		{"exclusive install flags", []string{"new", "x", "--install", "--no-install"}, "none of the others can be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupCLI(t, allAvailable)
			_, err := e.run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestNewCommand_ExistingDirectory(t *testing.T) {
	e := setupCLI(t, allAvailable)
	os.Mkdir(filepath.Join(e.dir, "taken"), 0755)

	_, err := e.run(t, "", "new", "taken", "--yes", "--no-install", "--dir", e.dir)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error = %v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	e := setupCLI(t, fakeChecker{"npm": {Available: true, Path: "/usr/bin/npm", Raw: "10.2.4"}})

	out, err := e.run(t, "", "doctor")
	if err != nil {
		t.Fatalf("doctor error: %v", err)
	}
	for _, want := range []string{"npm", "[ OK ]", "/usr/bin/npm", "pnpm", "[MISS]", "not found in PATH"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestDoctorCommand_NothingAvailable(t *testing.T) {
	e := setupCLI(t, fakeChecker{})

	out, err := e.run(t, "", "doctor")
	if err != nil {
		t.Fatalf("doctor error: %v", err)
	}
	if !strings.Contains(out, "No usable package manager found") {
		t.Errorf("expected warning:\n%s", out)
	}
}

func TestDoctorCommand_CheckManifest(t *testing.T) {
	e := setupCLI(t, allAvailable)

	if _, err := e.run(t, "", "new", "demo", "--yes", "--no-install", "--dir", e.dir); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "", "doctor", "--check-manifest", filepath.Join(e.dir, "demo", "package.json"))
	if err != nil {
		t.Fatalf("doctor error: %v", err)
	}
	if !strings.Contains(out, "[ OK ] Valid package.json: demo (v1.0.0)") {
		t.Errorf("output:\n%s", out)
	}

	bad := filepath.Join(e.dir, "package.json")
	os.WriteFile(bad, []byte(`{"name":"Bad Name","private":true,"version":"1.0.0","type":"module","scripts":{}}`), 0644)
	out, err = e.run(t, "", "doctor", "--check-manifest", bad)
	if err == nil {
		t.Fatal("expected error for invalid manifest")
	}
	if !strings.Contains(out, "[FAIL]") || !strings.Contains(out, "/name") {
		t.Errorf("output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	e := setupCLI(t, allAvailable)
	buildVersion, buildCommit, buildDate = "1.4.0", "abc123", "2026-10-19"

	out, err := e.run(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "1.4.0" {
		t.Errorf("--short = %q", out)
	}

	out, err = e.run(t, "", "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("--json output is not JSON: %v\n%s", err, out)
	}
	if info["commit"] != "abc123" || info["go"] == "" || !strings.Contains(info["platform"], "/") {
		t.Errorf("info = %v", info)
	}

	if _, err := e.run(t, "", "version", "--short", "--json"); err == nil {
		t.Error("--short and --json should be mutually exclusive")
	}

	out, _ = e.run(t, "", "version")
	if !strings.Contains(out, "stackgen version 1.4.0 (commit: abc123, built: 2026-10-19)") {
		t.Errorf("version = %q", out)
	}

	buildVersion = ""
	if got := currentBuild().Version; got == "" {
		t.Error("an empty ldflags version should fall back to a non-empty version")
	}
}

func TestConfigCommands(t *testing.T) {
	e := setupCLI(t, allAvailable)

	if _, err := e.run(t, "", "config", "set", "package_manager", "2"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	data, err := os.ReadFile(e.config)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "package_manager: pnpm") {
		t.Errorf("config file:\n%s", data)
	}

	viper.Reset()
	out, err := e.run(t, "", "config", "get", "package_manager")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "pnpm" {
		t.Errorf("config get = %q", out)
	}

	if _, err := e.run(t, "", "config", "set", "backend", "mongo"); err == nil {
		t.Error("expected error for invalid backend")
	}

	out, err = e.run(t, "", "config", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "min_versions.pnpm") {
		t.Errorf("config list:\n%s", out)
	}
}

func TestNewCommand_UsesConfiguredDefaults(t *testing.T) {
	e := setupCLI(t, allAvailable)
	os.WriteFile(e.config, []byte("package_manager: bun\nbackend: supabase\ninstall: false\n"), 0644)

	if _, err := e.run(t, "", "new", "cfg", "--yes", "--dir", e.dir); err != nil {
		t.Fatal(err)
	}
	rec, err := manifest.ParseStackRecord(filepath.Join(e.dir, "cfg", ".stackgen.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.PackageManager != "bun" || rec.Backend != "supabase" || rec.Installed {
		t.Errorf("record = %+v", rec)
	}
	if len(e.runner.commands) != 0 {
		t.Errorf("install: false in config should skip install, ran %v", e.runner.commands)
	}
}
