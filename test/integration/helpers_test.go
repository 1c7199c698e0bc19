//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	ParentDir string // where projects get generated
	BinDir    string // fake package managers, first on PATH
	LogFile   string // every fake package-manager invocation is appended here
}

// setupTestEnv creates isolated temp directories and puts BinDir alone on
// PATH so only the fake tools installed with installFakePM can be found.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package managers are shell scripts")
	}

	env := &testEnv{
		ParentDir: t.TempDir(),
		BinDir:    t.TempDir(),
	}
	env.LogFile = filepath.Join(env.BinDir, "invocations.log")

	t.Setenv("PATH", env.BinDir)
	t.Setenv("FAKE_PM_LOG", env.LogFile)
	t.Setenv("FAKE_PM_EXIT", "0")
	return env
}

// installFakePM writes an executable named name that reports version for
// --version and otherwise logs its arguments and exits with $FAKE_PM_EXIT.
func installFakePM(t *testing.T, env *testEnv, name, version string) {
	t.Helper()
	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "` + version + `"
  exit 0
fi
echo "` + name + ` $*" >> "$FAKE_PM_LOG"
exit "$FAKE_PM_EXIT"
`
	path := filepath.Join(env.BinDir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("writing fake %s: %v", name, err)
	}
}

// invocations returns the logged fake package-manager command lines.
func invocations(t *testing.T, env *testEnv) []string {
	t.Helper()
	data, err := os.ReadFile(env.LogFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading %s: %v", env.LogFile, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
