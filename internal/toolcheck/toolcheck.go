// Package toolcheck reports whether a package manager can be invoked on this
// host. A tool counts as available when it resolves on PATH, answers
// "<tool> --version" with exit code 0 before the timeout, and, when a minimum
// version is configured, reports a version satisfying it.
package toolcheck

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/stackgen-labs/stackgen/internal/logging"
)

// DefaultTimeout bounds a single "--version" probe.
const DefaultTimeout = 5 * time.Second

// Result is the outcome of probing one tool.
type Result struct {
	Name      string
	Path      string
	Version   *semver.Version
	Raw       string // trimmed "--version" output
	Available bool
	Reason    string // why Available is false
}

// VersionString returns the parsed version or the raw output.
func (r Result) VersionString() string {
	if r.Version != nil {
		return r.Version.String()
	}
	return r.Raw
}

// Checker probes tools.
type Checker interface {
	Check(ctx context.Context, name string) Result
}

// RunFunc runs path with args and returns its stdout.
type RunFunc func(ctx context.Context, path string, args ...string) ([]byte, error)

// ExecChecker probes tools by executing them.
type ExecChecker struct {
	// LookPath and Run default to exec.LookPath and exec.CommandContext.
	LookPath func(file string) (string, error)
	Run      RunFunc
	Timeout  time.Duration
	// MinVersions maps tool name to a semver constraint such as ">= 8.0.0".
	MinVersions map[string]string
	Logger      *slog.Logger
}

// New returns an ExecChecker with the given minimum version constraints.
func New(minVersions map[string]string) *ExecChecker {
	return &ExecChecker{MinVersions: minVersions}
}

// Available is Check(ctx, name).Available.
func (c *ExecChecker) Available(ctx context.Context, name string) bool {
	return c.Check(ctx, name).Available
}

// Check probes a single tool.
func (c *ExecChecker) Check(ctx context.Context, name string) Result {
	res := Result{Name: name}
	log := c.logger().With("tool", name)

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		res.Reason = "not found in PATH"
		log.Debug("toolcheck.missing", "err", err)
		return res
	}
	res.Path = path

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := c.Run
	if run == nil {
		run = runCommand
	}
	out, err := run(probeCtx, path, "--version")
	if err != nil {
		res.Reason = fmt.Sprintf("%s --version failed: %v", name, err)
		log.Debug("toolcheck.probe_failed", "path", path, "err", err)
		return res
	}

	res.Raw = firstLine(out)
	res.Version = parseVersion(res.Raw)

	constraint := strings.TrimSpace(c.MinVersions[name])
	if constraint == "" {
		res.Available = true
		log.Debug("toolcheck.available", "path", path, "version", res.VersionString())
		return res
	}

	ok, reason := satisfies(res.Version, constraint)
	res.Available = ok
	res.Reason = reason
	log.Debug("toolcheck.constraint", "constraint", constraint, "version", res.VersionString(), "ok", ok)
	return res
}

func (c *ExecChecker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.L()
}

// CheckAll probes every tool concurrently. Results keep the order of names.
func CheckAll(ctx context.Context, c Checker, names []string) []Result {
	results := make([]Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			results[i] = c.Check(gctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}

// parseVersion extracts a version from output such as "10.2.4", "v1.1.8" or
// "pnpm 9.0.0". It returns nil when nothing parses.
func parseVersion(raw string) *semver.Version {
	for _, field := range strings.Fields(raw) {
		if v, err := semver.NewVersion(strings.TrimPrefix(field, "v")); err == nil {
			return v
		}
	}
	return nil
}

func satisfies(v *semver.Version, constraint string) (bool, string) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Sprintf("invalid version constraint %q: %v", constraint, err)
	}
	if v == nil {
		return false, fmt.Sprintf("could not determine version to check %q", constraint)
	}
	if !c.Check(v) {
		return false, fmt.Sprintf("version %s does not satisfy %q", v, constraint)
	}
	return true, ""
}
