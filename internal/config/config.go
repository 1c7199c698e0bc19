package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"

	"github.com/stackgen-labs/stackgen/internal/branding"
	"github.com/stackgen-labs/stackgen/internal/choice"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known keys.
const (
	KeyPackageManager      = "package_manager"
	KeyBackend             = "backend"
	KeyInstall             = "install"
	KeyReservedIdentifiers = "reserved_identifiers"
	KeyCheckTimeout        = "check_timeout"
	KeyMinVersions         = "min_versions"
)

// DefaultMinVersions are the oldest package manager releases known to
// handle the generated project.
var DefaultMinVersions = map[string]string{
	"npm":  ">= 7.0.0",
	"pnpm": ">= 8.0.0",
	"bun":  ">= 1.0.0",
}

var fileOverride string

// Dir returns the path to the config directory (~/.stackgen/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file. SetFile overrides it.
func FilePath() string {
	if fileOverride != "" {
		return fileOverride
	}
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// SetFile points the config at path instead of ~/.stackgen/config.yaml.
// An empty path restores the default.
func SetFile(path string) {
	fileOverride = path
}

// EnsureDir creates the directory holding the config file.
func EnsureDir() error {
	dir := filepath.Dir(FilePath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// A missing file is not an error; a file that exists but cannot be parsed is.
func Load() error {
	viper.SetDefault(KeyPackageManager, string(choice.NPM))
	viper.SetDefault(KeyBackend, string(choice.Firebase))
	viper.SetDefault(KeyInstall, true)
	viper.SetDefault(KeyReservedIdentifiers, []string{})
	viper.SetDefault(KeyCheckTimeout, "5s")
	for pm, c := range DefaultMinVersions {
		viper.SetDefault(KeyMinVersions+"."+pm, c)
	}

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", FilePath(), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Display returns the value of key formatted for the terminal. Lists are
// joined with commas.
func Display(key string) string {
	if key == KeyReservedIdentifiers {
		return strings.Join(ReservedIdentifiers(), ",")
	}
	return Get(key)
}

// PackageManager returns the configured default package manager, falling back
// to npm when the stored value does not resolve.
func PackageManager() choice.PackageManager {
	pm, ok := choice.ResolvePackageManager(Get(KeyPackageManager))
	if !ok {
		return choice.NPM
	}
	return pm
}

// Backend returns the configured default backend, falling back to firebase.
func Backend() choice.Backend {
	b, ok := choice.ResolveBackend(Get(KeyBackend))
	if !ok {
		return choice.Firebase
	}
	return b
}

// Install reports whether dependencies are installed by default.
func Install() bool {
	return viper.GetBool(KeyInstall)
}

// ReservedIdentifiers returns extra package names to refuse, in addition to
// the built-in list. A comma-separated env value is accepted.
func ReservedIdentifiers() []string {
	var out []string
	for _, v := range viper.GetStringSlice(KeyReservedIdentifiers) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// CheckTimeout bounds a single package-manager probe.
func CheckTimeout() time.Duration {
	d, err := time.ParseDuration(Get(KeyCheckTimeout))
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// MinVersions returns the version constraint for every package manager. An
// empty constraint disables the gate for that tool.
func MinVersions() map[string]string {
	out := make(map[string]string, len(DefaultMinVersions))
	for _, pm := range choice.PackageManagers() {
		out[pm.String()] = Get(KeyMinVersions + "." + pm.String())
	}
	return out
}

// Keys lists the keys "config set" accepts.
func Keys() []string {
	keys := []string{KeyPackageManager, KeyBackend, KeyInstall, KeyReservedIdentifiers, KeyCheckTimeout}
	for _, pm := range choice.PackageManagers() {
		keys = append(keys, KeyMinVersions+"."+pm.String())
	}
	sort.Strings(keys)
	return keys
}

// Normalize checks value for key and returns the form stored in the file.
// Package manager and backend accept the same numbers and names as the
// interactive menus.
func Normalize(key, value string) (any, error) {
	switch {
	case key == KeyPackageManager:
		pm, ok := choice.ResolvePackageManager(value)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("invalid %s %q: choose npm, pnpm or bun", key, value)
		}
		return pm.String(), nil
	case key == KeyBackend:
		b, ok := choice.ResolveBackend(value)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("invalid %s %q: choose firebase or supabase", key, value)
		}
		return b.String(), nil
	case key == KeyInstall:
		v, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: expected true or false", key, value)
		}
		return v, nil
	case key == KeyReservedIdentifiers:
		var ids []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
		return ids, nil
	case key == KeyCheckTimeout:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s %q: expected a positive duration such as 5s", key, value)
		}
		return d.String(), nil
	case strings.HasPrefix(key, KeyMinVersions+"."):
		pm := strings.TrimPrefix(key, KeyMinVersions+".")
		if _, ok := DefaultMinVersions[pm]; !ok {
			return nil, fmt.Errorf("unknown package manager %q in %s", pm, key)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return "", nil
		}
		if _, err := semver.NewConstraint(value); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set validates a key-value pair, stores it and saves the config file.
func Set(key, value string) error {
	normalized, err := Normalize(key, value)
	if err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, normalized)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
