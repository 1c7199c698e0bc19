package manifest

import (
	"path/filepath"
	"time"
)

// PackageJSON is the package manifest written at the project root. Name is
// always a sanitized identifier, never the raw project name.
type PackageJSON struct {
	Name            string            `json:"name" yaml:"name"`
	Private         bool              `json:"private" yaml:"private"`
	Version         string            `json:"version" yaml:"version"`
	Type            string            `json:"type" yaml:"type"`
	Scripts         map[string]string `json:"scripts" yaml:"scripts"`
	Dependencies    map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty" yaml:"devDependencies,omitempty"`
}

// StackRecord is the .stackgen.yaml file describing how a project was
// generated.
type StackRecord struct {
	Schema         int       `yaml:"schema" json:"schema"`
	Name           string    `yaml:"name" json:"name"`
	PackageName    string    `yaml:"package_name" json:"package_name"`
	PackageManager string    `yaml:"package_manager" json:"package_manager"`
	Backend        string    `yaml:"backend" json:"backend"`
	Installed      bool      `yaml:"installed" json:"installed"`
	Generator      Generator `yaml:"generator" json:"generator"`
}

// Generator identifies the stackgen build that produced a project.
type Generator struct {
	Version   string `yaml:"version" json:"version"`
	CreatedAt string `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

// Kind identifies a manifest file.
type Kind string

// Manifest kinds.
const (
	KindPackageJSON Kind = "package.json"
	KindStackRecord Kind = "stack-record"
)

// File names.
const (
	PackageJSONFile = "package.json"
	StackRecordFile = ".stackgen.yaml"
)

// StackRecordSchemaVersion is the current value of StackRecord.Schema.
const StackRecordSchemaVersion = 1

// KindOf infers the manifest kind from a file name. ok is false for files
// that are neither manifest.
func KindOf(path string) (Kind, bool) {
	switch filepath.Base(path) {
	case PackageJSONFile:
		return KindPackageJSON, true
	case StackRecordFile, ".stackgen.yml":
		return KindStackRecord, true
	default:
		return "", false
	}
}

// NewPackageJSON returns the manifest for a freshly generated project.
// Dependencies are left to the package manager.
func NewPackageJSON(packageName string) *PackageJSON {
	return &PackageJSON{
		Name:    packageName,
		Private: true,
		Version: "1.0.0",
		Type:    "module",
		Scripts: map[string]string{
			"dev":     "vite",
			"build":   "vite build",
			"preview": "vite preview",
		},
	}
}

// NewStackRecord returns a project record stamped with the generator version
// and creation time.
func NewStackRecord(name, packageName, pm, backend, version string, now time.Time) *StackRecord {
	return &StackRecord{
		Schema:         StackRecordSchemaVersion,
		Name:           name,
		PackageName:    packageName,
		PackageManager: pm,
		Backend:        backend,
		Generator: Generator{
			Version:   version,
			CreatedAt: now.UTC().Format(time.RFC3339),
		},
	}
}
