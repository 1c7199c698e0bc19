package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// MarshalPackageJSON renders p the way npm writes package.json: two-space
// indent and a trailing newline.
func MarshalPackageJSON(p *PackageJSON) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encoding package.json: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalStackRecord renders r as YAML.
func MarshalStackRecord(r *StackRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", StackRecordFile, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", StackRecordFile, err)
	}
	return buf.Bytes(), nil
}

// ParsePackageJSON reads a package.json file.
func ParsePackageJSON(path string) (*PackageJSON, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var p PackageJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &p, nil
}

// ParseStackRecord reads a .stackgen.yaml file.
func ParseStackRecord(path string) (*StackRecord, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var r StackRecord
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &r, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
