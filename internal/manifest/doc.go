// Package manifest builds, parses and validates the two manifests a generated
// project carries: package.json and the .stackgen.yaml project record. Both
// are checked against JSON Schemas embedded in the binary.
package manifest
