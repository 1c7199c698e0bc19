// Package cli defines the Cobra command tree for the stackgen CLI. Each file
// in this package registers one top-level command (new, validate, doctor,
// config, version) with the root command. Command implementations delegate
// to internal packages for the actual work and only handle flag parsing,
// I/O formatting and user interaction.
package cli
