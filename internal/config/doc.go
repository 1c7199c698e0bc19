// Package config manages user-level settings stored at ~/.stackgen/config.yaml.
// Values can be overridden with STACKGEN_* environment variables and provide
// the defaults "stackgen new" uses for the package manager, backend, install
// step, reserved package names and tool version gates.
package config
