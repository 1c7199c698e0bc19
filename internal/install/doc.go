// Package install builds and runs the package-manager commands that add a
// generated project's dependencies. Command construction is pure; execution
// goes through a Runner so tests never spawn a real package manager.
package install
