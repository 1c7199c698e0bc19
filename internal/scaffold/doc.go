// Package scaffold materializes new projects from embedded templates. It
// powers the "stackgen new" command: it creates the feature-based folder
// layout, renders the common and backend-specific template sets, writes
// package.json and the .stackgen.yaml record, and optionally hands the
// project to a package manager. A failed or interrupted run removes the
// directory it created.
package scaffold
