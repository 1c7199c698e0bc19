// Package prompt drives the interactive questions asked by "stackgen new".
// It reads answers line by line from an io.Reader, hands each attempt to the
// pure resolvers in packages naming and choice, and re-asks until an answer
// is usable. It never touches the filesystem.
package prompt
