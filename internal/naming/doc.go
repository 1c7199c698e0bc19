// Package naming decides whether a user-supplied project name is safe to use
// as a directory, and derives the stricter package identifier written into the
// generated package.json. Validation and sanitization are separate operations:
// Validate never rewrites its input, and Sanitize never reports directory-level
// problems. Both are pure and safe for concurrent use.
package naming
