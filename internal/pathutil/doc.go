// Package pathutil cleans file paths that come from users or clients.
//
// [SanitizeOutputPath] validates an output file path before a command or
// MCP tool writes to it, and [Display] shortens a path for messages that
// leave the process.
package pathutil
