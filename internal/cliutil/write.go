// Package cliutil provides small output helpers shared by the CLI commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// Writef writes formatted output to w. A failed write is reported on stderr
// since command output has nowhere else to go.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// Count formats n with noun, adding "s" unless n is 1.
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
