package pathutil

import (
	"os"
	"path/filepath"

	"github.com/mdraley/xsdtools/xsderrors"
)

// SanitizeOutputPath cleans an output file path and returns it absolute.
// The path may name a new file in any directory, or an existing regular
// file. Symlinks and directories are refused.
func SanitizeOutputPath(path string) (string, error) {
	if path == "" {
		return "", &xsderrors.ConfigError{Option: "output", Message: "path is empty"}
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", &xsderrors.ConfigError{Option: "output", Value: path, Cause: err}
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", &xsderrors.ConfigError{Option: "output", Value: path, Message: "refusing to write to symlink"}
		}
		if info.IsDir() {
			return "", &xsderrors.ConfigError{Option: "output", Value: path, Message: "is a directory"}
		}
	case os.IsNotExist(err):
	default:
		return "", &xsderrors.IOError{Path: abs, Op: "stat", Cause: err}
	}
	return abs, nil
}
