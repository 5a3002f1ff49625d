package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Result paging.
	GroupLimit int
	MaxLimit   int

	// Pipeline defaults.
	Workers  int
	AutoPick bool
	FoldCase bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from XSDTOOLS_MCP_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		GroupLimit: envInt("XSDTOOLS_MCP_GROUP_LIMIT", 100),
		MaxLimit:   envInt("XSDTOOLS_MCP_MAX_LIMIT", 1000),
		Workers:    envInt("XSDTOOLS_MCP_WORKERS", 4),
		AutoPick:   envBool("XSDTOOLS_MCP_AUTO_PICK", false),
		FoldCase:   envBool("XSDTOOLS_MCP_FOLD_CASE", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}
