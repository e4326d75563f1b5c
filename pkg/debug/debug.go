// Package debug provides category-based debug logging for opexcore.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): OPEX_DEBUG env or config, comma separated
//   - Levels (HOW MUCH detail): OPEX_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("transport", "request", "method", "GET", "path", path)
//	if debug.Enabled("transport") { /* expensive formatting */ }
//
// Categories: transport, panel, auth, config, mcp, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE. At TRACE, response bodies are
// written with credentials stripped.
package debug

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
const LevelTrace = slog.LevelDebug - 4

// maxBodyLog bounds how much of a response body is traced.
const maxBodyLog = 2048

// categories is read-only after Init.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("OPEX_DEBUG"))
}

// Init configures categories and the default slog handler. Environment
// values take precedence over the config values passed in.
func Init(configCategories string, configLevel string) {
	cats := os.Getenv("OPEX_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("OPEX_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE level is active for the category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Body traces a response body with token-bearing fields masked.
func Body(category string, label string, body []byte) {
	if !TraceIsEnabled(category) {
		return
	}
	Trace(category, label, "body", Truncate(MaskSecrets(string(body)), maxBodyLog))
}

// secretFields matches JSON string fields that carry credentials.
var secretFields = regexp.MustCompile(`("(?:access_token|accessToken|token|password|key|secret)"\s*:\s*)"[^"]*"`)

// MaskSecrets replaces the values of credential fields in a JSON text.
func MaskSecrets(s string) string {
	return secretFields.ReplaceAllString(s, `$1"***"`)
}

// SafeHeaders renders headers for logging with Authorization and Cookie
// values removed.
func SafeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Cookie", "Set-Cookie":
			out[k] = "***"
		default:
			out[k] = strings.Join(v, ",")
		}
	}
	return out
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
