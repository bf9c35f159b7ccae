// Package debug provides category-based debug logging for the chat client
// and its binaries.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): CHATGPT_DEBUG env or config
//   - Levels (HOW MUCH detail): CHATGPT_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("client", "dispatch", "url", url)
//	if debug.Enabled("http") { /* expensive formatting */ }
//
// Categories: client, http, stream, config, mock, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
)

// LevelTrace is below slog.LevelDebug. At TRACE, raw request bodies are
// written to stderr.
const LevelTrace = slog.LevelDebug - 4

// categories is read-only after Init.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("CHATGPT_DEBUG"))
}

// Init configures categories and the default slog handler. Environment
// values take precedence over the arguments.
func Init(configCategories string, configLevel string) {
	cats := os.Getenv("CHATGPT_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("CHATGPT_LOG_LEVEL")
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

// Log emits a debug message for the given category. No-op when the category
// is disabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a TRACE-level message for the given category.
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

// Raw writes text to stderr unformatted. Only emitted at TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, text)
}

// RedactHeaders returns a copy of h that is safe to log: credentials are
// masked, everything else is copied verbatim.
func RedactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		switch strings.ToLower(k) {
		case "authorization":
			out[k] = []string{"Bearer ****"}
		case "openai-organization":
			masked := make([]string, len(vals))
			for i, v := range vals {
				masked[i] = Mask(v)
			}
			out[k] = masked
		default:
			out[k] = append([]string(nil), vals...)
		}
	}
	return out
}

// Mask keeps the first and last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// ParseLevel converts a level string to a slog.Level. Unknown values map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories, sorted.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
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
