package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/matsen/pubmedxml/internal/efetch"
	"github.com/matsen/pubmedxml/internal/extract"
	"github.com/matsen/pubmedxml/internal/source"
	"github.com/segmentio/encoding/json"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// reportError writes a non-fatal error to w. Records own stdout, so errors
// always go to stderr, as JSON unless --human is set.
func reportError(w io.Writer, err error) {
	if humanOutput {
		fmt.Fprintf(w, "%s %v\n", errorLabel.Sprint("error:"), err)
		return
	}
	writeJSONLine(w, ErrorResponse{Error: err.Error()})
}

// reportWarning writes a diagnostic about an input to w.
func reportWarning(w io.Writer, input, msg string) {
	if humanOutput {
		fmt.Fprintf(w, "%s %s: %s\n", warningLabel.Sprint("warning:"), input, msg)
		return
	}
	writeJSONLine(w, WarningResponse{Warning: msg, Input: input})
}

func writeJSONLine(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...any) {
	reportError(os.Stderr, fmt.Errorf(format, args...))
	os.Exit(code)
}

// exitCodeFor maps a pipeline error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case efetch.IsNetworkError(err), efetch.IsRateLimited(err):
		return ExitNetworkError
	case errors.Is(err, source.ErrNoFetcher):
		return ExitConfigError
	case errors.Is(err, source.ErrParse), extract.IsRecordError(err):
		return ExitDataError
	case errors.Is(err, efetch.ErrInvalidPMID), efetch.IsNotFound(err), errors.Is(err, efetch.ErrInvalidResponse):
		return ExitDataError
	}
	return ExitError
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WarningResponse is a JSON diagnostic about one input.
type WarningResponse struct {
	Warning string `json:"warning"`
	Input   string `json:"input"`
}

// WrittenResponse reports a completed run into a file.
type WrittenResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Records int    `json:"records"`
	Failed  int    `json:"failed,omitempty"`
	Empty   int    `json:"empty,omitempty"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Removed int    `json:"removed"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// truncateString truncates a string to at most maxLen bytes, adding "..."
// if truncated. The cut never splits a UTF-8 sequence.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
