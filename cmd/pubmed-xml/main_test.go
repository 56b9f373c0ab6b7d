package main

import (
	"bytes"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	// A nil slice would make cobra fall back to os.Args.
	rootCmd.SetArgs(append([]string{}, args...))
	rootCmd.SetOut(&stdout)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	code := execute(&stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	code, stdout, stderr := runRoot(t)
	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Errorf("stdout = %q, want usage text", stdout)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want nothing", stderr)
	}
}

func TestExecute_UnknownFlagReported(t *testing.T) {
	code, _, stderr := runRoot(t, "--no-such-flag")
	if code != ExitError {
		t.Errorf("exit code = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, `"error":"unknown flag: --no-such-flag"`) {
		t.Errorf("stderr = %q, want JSON unknown-flag error", stderr)
	}
}
