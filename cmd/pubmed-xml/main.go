// Package main provides the pubmed-xml CLI entry point.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	os.Exit(execute(os.Stderr))
}

// execute runs the root command and reports argument or flag errors,
// which cobra leaves silent, on stderr.
func execute(stderr io.Writer) int {
	if err := rootCmd.Execute(); err != nil {
		reportError(stderr, err)
		return ExitError
	}
	return ExitSuccess
}

var rootCmd = &cobra.Command{
	Use:   "pubmed-xml [flags] <input>...",
	Short: "Convert PubMed XML into JSON lines",
	Long: `pubmed-xml extracts normalized article records from PubMed XML.

Each input is a path to an XML file (optionally .gz), literal XML text, or a
bare PMID which is fetched from NCBI E-utilities. One JSON object is written
per article, in document order, to stdout or the file given with --outfile.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runParse,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Ignore error: .env is optional
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.Version = Version
}

// newLogger returns a stderr logger when --verbose is set, otherwise one
// that discards everything.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
