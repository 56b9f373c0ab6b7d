package main

import (
	"context"
	"io"
	"os"

	"github.com/matsen/pubmedxml/internal/config"
	"github.com/matsen/pubmedxml/internal/extract"
	"github.com/matsen/pubmedxml/internal/output"
	"github.com/matsen/pubmedxml/internal/source"
	"github.com/spf13/cobra"
)

var (
	outfile    string
	skipErrors bool
	dateSep    string
	noCache    bool
)

func init() {
	rootCmd.Flags().StringVarP(&outfile, "outfile", "o", "", "Write records to this file instead of stdout (.gz compresses)")
	rootCmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Report unreadable inputs and records on stderr and continue")
	rootCmd.Flags().StringVar(&dateSep, "date-sep", extract.DefaultDateSeparator, "Separator for pubmed_pubdate components")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or write the local fetch cache")
}

// runStats summarizes one conversion run.
type runStats struct {
	Records int
	Failed  int
	Empty   int
}

// convert loads each input in order and writes its records to w. With
// skipErrors, failed inputs and records are passed to report and counted;
// otherwise the first one is returned.
func convert(ctx context.Context, loader *source.Loader, ext *extract.Extractor, inputs []string, w *output.Writer, skipErrors bool, stderr io.Writer) (runStats, error) {
	var stats runStats
	for _, input := range inputs {
		doc, err := loader.Load(ctx, input)
		if err != nil {
			if !skipErrors {
				return stats, err
			}
			reportError(stderr, err)
			stats.Failed++
			continue
		}

		for a, err := range ext.Extract(doc) {
			if err != nil {
				if !skipErrors {
					return stats, err
				}
				reportError(stderr, err)
				stats.Failed++
				continue
			}
			if a == nil {
				reportWarning(stderr, truncateString(input, 60), "no articles found")
				stats.Empty++
				continue
			}
			if err := w.Write(a); err != nil {
				return stats, err
			}
			stats.Records++
		}
	}
	return stats, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	logger := newLogger()
	fetcher := newLazyFetcher(cfg, !noCache, logger)
	defer fetcher.Close()

	loader := source.NewLoader(fetcher)
	ext := extract.New(extract.WithLogger(logger), extract.WithDateSeparator(dateSep))

	out, err := output.Open(outfile)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	w := output.NewWriter(out)

	stats, runErr := convert(cmd.Context(), loader, ext, args, w, skipErrors, os.Stderr)

	// Records written before a failure are kept.
	if err := w.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		fetcher.Close()
		exitWithError(exitCodeFor(runErr), "%v", runErr)
	}

	if outfile != "" {
		if humanOutput {
			outputHuman("Wrote %d records to %s\n", stats.Records, outfile)
		} else {
			outputJSON(WrittenResponse{
				Status:  "written",
				Path:    outfile,
				Records: stats.Records,
				Failed:  stats.Failed,
				Empty:   stats.Empty,
			})
		}
	}
	return nil
}
