package main

import (
	"fmt"

	"github.com/matsen/pubmedxml/internal/config"
	"github.com/spf13/cobra"
)

var fetchNoCache bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "Bypass the local fetch cache")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <pmid>",
	Short: "Print the raw efetch XML for a PMID",
	Long: `Print the raw PubmedArticleSet XML that E-utilities returns for a PMID.

Responses are cached locally unless --no-cache is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	fetcher := newLazyFetcher(cfg, !fetchNoCache, newLogger())
	xml, err := fetcher.FetchXML(cmd.Context(), args[0])
	fetcher.Close()
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	fmt.Print(xml)
	return nil
}
