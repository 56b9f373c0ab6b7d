package main

import (
	"fmt"

	"github.com/matsen/pubmedxml/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the global config file.

Usage:
  pubmed-xml config                         # Show all config
  pubmed-xml config email                   # Get specific value
  pubmed-xml config email me@example.org    # Set value
  pubmed-xml config api-key ""              # Clear value

Keys:
  api_key              NCBI API key (raises the rate limit to 10 requests/s)
  email                Contact address sent to NCBI
  tool                 Tool name sent to NCBI
  base_url             efetch endpoint
  cache_path           SQLite fetch cache location
  requests_per_second  Override the efetch rate limit

NCBI_API_KEY, NCBI_EMAIL and PUBMEDXML_CACHE override the file at run time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := config.Path()
	cfg, err := config.LoadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		values := cfg.Values()
		if humanOutput {
			for _, k := range config.Keys {
				fmt.Printf("%-20s %s\n", k+":", values[k])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := config.NormalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}
