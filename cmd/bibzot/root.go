package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibworks/bibzot/internal/output"
	"github.com/bibworks/bibzot/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "bibzot",
	Short: "Convert free-form bibliographies into Zotero-importable records",
	Long: `Bibzot turns messy bibliography text into structured CSL-JSON or RIS
records that Zotero can import.

The pipeline includes:
  - Bibliography extraction from web pages, text, docx and pdf files
  - Entry segmentation with ditto-mark ("______.") expansion
  - LLM-backed structuring into CSL-JSON items, in batches
  - Stub records for anything the backend cannot parse, so no entry is lost`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bibzot/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.SetFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(versionCmd)
}
