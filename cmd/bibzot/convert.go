package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bibworks/bibzot/internal/config"
	"github.com/bibworks/bibzot/internal/export"
	"github.com/bibworks/bibzot/internal/output"
	"github.com/bibworks/bibzot/internal/providers"
	"github.com/bibworks/bibzot/internal/segment"
	"github.com/bibworks/bibzot/internal/source"
	"github.com/bibworks/bibzot/internal/structure"
)

var convertFlags struct {
	url       string
	file      string
	text      string
	out       string
	format    string
	provider  string
	model     string
	noLLM     bool
	max       int
	batchSize int
	minLength int
	failedOut string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bibliography into Zotero-importable records",
	Long: `Convert reads bibliography text from a URL, file or inline text,
segments it into entries, structures each entry with the configured LLM
backend, and writes CSL-JSON or RIS output.

Entries the backend cannot parse become stub records carrying the raw
text, and are listed in a failure report for manual follow-up.`,
	Example: `  bibzot convert --url https://example.org/essay --format csljson
  bibzot convert --file bibliography.docx --provider openai --format ris
  bibzot convert --file bib.txt --no-llm`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFlags.url, "url", "", "web page containing the bibliography")
	f.StringVar(&convertFlags.file, "file", "", "local .txt, .docx or .pdf file")
	f.StringVar(&convertFlags.text, "text", "", "inline bibliography text")
	f.StringVar(&convertFlags.out, "out", "", "output path (default bibliography.json / bibliography.ris)")
	f.StringVar(&convertFlags.format, "format", "", "output format: csljson or ris")
	f.StringVar(&convertFlags.provider, "provider", "", "LLM provider name from config")
	f.StringVar(&convertFlags.model, "model", "", "model override for the chosen provider")
	f.BoolVar(&convertFlags.noLLM, "no-llm", false, "skip structuring; emit raw-text stub records")
	f.IntVar(&convertFlags.max, "max", 0, "process at most N entries (0 = all)")
	f.IntVar(&convertFlags.batchSize, "batch-size", 0, "entries per structuring call")
	f.IntVar(&convertFlags.minLength, "min-entry-length", 0, "discard shorter entries unless they contain a year")
	f.StringVar(&convertFlags.failedOut, "failed-out", "failed_entries.txt", "failure report path")

	rootCmd.AddCommand(convertCmd)
}

// convertSummary is the structured result printed after a run.
type convertSummary struct {
	Entries  int    `json:"entries" yaml:"entries"`
	Items    int    `json:"items" yaml:"items"`
	Failed   int    `json:"failed" yaml:"failed"`
	Output   string `json:"output" yaml:"output"`
	Format   string `json:"format" yaml:"format"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Report   string `json:"failure_report,omitempty" yaml:"failure_report,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	ctx := cmd.Context()
	logger := slog.Default()

	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	cfg := cm.Get()

	format := convertFlags.format
	if format == "" {
		format = cfg.Defaults.OutputFormat
	}
	if format != "csljson" && format != "ris" {
		return fmt.Errorf("unknown format %q (want csljson or ris)", format)
	}

	raw, err := source.Load(ctx, source.Input{
		URL:  convertFlags.url,
		Path: convertFlags.file,
		Text: convertFlags.text,
	})
	if err != nil {
		return err
	}

	minLength := convertFlags.minLength
	if minLength == 0 {
		minLength = cfg.Defaults.MinEntryLength
	}
	entries := segment.Split(raw, segment.Options{MinEntryLength: minLength})
	entries = segment.ExpandDittos(entries)
	if convertFlags.max > 0 && len(entries) > convertFlags.max {
		entries = entries[:convertFlags.max]
	}
	logger.Info("segmented bibliography", "entries", len(entries))

	client, providerName, model, err := selectBackend(cm, logger)
	if err != nil {
		return err
	}

	batchSize := convertFlags.batchSize
	if batchSize == 0 {
		batchSize = cfg.Defaults.BatchSize
	}

	structurer := structure.New(structure.Config{
		Client:      client,
		Model:       model,
		BatchSize:   batchSize,
		Pacing:      time.Duration(cfg.Defaults.PacingSeconds) * time.Second,
		CallTimeout: time.Duration(cfg.Defaults.CallTimeoutSeconds) * time.Second,
		MaxAttempts: attemptBudget(cfg.Defaults.MaxAttempts),
		Logger:      logger,
		OnProgress: func(done, total int) {
			logger.Info("structuring progress", "done", done, "total", total)
		},
	})

	res, err := structurer.Run(ctx, entries)
	if err != nil {
		return err
	}

	outPath := convertFlags.out
	if outPath == "" {
		if format == "ris" {
			outPath = "bibliography.ris"
		} else {
			outPath = "bibliography.json"
		}
	}
	if err := writeItems(outPath, format, res); err != nil {
		return err
	}

	summary := convertSummary{
		Entries:  len(entries),
		Items:    len(res.Items),
		Failed:   len(res.Failed),
		Output:   outPath,
		Format:   format,
		Provider: providerName,
	}

	if len(res.Failed) > 0 {
		if err := writeFailureReport(convertFlags.failedOut, res.Failed); err != nil {
			return err
		}
		summary.Report = convertFlags.failedOut
	}

	return output.Print(summary)
}

// attemptBudget converts the configured attempt count, guarding against
// non-positive values that would wrap into an unbounded uint budget.
func attemptBudget(n int) uint {
	if n < 1 {
		return structure.DefaultMaxAttempts
	}
	return uint(n)
}

// selectBackend resolves the structuring client from flags and config.
// Returns a nil client in --no-llm mode. Config edits during a run are
// picked up at the next call: the registry reloads on file change and
// the returned client resolves against it per call.
func selectBackend(cm *config.Manager, logger *slog.Logger) (providers.LLMClient, string, string, error) {
	if convertFlags.noLLM {
		return nil, "", "", nil
	}

	cfg := cm.Get()
	name := convertFlags.provider
	if name == "" {
		name = cfg.Defaults.LLMProvider
	}

	registry := providers.NewRegistryFromConfig(cfg.ToRegistryConfig(), logger)
	if !registry.Has(name) {
		return nil, "", "", fmt.Errorf("provider %q not available (missing API key or disabled); use --no-llm for stub output", name)
	}

	cm.OnChange(func(c *config.Config) {
		registry.Reload(c.ToRegistryConfig())
	})
	cm.WatchConfig()

	model := convertFlags.model
	if model == "" {
		if pc, ok := cfg.GetLLMProvider(name); ok {
			model = pc.Model
		}
	}
	return registry.Dynamic(name), name, model, nil
}

func writeItems(path, format string, res *structure.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case "ris":
		err = export.WriteRIS(f, res.Items)
	default:
		err = export.WriteCSLJSON(f, res.Items)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeFailureReport(path string, failed []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.WriteFailureReport(f, failed); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
