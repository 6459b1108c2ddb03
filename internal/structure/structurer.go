// Package structure drives citation batches through an LLM backend and
// reconciles the responses into one CSL item per input entry.
package structure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/bibworks/bibzot/internal/citation"
	"github.com/bibworks/bibzot/internal/providers"
)

// noteNoBackend marks stubs produced when no LLM backend is configured.
const noteNoBackend = "raw citation preserved in title; configure an LLM provider to parse into structured fields"

// Defaults for the batch orchestrator. One structuring call covers a
// whole batch, so the timeout is generous.
const (
	DefaultBatchSize      = 25
	DefaultPacing         = 1 * time.Second
	DefaultCallTimeout    = 180 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 2 * time.Second
)

// Config configures a Structurer.
type Config struct {
	// Client is the structuring backend. When nil the structurer runs in
	// stub mode: every entry becomes a manuscript record carrying the raw
	// text, and nothing is reported as failed.
	Client providers.LLMClient

	// Model overrides the client's default model when non-empty.
	Model string

	// BatchSize is the number of entries per structuring call.
	BatchSize int

	// Pacing is the pause between consecutive batch calls.
	Pacing time.Duration

	// CallTimeout bounds a single attempt, not the whole batch.
	CallTimeout time.Duration

	// MaxAttempts is the total number of attempts per batch, including
	// the first. Delay doubles per retry starting from RetryBaseDelay.
	MaxAttempts    uint
	RetryBaseDelay time.Duration

	Logger *slog.Logger

	// OnProgress, when set, is called after each batch with the number of
	// entries handled so far and the total.
	OnProgress func(done, total int)
}

// Result is the outcome of a structuring run. Items holds exactly one
// record per input entry, in input order. Failed lists the entries that
// came back as stubs.
type Result struct {
	Items  []citation.Item
	Failed []string
}

// Structurer converts segmented citation entries into CSL items.
type Structurer struct {
	cfg Config
}

// New creates a Structurer, filling in defaults for zero-valued config.
func New(cfg Config) *Structurer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Pacing == 0 {
		cfg.Pacing = DefaultPacing
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Structurer{cfg: cfg}
}

// Run structures all entries and returns one item per entry, in order.
// A batch whose call ultimately fails degrades to stubs instead of
// aborting the run; only context cancellation stops it early.
func (s *Structurer) Run(ctx context.Context, entries []string) (*Result, error) {
	res := &Result{Items: make([]citation.Item, 0, len(entries))}
	if len(entries) == 0 {
		return res, nil
	}

	if s.cfg.Client == nil {
		for _, entry := range entries {
			res.Items = append(res.Items, citation.Stub(entry, noteNoBackend))
		}
		return res, nil
	}

	total := len(entries)
	batches := (total + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	s.cfg.Logger.Info("structuring entries",
		"entries", total,
		"batches", batches,
		"batch_size", s.cfg.BatchSize,
		"provider", s.cfg.Client.Name())

	for start := 0; start < total; start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + s.cfg.BatchSize
		if end > total {
			end = total
		}
		batch := entries[start:end]

		items, err := s.structureBatch(ctx, batch)
		switch {
		case err == nil:
			reconciled, failed := reconcile(batch, items)
			res.Items = append(res.Items, reconciled...)
			res.Failed = append(res.Failed, failed...)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			s.cfg.Logger.Warn("batch structuring failed, writing stubs",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err)
			res.Items = append(res.Items, stubBatch(batch)...)
			res.Failed = append(res.Failed, batch...)
		}

		if s.cfg.OnProgress != nil {
			s.cfg.OnProgress(end, total)
		}

		if end < total {
			select {
			case <-time.After(s.cfg.Pacing):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return res, nil
}

// structureBatch runs one batch through the backend with the configured
// retry policy. Transient failures are retried with doubling delay;
// malformed-response errors abort immediately since identical input
// would produce the same shape.
func (s *Structurer) structureBatch(ctx context.Context, batch []string) ([]citation.Item, error) {
	var items []citation.Item

	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
			defer cancel()

			got, err := s.callOnce(callCtx, batch)
			if err != nil {
				if !providers.IsRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			items = got
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.cfg.MaxAttempts),
		retry.Delay(s.cfg.RetryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			// Fires after the final failed attempt too; the caller logs
			// that outcome, so only announce attempts that will happen.
			if attempt+1 >= s.cfg.MaxAttempts {
				return
			}
			s.cfg.Logger.Warn("retrying batch",
				"attempt", attempt+1,
				"max_attempts", s.cfg.MaxAttempts,
				"error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// callOnce makes a single structuring call and decodes the items.
func (s *Structurer) callOnce(ctx context.Context, batch []string) ([]citation.Item, error) {
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(batch)},
		},
		Model:          s.cfg.Model,
		Temperature:    0,
		ResponseFormat: providers.JSONObjectFormat(),
	}

	result, err := s.cfg.Client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cfg.Logger.Debug("batch call completed",
		"request_id", result.RequestID,
		"model", result.ModelUsed,
		"total_tokens", result.TotalTokens,
		"duration", result.ExecutionTime)

	rawItems, err := providers.ExtractItems(result.ParsedJSON)
	if err != nil {
		return nil, err
	}

	joined, err := json.Marshal(rawItems)
	if err != nil {
		return nil, fmt.Errorf("reassemble items: %w", err)
	}
	if err := citation.ValidateItems(joined); err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrBadResponseShape, err)
	}

	items := make([]citation.Item, 0, len(rawItems))
	for idx, raw := range rawItems {
		var item citation.Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: decode item %d: %v", providers.ErrBadResponseShape, idx, err)
		}
		items = append(items, item)
	}
	return items, nil
}
