package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/leadsync/internal/leads"
	"github.com/starford/leadsync/internal/noteservice"
	"github.com/starford/leadsync/internal/storage"
	"github.com/starford/leadsync/internal/summary"
)

// NewLogger returns the structured JSON logger used by all commands.
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Components are the long-lived parts shared by the HTTP server, the MCP
// server and the summarize command.
type Components struct {
	Store      storage.Store
	Summarizer *summary.Summarizer
	Service    *noteservice.Service
}

// NewComponents opens the configured store and builds the note service.
// The caller must Close the result.
func NewComponents(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*Components, error) {
	var gen summary.Generator
	if cfg.Generator.Enabled() {
		// The summarizer bounds each call, so the client has no timeout of its own.
		ollama, err := summary.NewOllama(cfg.Generator.OllamaConfig(), &http.Client{})
		if err != nil {
			return nil, fmt.Errorf("init generator: %w", err)
		}
		gen = ollama
	} else {
		logger.Warn("generator disabled, summaries use the fallback")
	}
	summarizer := summary.NewSummarizer(gen, cfg.Generator.Timeout, logger)

	store, err := storage.Open(ctx, cfg.Store.StorageOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	fetcher := leads.NewFetcher(cfg.Leads.URL, &http.Client{Timeout: cfg.Leads.Timeout})

	opts = append([]noteservice.Option{noteservice.WithLogger(logger)}, opts...)
	return &Components{
		Store:      store,
		Summarizer: summarizer,
		Service:    noteservice.NewService(fetcher, summarizer, store, opts...),
	}, nil
}

// Close releases the store.
func (c *Components) Close() error {
	return c.Store.Close()
}
