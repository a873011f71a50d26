package summary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/starford/leadsync/internal/apperr"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaConfig describes the local Ollama backend.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	NumPredict  int
}

// Ollama is a Generator backed by the Ollama /api/generate endpoint.
type Ollama struct {
	client  *api.Client
	model   string
	options map[string]any
}

// NewOllama creates an Ollama generator. A nil httpClient uses http.DefaultClient.
func NewOllama(cfg OllamaConfig, httpClient *http.Client) (*Ollama, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("summary: parse ollama url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("summary: ollama url must be absolute: %s", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ollama{
		client: api.NewClient(base, httpClient),
		model:  cfg.Model,
		options: map[string]any{
			"temperature": cfg.Temperature,
			"num_predict": cfg.NumPredict,
		},
	}, nil
}

// Generate runs a single non-streaming completion.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: o.options,
	}

	var (
		b    strings.Builder
		done bool
	)
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		done = resp.Done
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrGenerationUnavailable, err)
	}
	if !done {
		return "", fmt.Errorf("%w: incomplete response", apperr.ErrGenerationUnavailable)
	}
	return b.String(), nil
}

// Ping checks that the Ollama server answers.
func (o *Ollama) Ping(ctx context.Context) error {
	return o.client.Heartbeat(ctx)
}
