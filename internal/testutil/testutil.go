// Package testutil provides shared test doubles and store setup.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/leadsync/internal/models"
	"github.com/starford/leadsync/internal/storage"
)

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore creates a JSON store in a temporary directory.
func TestStore(t *testing.T) *storage.JSONFile {
	t.Helper()
	s, err := storage.NewJSONFile(filepath.Join(t.TempDir(), "notes_data.json"), Logger())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// Generator returns fixed text or a fixed error.
type Generator struct {
	Text string
	Err  error

	mu      sync.Mutex
	Prompts []string
}

// Generate records the prompt and returns the configured result.
func (g *Generator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.Prompts = append(g.Prompts, prompt)
	g.mu.Unlock()
	return g.Text, g.Err
}

// Leads is a static lead source.
type Leads struct {
	Leads []models.Lead
	Err   error
}

// FetchLeads returns the configured leads or error.
func (l Leads) FetchLeads(context.Context) ([]models.Lead, error) {
	return l.Leads, l.Err
}

// Events records published note events.
type Events struct {
	mu     sync.Mutex
	Events []string
}

// PublishNoteEvent records kind and email as "kind:email".
func (e *Events) PublishNoteEvent(kind, email string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, kind+":"+email)
}
