// Package noteservice implements the lead and note operations shared by the
// HTTP API and the MCP server.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/leadsync/internal/models"
	"github.com/starford/leadsync/internal/storage"
	"github.com/starford/leadsync/internal/summary"
)

// LeadSource returns the current leads.
type LeadSource interface {
	FetchLeads(ctx context.Context) ([]models.Lead, error)
}

// Summarizer produces a bounded summary for a note. It never fails.
type Summarizer interface {
	Summarize(ctx context.Context, note string) summary.Summary
}

// EventPublisher is notified after a note is saved.
type EventPublisher interface {
	PublishNoteEvent(kind, email string)
}

// Service coordinates the lead source, summarizer and record store.
type Service struct {
	leads      LeadSource
	summarizer Summarizer
	store      storage.Store
	events     EventPublisher
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes note events to p.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service.
func NewService(leads LeadSource, summarizer Summarizer, store storage.Store, opts ...Option) *Service {
	s := &Service{
		leads:      leads,
		summarizer: summarizer,
		store:      store,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListLeads fetches leads from the external source.
func (s *Service) ListLeads(ctx context.Context) ([]models.Lead, error) {
	leads, err := s.leads.FetchLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return leads, nil
}

// Summarize returns a summary for note without saving anything.
func (s *Service) Summarize(ctx context.Context, note string) (string, error) {
	if err := models.ValidateNoteText(note); err != nil {
		return "", err
	}
	return s.summarizer.Summarize(ctx, note).Text, nil
}

// SaveNote summarizes the note and stores it for the lead, replacing any
// earlier note for the same email.
func (s *Service) SaveNote(ctx context.Context, in models.NoteInput) (models.NoteRecord, error) {
	if err := in.Validate(); err != nil {
		return models.NoteRecord{}, err
	}

	sum := s.summarizer.Summarize(ctx, in.Note)
	rec, err := s.store.Save(ctx, in.Email, in.Note, &sum.Text)
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("failed to save note: %w", err)
	}

	s.logger.Info("note saved",
		slog.String("email", in.Email),
		slog.String("summary_source", string(sum.Source)))
	if s.events != nil {
		s.events.PublishNoteEvent("saved", in.Email)
	}
	return rec, nil
}

// GetNote returns the stored note for email.
func (s *Service) GetNote(ctx context.Context, email string) (models.NoteRecord, error) {
	return s.store.Get(ctx, email)
}

// ListNotes returns every stored note keyed by email.
func (s *Service) ListNotes(ctx context.Context) (map[string]models.NoteRecord, error) {
	return s.store.GetAll(ctx)
}
