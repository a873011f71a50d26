// Package storage persists one note and summary per lead email.
package storage

import (
	"context"

	"github.com/starford/leadsync/internal/models"
)

// Store is the record store contract shared by every backend.
// A save replaces any previous record for the same email.
type Store interface {
	// Save upserts the record for email and returns what was stored.
	Save(ctx context.Context, email, note string, summary *string) (models.NoteRecord, error)
	// Get returns the record for email or apperr.ErrNotFound.
	Get(ctx context.Context, email string) (models.NoteRecord, error)
	// GetAll returns every record keyed by email.
	GetAll(ctx context.Context) (map[string]models.NoteRecord, error)
	// Close releases backend resources.
	Close() error
}

// entry is the stored value for one email.
type entry struct {
	Note    string  `json:"note"`
	Summary *string `json:"summary"`
}

func (e entry) record(email string) models.NoteRecord {
	return models.NoteRecord{Email: email, Note: e.Note, Summary: e.Summary}
}
