// Package models defines the domain types for leadsync.
package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/leadsync/internal/apperr"
)

// NoteRecord is the single note and summary kept for a lead.
// Summary is nil when no summary was stored with the note.
type NoteRecord struct {
	Email   string  `json:"email"`
	Note    string  `json:"note"`
	Summary *string `json:"summary"`
}

// NoteInput is a note submitted for a lead.
type NoteInput struct {
	Email string
	Note  string
}

// Validate checks the email syntax and that the note carries text.
func (in NoteInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Note, validation.By(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}

// ValidateNoteText checks a standalone note submitted for summarization.
func ValidateNoteText(note string) error {
	if err := notBlank(note); err != nil {
		return fmt.Errorf("%w: note: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
