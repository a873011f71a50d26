package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/leadsync/internal/apperr"
)

// Lead is a contact from the external lead source.
type Lead struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate applies a strict email syntax check.
func (l Lead) Validate() error {
	err := validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, is.EmailFormat),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}
