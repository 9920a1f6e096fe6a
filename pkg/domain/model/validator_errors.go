package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Validation errors
var (
	ErrValidation     = goerr.New("validation failed")
	ErrInvalidContact = goerr.New("invalid contact")
	ErrInvalidAgentID = goerr.New("invalid agent ID")
)

// Context keys for error values
const (
	AgentIDKey   = "agent_id"
	ContactIDKey = "contact_id"
	FieldKey     = "field"
)

// FieldError describes one rejected input field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field errors. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// Add records a rejected field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was rejected
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
