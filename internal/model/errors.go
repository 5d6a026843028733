package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateNotFound is wrapped by TemplateError when the template path does not exist
	ErrTemplateNotFound = errors.New("template not found")

	// ErrPlaceholderMissing marks a token that no template shape carries
	ErrPlaceholderMissing = errors.New("placeholder missing")

	// ErrServiceUnavailable marks a narrative service that could not answer
	ErrServiceUnavailable = errors.New("narrative service unavailable")
)

// SchemaError reports required input columns that are absent
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// TemplateError reports a template that could not be opened or parsed
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// InjectionError reports a placeholder that was found but could not be filled
type InjectionError struct {
	Token string
	Kind  string
	Err   error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("inject %s %s: %v", e.Kind, e.Token, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort a synthesis.
// Only schema and template errors are fatal.
func IsFatal(err error) bool {
	var schemaErr *SchemaError
	var templateErr *TemplateError
	return errors.As(err, &schemaErr) || errors.As(err, &templateErr)
}
