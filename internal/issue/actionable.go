// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing error messages.
	// It records what operation failed, which resource was involved, what kind
	// of failure it was, and suggestions for how to fix it.
	//
	// Use the ErrorContext builder for convenient construction:
	//
	//	err := issue.NewErrorContext().
	//		WithKind(issue.KindNetwork).
	//		WithOperation("download runtime archive").
	//		WithResource(url).
	//		WithSuggestion("Check your network connection").
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation describes what was being attempted (e.g., "download runtime archive").
		Operation string

		// Resource identifies the file, URL, or coordinate involved (optional).
		Resource string

		// Kind classifies the failure (optional).
		Kind Kind

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error that triggered this error (optional).
		Cause error
	}

	// ErrorContext is a builder for constructing ActionableError instances.
	ErrorContext struct {
		operation   string
		resource    string
		kind        Kind
		suggestions []string
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Wrap annotates err with a kind, operation and resource. It returns nil when
// err is nil so it can be used directly in return statements.
func Wrap(err error, kind Kind, operation, resource string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{
		Operation: operation,
		Resource:  resource,
		Kind:      kind,
		Cause:     err,
	}
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns a formatted error message with optional verbosity.
//
// When verbose is false:
//
//	failed to <operation>: <resource>: <cause message>
//	  • <suggestion 1>
//
// When verbose is true, the kind and the full error chain are appended.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())

	suggestions := e.allSuggestions()
	if len(suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verbose {
		if kind := KindOf(e); kind != KindUnknown {
			fmt.Fprintf(&msg, "\n\nKind: %s", kind)
		}
		if e.Cause != nil {
			msg.WriteString("\n\nError chain:")
			err := e.Cause
			depth := 1
			for err != nil {
				fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
				err = errors.Unwrap(err)
				depth++
			}
		}
	}

	return msg.String()
}

// HasSuggestions returns true if the error or any wrapped ActionableError has suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.allSuggestions()) > 0
}

// allSuggestions collects suggestions from e and every ActionableError it wraps,
// outermost first.
func (e *ActionableError) allSuggestions() []string {
	var out []string
	var err error = e
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			break
		}
		out = append(out, ae.Suggestions...)
		err = ae.Cause
	}
	return out
}

// WithOperation sets the operation being performed.
// The operation should be a verb phrase like "verify runtime" or "resolve library".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource (file, URL, coordinate) involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithKind sets the failure classification.
func (c *ErrorContext) WithKind(kind Kind) *ErrorContext {
	c.kind = kind
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue.
// Can be called multiple times to add multiple suggestions.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap wraps an underlying error as the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError from the context.
// Returns nil if no operation is set (operation is required).
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}

	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Kind:        c.kind,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError creates an ActionableError and returns it as an error interface.
// Returns nil if no operation is set.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
