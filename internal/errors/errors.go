// Package errors provides the structured error type used across gdasset for
// category-based classification (user-correctable content mistakes vs.
// network failures vs. internal faults).
package errors

import (
	"errors"
	"fmt"
)

// Category classifies an error for reporting and exit-status decisions.
type Category string

const (
	// User-facing, correctable mistakes in project content or flags.
	CategoryConfig     Category = "config"
	CategoryMarkdown   Category = "markdown"
	CategoryValidation Category = "validation"

	// External system integration errors.
	CategoryVCS     Category = "vcs"
	CategoryNetwork Category = "network"
	CategoryAuth    Category = "auth"

	CategoryInternal Category = "internal"
)

// Error is a structured error with a category and an optional wrapped cause.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new categorized error.
func New(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a categorized error wrapping an existing cause.
func Wrap(err error, category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...), Cause: err}
}

// GetCategory extracts the category from an error chain, or CategoryInternal
// if no *Error is present.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}

// IsCategory reports whether any error in the chain carries the category.
func IsCategory(err error, category Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == category
}

// IsUserError reports whether the error is a user-correctable content or
// configuration mistake rather than an environmental or internal failure.
func IsUserError(err error) bool {
	switch GetCategory(err) {
	case CategoryConfig, CategoryMarkdown, CategoryValidation:
		return true
	}
	return false
}
