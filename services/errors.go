package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ProgramMysticxxx/blog-project/access"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrBadCredentials   = errors.New("wrong password")
	ErrSelfSubscription = errors.New("you can't subscribe to yourself")
	ErrStorage          = errors.New("failed to store the uploaded blob")
)

// ValidationError lists field-level problems of a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem for field and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
	return e
}

// OrNil returns nil when no problem was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, format string, args ...interface{}) error {
	return (&ValidationError{}).Add(field, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// wrap adds context to unexpected errors. Errors meant for the caller pass
// through unchanged.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrBadCredentials),
		errors.Is(err, ErrSelfSubscription),
		errors.Is(err, ErrStorage),
		errors.Is(err, access.ErrUnauthenticated),
		errors.Is(err, access.ErrForbidden):
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
