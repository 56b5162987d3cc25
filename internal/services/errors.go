package services

import (
	"errors"
	"fmt"

	"complexcare/internal/database"
	"complexcare/internal/repositories"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeErr classifies a repository error under op so the HTTP layer can map
// it to a status code.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
