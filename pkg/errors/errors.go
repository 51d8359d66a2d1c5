package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrOutOfRange       = errors.New("out of range")
	ErrDocumentNotFound = errors.New("document not found")
)

// Exit codes reported by the CLI for each error kind.
const (
	ExitFailure         = 1
	ExitInvalidArgument = 2
	ExitOutOfRange      = 3
	ExitNotFound        = 4
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgument):
		return ExitInvalidArgument
	case errors.Is(err, ErrOutOfRange):
		return ExitOutOfRange
	case errors.Is(err, ErrDocumentNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
