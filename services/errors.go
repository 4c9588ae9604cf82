package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// Business-rule failures are terminal for a request. Only ErrStorage is
// eligible for a retry, and only on reads.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorage           = errors.New("storage error")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

// storageError logs the underlying failure and hides it behind ErrStorage.
func storageError(op string, err error) error {
	utils.ErrorLogger.WithField("op", op).Errorf("storage failure: %v", err)
	return fmt.Errorf("%w: %s", ErrStorage, op)
}

// lookupError turns a gorm "record not found" into ErrNotFound and anything
// else into ErrStorage.
func lookupError(what, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return storageError(op, err)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}

// isBusinessError reports whether err already belongs to the taxonomy and
// must be passed through untouched.
func isBusinessError(err error) bool {
	for _, target := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrForbidden,
		ErrInvalidState, ErrInvalidTransition, ErrStorage} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
