package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("time slot already reserved")
	ErrEmailExists        = errors.New("email already registered")
	ErrINumberExists      = errors.New("i-number already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries the user-facing messages of a rejected form.  It
// matches ErrValidation under errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Problems, " ") }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// problems collects validation messages in field order.
type problems []string

func (p *problems) check(ok bool, msg string) {
	if !ok {
		*p = append(*p, msg)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p}
}

func invalid(msg string) error { return &ValidationError{Problems: []string{msg}} }
