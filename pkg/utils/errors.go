package utils

import (
	"errors"
	"net/http"
	"sort"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindNotFound
)

// AppError is an expected failure: bad input, bad credentials or a missing resource.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// FieldNames returns the sorted names of the offending fields.
func (e *AppError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ValidationError(field, message string) *AppError {
	return ValidationErrors(map[string][]string{field: {message}})
}

func ValidationErrors(fields map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func AuthError(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message}
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// FieldErrors collects messages per field before turning them into a ValidationError.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Err returns nil when nothing was collected.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return ValidationErrors(f)
}

// Merge folds the fields of a ValidationError into f. Any other non-nil error
// is returned untouched so the caller can bail out.
func (f FieldErrors) Merge(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind == KindValidation {
		for field, messages := range appErr.Fields {
			f[field] = append(f[field], messages...)
		}
		return nil
	}
	return err
}
