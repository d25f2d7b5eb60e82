package apperrors

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrValidation             = errors.New("validation failed")
	ErrNoActiveVersion        = errors.New("template has no active version")
	ErrConcurrentModification = errors.New("template version changed since it was loaded")
)
