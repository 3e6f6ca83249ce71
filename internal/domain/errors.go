package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicate              = errors.New("duplicate")
	ErrSourceInactive         = errors.New("source is not active")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidTransition      = errors.New("status transition not allowed")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrInvalidMapping         = errors.New("invalid field mapping")
)
