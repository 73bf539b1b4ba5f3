package quiz

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrMalformedAnswer  = errors.New("malformed answer")
	ErrInternal         = errors.New("internal error")
	ErrForbidden        = errors.New("forbidden")
	ErrNotReady         = errors.New("quiz not ready")
	ErrInvalid          = errors.New("invalid input")
)
