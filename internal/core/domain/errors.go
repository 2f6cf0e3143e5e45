package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrInvalidRequest = errors.New("invalid request")
)
