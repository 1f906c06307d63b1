package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnexpectedResponse = errors.New("unexpected response shape")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrMissingRate        = errors.New("exchange rate missing")
)
