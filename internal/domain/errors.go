package domain

import "errors"

var (
	// ErrValidation marks malformed or missing required input (empty alphaId,
	// non-positive price or quantity, zero address). Raised before any network
	// call and never retried.
	ErrValidation = errors.New("validation failed")

	// ErrParse marks a failed pattern match against pasted request text.
	ErrParse = errors.New("parse failed")

	// ErrUpstream marks a non-success HTTP status or non-success application
	// code from a proxied exchange call.
	ErrUpstream = errors.New("upstream error")

	// ErrEncoding marks amount overflow or unsupported token pairing during
	// call-data construction.
	ErrEncoding = errors.New("encoding failed")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrExpired      = errors.New("credential expired")
	ErrNoRoute      = errors.New("no route available")
)
