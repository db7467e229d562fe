package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is owned by someone else).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end time before start time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when credentials are wrong or a token is
// missing/invalid. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrEmailTaken is returned by registration when the email address is
// already associated with an account. Handlers should map this to HTTP 409.
var ErrEmailTaken = errors.New("email already registered")

// ErrUpstream is returned when an external service (geocoding, directions,
// image host) is unreachable or answers with an error. Handlers should map
// this to HTTP 502 with a generic message; the wrapped detail is logged only.
var ErrUpstream = errors.New("upstream service error")
