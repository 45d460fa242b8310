// Package services defines the business logic for the sound query path and
// the recency lookup. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidUser is returned when a query arrives without a usable
	// transport user identity.
	ErrInvalidUser = errors.New("user id is required")
)
