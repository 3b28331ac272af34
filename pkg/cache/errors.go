package cache

import "errors"

var (
	// ErrInvalidConfig is the only caller-visible failure class; it is
	// returned from construction and never from per-call operations.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)
