package ratingdb

import "errors"

// Sentinel errors for the repository layer.
// These represent infrastructure-level conditions callers may want
// to handle specially (not business-domain errors).
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoActiveSeason indicates no season is currently active.
	ErrNoActiveSeason = errors.New("no active season")

	// ErrAlreadyExists indicates an insert hit a unique constraint.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict indicates a player row changed since it was read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrMatchAlreadyResolved indicates the conditional resolution update
	// found the match already carrying a winner.
	ErrMatchAlreadyResolved = errors.New("match already resolved")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
