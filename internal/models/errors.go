package models

import "errors"

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBet indicates a bet with the same event, market,
	// selection and line is already recorded.
	ErrDuplicateBet = errors.New("duplicate bet")

	// ErrInvalidTransition indicates an attempt to move a bet out of a
	// terminal status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientSamples indicates the probability model refused to
	// produce an assessment because the historical window is too small.
	ErrInsufficientSamples = errors.New("insufficient historical samples")

	// ErrAmbiguousSelection indicates a market selection label that could
	// not be parsed into a side, participant and line.
	ErrAmbiguousSelection = errors.New("ambiguous selection label")
)
