package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Storage errors
	ErrMsgStorageUnavailable   = "storage unavailable"
	ErrMsgUserProgressNotFound = "user progress not found"
	ErrMsgInvalidDocument      = "invalid progress document"

	// Concurrency errors
	ErrMsgConcurrentOperation = "operation in progress, retry after a short delay"

	// Invariant violations
	ErrMsgInvariantViolation      = "invariant violation"
	ErrMsgStreakNotAtRisk         = "streak is not at risk"
	ErrMsgNoFlexSavesAvailable    = "no flex saves available"
	ErrMsgFlexSaveAlreadyApplied  = "yesterday has already been flex-saved"
	ErrMsgChallengeNotFound       = "challenge not found"
	ErrMsgChallengeAlreadyClaimed = "challenge already claimed"
	ErrMsgChallengeNotCompleted   = "challenge not completed"
	ErrMsgBoostLocked             = "xp boost reward is locked"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	// Storage errors
	ErrStorageUnavailable   = errors.New(ErrMsgStorageUnavailable)
	ErrUserProgressNotFound = errors.New(ErrMsgUserProgressNotFound)
	ErrInvalidDocument      = errors.New(ErrMsgInvalidDocument)

	// Concurrency errors
	ErrConcurrentOperation = errors.New(ErrMsgConcurrentOperation)

	// Invariant violations
	ErrInvariantViolation      = errors.New(ErrMsgInvariantViolation)
	ErrStreakNotAtRisk         = errors.New(ErrMsgStreakNotAtRisk)
	ErrNoFlexSavesAvailable    = errors.New(ErrMsgNoFlexSavesAvailable)
	ErrFlexSaveAlreadyApplied  = errors.New(ErrMsgFlexSaveAlreadyApplied)
	ErrChallengeNotFound       = errors.New(ErrMsgChallengeNotFound)
	ErrChallengeAlreadyClaimed = errors.New(ErrMsgChallengeAlreadyClaimed)
	ErrChallengeNotCompleted   = errors.New(ErrMsgChallengeNotCompleted)
	ErrBoostLocked             = errors.New(ErrMsgBoostLocked)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
