package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify with errors.Is without matching on message text.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrStateConflict       = errors.New("invalid state for operation")
	ErrDuplicate           = errors.New("duplicate")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfVote            = errors.New("cannot vote on own justification")
)

// Specific errors, each wrapping its kind.
var (
	ErrBetClosed              = fmt.Errorf("bet is not accepting participations: %w", ErrStateConflict)
	ErrAlreadySettled         = fmt.Errorf("bet already settled: %w", ErrStateConflict)
	ErrInvalidOption          = fmt.Errorf("option does not belong to bet: %w", ErrValidation)
	ErrDuplicateParticipation = fmt.Errorf("user already participates in bet: %w", ErrDuplicate)
	ErrDuplicateMembership    = fmt.Errorf("user is already a group member: %w", ErrDuplicate)
	ErrMemberNotFound         = fmt.Errorf("group member: %w", ErrNotFound)
	ErrInvalidStake           = fmt.Errorf("blind stake out of range: %w", ErrValidation)
	ErrAlreadyParticipating   = fmt.Errorf("user already joined challenge: %w", ErrDuplicate)
	ErrNotParticipating       = fmt.Errorf("user is not a challenge participant: %w", ErrValidation)
	ErrDuplicateSubmission    = fmt.Errorf("participant already submitted a justification: %w", ErrDuplicate)
	ErrDuplicateVote          = fmt.Errorf("user already voted on justification: %w", ErrDuplicate)
	ErrChallengeCompleted     = fmt.Errorf("challenge already completed: %w", ErrStateConflict)
)
