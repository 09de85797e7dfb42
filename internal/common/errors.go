package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrAccountMuted       = errors.New("account is muted")

	// Story errors
	ErrStoryNotFound    = errors.New("story not found")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrSlugTaken        = errors.New("slug already in use")

	// Comment errors
	ErrCommentNotFound = errors.New("comment not found")

	// Moderation errors
	ErrAlreadyBanned   = errors.New("user is already banned")
	ErrTargetIsAdmin   = errors.New("admins cannot be targeted")
	ErrSelfTarget      = errors.New("cannot target yourself")
	ErrBannedFirst     = errors.New("target is banned; address the ban first")
	ErrReasonTooShort  = errors.New("a reason of at least 3 characters is required")
	ErrInvalidRole     = errors.New("invalid role")

	// Dispute errors
	ErrDisputeNotFound   = errors.New("dispute not found")
	ErrDuplicateDispute  = errors.New("an active dispute against this target already exists")
	ErrInvalidCategory   = errors.New("invalid report category")
	ErrInvalidTransition = errors.New("invalid dispute status transition")
	ErrTargetNotFound    = errors.New("dispute target not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
