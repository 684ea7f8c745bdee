package apperrors

import "errors"

// Kind classifies an error by how the caller can recover from it
type Kind int

const (
	// KindInternal is an unexpected failure (persistence, programming error)
	KindInternal Kind = iota
	// KindValidation is malformed or missing input
	KindValidation
	// KindAuthentication is a bad credential or an absent/invalid session
	KindAuthentication
	// KindAuthorization is an authenticated caller that is not permitted
	KindAuthorization
	// KindBusinessRule is a state-dependent refusal
	KindBusinessRule
	// KindNotFound is a reference to an absent class, skill or attendee
	KindNotFound
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindBusinessRule:
		return "business_rule"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Common errors
var (
	// ErrConflict is a write that lost to a concurrent one
	ErrConflict = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session is not valid")

	ErrValidationFailed = errors.New("validation failed")
)

// Lookup errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSkillNotFound    = errors.New("skill not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrSessionNotFound  = errors.New("session not found")
)

// Provisioning errors
var (
	ErrLoginNameExists  = errors.New("login name already exists")
	ErrSkillExists      = errors.New("skill already exists")
	ErrAlreadyQualified = errors.New("user is already a trainer for this skill")
)

// Scheduling errors
var (
	ErrNotTrainer       = errors.New("you are not a trainer for this skill")
	ErrNotYourClass     = errors.New("you are not the trainer for this class")
	ErrClassNotUpcoming = errors.New("class has already started")
)

// Attendance errors
var (
	ErrClassFull           = errors.New("class is full")
	ErrSkillAlreadyHeld    = errors.New("already enrolled in or passed this skill")
	ErrPreviouslyRemoved   = errors.New("you have been removed from this class")
	ErrClassNotOpen        = errors.New("class is not open for enrolment")
	ErrTrainerForSkill     = errors.New("trainers cannot enrol in a skill they teach")
	ErrNotEnrolled         = errors.New("you are not enrolled in this class")
	ErrOutcomeTooEarly     = errors.New("pass or fail can only be recorded after the class has started")
	ErrRemovalTooLate      = errors.New("attendees can only be removed before the class starts")
	ErrAttendeeNotEnrolled = errors.New("attendee is no longer enrolled")
	ErrUnknownOutcome      = errors.New("outcome must be one of pass, fail, remove")
)

// NewValidationError creates a validation error naming the offending field
func NewValidationError(field, message string) error {
	return &CustomError{
		Kind:    KindValidation,
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewAuthenticationError creates an authentication error around reason
func NewAuthenticationError(reason error) error {
	return &CustomError{
		Kind: KindAuthentication,
		Err:  reason,
	}
}

// NewAuthorizationError creates an authorization error around reason
func NewAuthorizationError(reason error) error {
	return &CustomError{
		Kind: KindAuthorization,
		Err:  reason,
	}
}

// NewBusinessRuleError creates a business rule error around reason
func NewBusinessRuleError(reason error) error {
	return &CustomError{
		Kind: KindBusinessRule,
		Err:  reason,
	}
}

// NewNotFoundError creates a not found error around reason
func NewNotFoundError(reason error) error {
	return &CustomError{
		Kind: KindNotFound,
		Err:  reason,
	}
}

// KindOf reports the kind of err. Joined errors report the kind of their first member.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// Flatten expands errors combined with errors.Join into their members.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Flatten(e)...)
	}
	return out
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Kind    Kind
	Err     error
	Message string
	Field   string
	Code    string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

