package models

// Localizable error codes surfaced to API clients.
const (
	CodeNotFound           = "ERROR_NOT_FOUND"
	CodeNotReviewed        = "ERROR_NOT_REVIEWED"
	CodeReviewed           = "ERROR_REVIEWED"
	CodeIllegalTransition  = "ERROR_ILLEGAL_TRANSITION"
	CodeInvalidArgument    = "ERROR_INVALID_ARGUMENT"
	CodeUnauthorized       = "ERROR_UNAUTHORIZED"
	CodeForbidden          = "ERROR_FORBIDDEN"
	CodeInvariantViolation = "ERROR_INVARIANT_VIOLATION"
	CodeInternal           = "ERROR_INTERNAL"
)

type ErrorNotFound struct {
	Message string
}

func (e *ErrorNotFound) Error() string {
	return e.Message
}

// ErrorConflict is returned when a review is requested for content that already
// has an unresolved job. Job is the existing job.
type ErrorConflict struct {
	Message string
	Job     *ReviewJobInfo
}

func (e *ErrorConflict) Error() string {
	return e.Message
}

type ErrorBadRequest struct {
	Code    string
	Message string
}

func (e *ErrorBadRequest) Error() string {
	return e.Message
}

type ErrorUnauthorized struct {
	Message string
}

func (e *ErrorUnauthorized) Error() string {
	return e.Message
}

type ErrorForbidden struct {
	Message string
}

func (e *ErrorForbidden) Error() string {
	return e.Message
}

// ErrorInvariantViolation means the content metadata and review job stores
// disagree in a way that must not be repaired silently.
type ErrorInvariantViolation struct {
	Content ContentIdentity
	Message string
}

func (e *ErrorInvariantViolation) Error() string {
	return "invariant violation for " + e.Content.String() + ": " + e.Message
}

func NotFound(message string) error {
	return &ErrorNotFound{Message: message}
}
