package errors

import "fmt"

var (
	// Domain errors — used in usecase/repository
	ErrConversationNotFound = NotFound("conversation not found")
	ErrAssignmentNotFound   = NotFound("assignment not found")
	ErrBusinessNotFound     = NotFound("business not found")
	ErrNoSession            = Unauthorized("missing or invalid session")
	ErrTenantMismatch       = Forbidden("conversation belongs to another business")
	ErrMissingPhone         = InvalidArg("customerPhone is required")
	ErrMissingSource        = InvalidArg("source is required")
	ErrEmptyMessage         = InvalidArg("message content is required")
)

// InvalidTransition reports an illegal conversation status change.
// The from/to pair is preserved so callers can surface it.
func InvalidTransition(from, to string) error {
	return &AppError{
		Code:    CodeFailedPrecondition,
		Message: fmt.Sprintf("invalid transition from %s to %s", from, to),
	}
}

func ErrPersistenceFailed(cause error) error {
	return Wrap(CodeInternal, "persistence failure", cause)
}

func ErrNotificationFailed(cause error) error {
	return Wrap(CodeInternal, "notification write failed", cause)
}
