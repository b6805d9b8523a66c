package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("booking not found")
	ErrForbidden               = errors.New("not allowed to act on this booking")
	ErrInvalidTransition       = errors.New("booking cannot move to the requested status")
	ErrProfessionalUnavailable = errors.New("professional is not accepting bookings")
	ErrAlreadyReviewed         = errors.New("booking already reviewed")
	ErrNotReviewable           = errors.New("only completed bookings can be reviewed")
	ErrAlreadyPaidOut          = errors.New("booking was already paid out")
	ErrDisputeNotFound         = errors.New("dispute not found")
	ErrDisputeClosed           = errors.New("dispute is already resolved")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// PaymentError wraps a failure of the payment provider. The booking is left
// in the state it had before the call.
type PaymentError struct {
	Op  string
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Op, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }
