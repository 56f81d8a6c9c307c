package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidRequest      = errors.New("invalid order request")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderTerminal       = errors.New("order is in a terminal state")
	ErrOrderCreationFailed = errors.New("order creation failed")
)

// CreationError reports a failed saga. The order it names is left FAILED and
// Err is the step failure that caused it.
type CreationError struct {
	OrderID string
	Err     error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("order %s creation failed: %v", e.OrderID, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

func (e *CreationError) Is(target error) bool {
	return target == ErrOrderCreationFailed
}
