package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned to a caller unwraps to at most one of these;
// anything else is an internal failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a user-facing failure. Message is safe to show to clients.
type Error struct {
	kind   error
	reason error
	msg    string
}

func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.reason != nil {
		return []error{e.kind, e.reason}
	}
	return []error{e.kind}
}

// Kind returns the kind sentinel the error belongs to.
func (e *Error) Kind() error {
	return e.kind
}

// Because returns a new error of the same kind as reason, with a more specific message.
// errors.Is matches both reason and its kind.
func Because(reason *Error, format string, args ...any) *Error {
	return &Error{kind: reason.kind, reason: reason, msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

var (
	ErrUserNotFound     = NewError(ErrNotFound, "User not found.")
	ErrProductNotFound  = NewError(ErrNotFound, "Product not found.")
	ErrCategoryNotFound = NewError(ErrNotFound, "Category not found.")
	ErrOrderNotFound    = NewError(ErrNotFound, "Order not found.")
	ErrCartItemNotFound = NewError(ErrNotFound, "Cart item not found.")

	ErrProductUnavailable = NewError(ErrValidation, "Product not found or not available.")
	ErrInvalidQuantity    = NewError(ErrValidation, "Quantity must be at least 1.")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid email or password.")
	ErrWrongPassword      = NewError(ErrValidation, "Current password is incorrect.")

	ErrCartEmpty            = NewError(ErrConflict, "Cart is empty. Cannot create order.")
	ErrInsufficientStock    = NewError(ErrConflict, "Insufficient stock.")
	ErrOrderNotCancellable  = NewError(ErrConflict, "Order cannot be cancelled in its current status.")
	ErrInvalidTransition    = NewError(ErrConflict, "Order status transition is not allowed.")
	ErrDuplicateSKU         = NewError(ErrConflict, "SKU already exists.")
	ErrDuplicateCategory    = NewError(ErrConflict, "Category name already exists.")
	ErrDuplicateEmail       = NewError(ErrConflict, "User with this email already exists.")
	ErrDuplicateOrderNumber = NewError(ErrConflict, "Order number already exists.")
	ErrCategoryInUse        = NewError(ErrConflict, "Cannot delete category with active products. Please deactivate or move products first.")
	ErrProductOrdered       = NewError(ErrConflict, "Cannot delete product with existing orders. Consider deactivating instead.")
	ErrReferenceViolation   = NewError(ErrConflict, "Operation conflicts with related records.")

	ErrAdminOnly = NewError(ErrForbidden, "Administrator role required.")
)

// CartValidationError rejects checkout of a cart that has stale lines.
type CartValidationError struct {
	Issues []string
}

func (e *CartValidationError) Error() string {
	return "Cart validation failed."
}

func (e *CartValidationError) Unwrap() error {
	return ErrConflict
}
