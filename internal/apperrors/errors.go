package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrImmutableField indicates an attempt to change a field that is fixed once the entity is in use.
var ErrImmutableField = errors.New("immutable field")

// ErrAccountInUse indicates an account cannot be removed while ledger records reference it.
var ErrAccountInUse = errors.New("account in use")

// ErrOverpayment indicates a payment would push paidAmount above totalAmount.
var ErrOverpayment = errors.New("overpayment")

// ErrConcurrencyConflict indicates a concurrent writer won the race. Callers may retry.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrDefaultAccountExists indicates another active account is already the default for the currency.
var ErrDefaultAccountExists = errors.New("default account exists")

// ErrUnsupportedCurrency indicates an account does not hold the requested currency.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ErrUnauthorized indicates the caller did not supply a usable identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal is the fallback kind for unexpected failures.
var ErrInternal = errors.New("internal error")

// Kind is the stable, machine readable name of an error category.
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindNotFound             Kind = "NotFoundError"
	KindDuplicate            Kind = "DuplicateError"
	KindImmutableField       Kind = "ImmutableFieldError"
	KindAccountInUse         Kind = "AccountInUseError"
	KindOverpayment          Kind = "OverpaymentError"
	KindConcurrencyConflict  Kind = "ConcurrencyConflictError"
	KindDefaultAccountExists Kind = "DefaultAccountExistsError"
	KindUnsupportedCurrency  Kind = "UnsupportedCurrencyError"
	KindUnauthorized         Kind = "UnauthorizedError"
	KindInternal             Kind = "InternalError"
)

var kinds = []struct {
	sentinel error
	kind     Kind
	status   int
}{
	{ErrValidation, KindValidation, http.StatusBadRequest},
	{ErrNotFound, KindNotFound, http.StatusNotFound},
	{ErrDuplicate, KindDuplicate, http.StatusConflict},
	{ErrImmutableField, KindImmutableField, http.StatusUnprocessableEntity},
	{ErrAccountInUse, KindAccountInUse, http.StatusConflict},
	{ErrOverpayment, KindOverpayment, http.StatusUnprocessableEntity},
	{ErrConcurrencyConflict, KindConcurrencyConflict, http.StatusConflict},
	{ErrDefaultAccountExists, KindDefaultAccountExists, http.StatusConflict},
	{ErrUnsupportedCurrency, KindUnsupportedCurrency, http.StatusBadRequest},
	{ErrUnauthorized, KindUnauthorized, http.StatusUnauthorized},
	{ErrInternal, KindInternal, http.StatusInternalServerError},
}

// AppError attaches a human readable message to one of the sentinel kinds above
// while keeping the underlying cause available to errors.Is / errors.As.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, msg string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

// Validation is shorthand for a formatted validation error.
func Validation(format string, args ...any) error {
	return NewAppError(ErrValidation, fmt.Sprintf(format, args...), nil)
}

// NotFound is shorthand for a missing entity error.
func NotFound(entity, id string) error {
	return NewAppError(ErrNotFound, fmt.Sprintf("%s %s not found", entity, id), nil)
}

// KindOf reports the kind name of err. Unknown errors are internal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus maps err to the HTTP status code used by the API layer.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the client facing message for err. Internal errors are masked.
func Message(err error) string {
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
