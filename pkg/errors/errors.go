package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
	CodePayment       Code = "PAYMENT_FAILED"
	CodeOutOfStock    Code = "OUT_OF_STOCK"
)

// Metadata is what the HTTP layer needs to answer for a code.
// PublicMessage is shown when the error carries no message of its own.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var (
	metadataByCode = map[Code]Metadata{}
	codeByStatus   = map[int]Code{}
)

// register adds a code to the table. The first code registered for a status
// is the one CodeForStatus returns for it.
func register(code Code, status int, public string, retryable, details bool) {
	metadataByCode[code] = Metadata{
		HTTPStatus:     status,
		Retryable:      retryable,
		PublicMessage:  public,
		DetailsAllowed: details,
	}
	if _, taken := codeByStatus[status]; !taken {
		codeByStatus[status] = code
	}
}

func init() {
	register(CodeValidation, http.StatusBadRequest, "please check the highlighted fields", false, true)
	register(CodeUnauthorized, http.StatusUnauthorized, "please sign in to continue", false, false)
	register(CodeForbidden, http.StatusForbidden, "you do not have access to this", false, false)
	register(CodeNotFound, http.StatusNotFound, "we could not find what you were looking for", false, false)
	register(CodeConflict, http.StatusConflict, "this item changed, please refresh and try again", false, false)
	register(CodeStateConflict, http.StatusUnprocessableEntity, "this action is not possible right now", false, true)
	register(CodeIdempotency, http.StatusConflict, "this request was already submitted with different data", false, true)
	register(CodeRateLimit, http.StatusTooManyRequests, "too many requests, please slow down", false, false)
	register(CodeInternal, http.StatusInternalServerError, "something went wrong on our side", true, false)
	register(CodeDependency, http.StatusServiceUnavailable, "the store is temporarily unavailable", true, true)
	register(CodePayment, http.StatusPaymentRequired, "payment could not be completed", true, true)
	register(CodeOutOfStock, http.StatusConflict, "requested quantity exceeds available stock", false, true)

	// The commerce backend answers some validation failures with 422.
	codeByStatus[http.StatusUnprocessableEntity] = CodeValidation
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// CodeForStatus maps an upstream HTTP status onto a code. Statuses without a
// registered code are treated as a failing dependency.
func CodeForStatus(status int) Code {
	if code, ok := codeByStatus[status]; ok && code != CodeInternal {
		return code
	}
	return CodeDependency
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.message == "" {
		return string(e.code)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Retryable reports whether the visitor can usefully repeat the request.
func (e *Error) Retryable() bool {
	return MetadataFor(e.Code()).Retryable
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// CodeOf returns the code carried by err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodeInternal
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
