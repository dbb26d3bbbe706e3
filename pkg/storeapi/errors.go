package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
)

// Error describes a failed backend call. Status is zero when no response arrived.
type Error struct {
	Status  int
	Route   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Route, e.cause)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s returned %d", e.Route, e.Status)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Route, e.Status, e.Message)
}

func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) StatusCode() int { return e.Status }
func (e *Error) Path() string    { return e.Route }

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func (b errorBody) text() string {
	for _, candidate := range []string{b.Message, b.Error, b.Msg} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

func statusError(route string, status int, body []byte) error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	apiErr := &Error{Status: status, Route: route, Message: parsed.text()}
	code := pkgerrors.CodeForStatus(status)
	msg := apiErr.Message
	if msg == "" {
		msg = pkgerrors.MetadataFor(code).PublicMessage
	}
	return pkgerrors.Wrap(code, apiErr, msg)
}

func transportError(route string, err error) error {
	apiErr := &Error{Route: route, cause: err}
	msg := "commerce backend unreachable"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "commerce backend timed out"
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, msg)
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
