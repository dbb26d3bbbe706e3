package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"email": "is required"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "bad input" {
		t.Fatalf("expected message passthrough, got %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorKeepsPaymentMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodePayment, "Your card was declined."))

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 got %d", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "Your card was declined." {
		t.Fatalf("expected decline message verbatim, got %q", body.Error.Message)
	}
}

func TestWriteErrorHidesUnauthorizedDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in").WithDetails(map[string]string{"token": "secret"})
	WriteError(context.Background(), nil, w, err)

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Details != nil {
		t.Fatalf("details must not leak for unauthorized errors: %v", body.Error.Details)
	}
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message == "boom" {
		t.Fatalf("internal error text must not leak")
	}
}

func TestWriteErrorEchoesRequestIDAndRetryable(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "req-42")
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "commerce backend timed out"))

	if got := w.Code; got != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 but got %d", got)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.RequestID != "req-42" || !body.Error.Retryable {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
}

func TestWriteAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAttachment(w, `invoice-"42".pdf`, "application/pdf", []byte("%PDF"))

	if w.Header().Get("Content-Disposition") != `attachment; filename="invoice-42.pdf"` {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "%PDF" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}
