package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "please check the highlighted fields", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "please sign in to continue"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "you do not have access to this"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "we could not find what you were looking for"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "this item changed, please refresh and try again"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "this action is not possible right now", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "something went wrong on our side", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "the store is temporarily unavailable", retryable: true, detailsOK: true},
		{code: CodePayment, status: http.StatusPaymentRequired, publicMsg: "payment could not be completed", retryable: true, detailsOK: true},
		{code: CodeOutOfStock, status: http.StatusConflict, publicMsg: "requested quantity exceeds available stock", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := map[int]Code{
		http.StatusBadRequest:          CodeValidation,
		http.StatusUnprocessableEntity: CodeValidation,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusForbidden:           CodeForbidden,
		http.StatusNotFound:            CodeNotFound,
		http.StatusConflict:            CodeConflict,
		http.StatusPaymentRequired:     CodePayment,
		http.StatusTooManyRequests:     CodeRateLimit,
		http.StatusInternalServerError: CodeDependency,
		http.StatusBadGateway:          CodeDependency,
		http.StatusTeapot:              CodeDependency,
	}
	for status, want := range tests {
		if got := CodeForStatus(status); got != want {
			t.Fatalf("status %d expected %s got %s", status, want, got)
		}
	}
}

func TestNewfAndRetryable(t *testing.T) {
	err := Newf(CodeOutOfStock, "only %d of %s in stock", 2, "Linen Shirt")
	if err.Message() != "only 2 of Linen Shirt in stock" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Retryable() {
		t.Fatalf("stock conflicts are not retryable")
	}
	if !New(CodeDependency, "").Retryable() {
		t.Fatalf("dependency failures are retryable")
	}
	if New(CodeNotFound, "").Error() != string(CodeNotFound) {
		t.Fatalf("empty message should render the bare code")
	}
}

func TestIsCodeAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("adding line: %w", New(CodeOutOfStock, "only 2 left"))
	if !IsCode(wrapped, CodeOutOfStock) {
		t.Fatalf("expected IsCode to see through wrapping")
	}
	if IsCode(wrapped, CodeConflict) {
		t.Fatalf("unexpected code match")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors should map to internal")
	}
	if CodeOf(wrapped) != CodeOutOfStock {
		t.Fatalf("expected out of stock code")
	}
}

type fakeUpstreamErr struct{}

func (fakeUpstreamErr) Error() string   { return "upstream 502" }
func (fakeUpstreamErr) StatusCode() int { return 502 }
func (fakeUpstreamErr) Path() string    { return "/cart" }

func TestDumpIncludesUpstreamDetails(t *testing.T) {
	err := Wrap(CodeDependency, fakeUpstreamErr{}, "fetch cart")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if d.UpstreamStatus != 502 || d.UpstreamPath != "/cart" {
		t.Fatalf("unexpected upstream details %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
}
