package x402

import (
	"errors"
	"testing"
)

func TestPaymentErrorUnwrapAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := NewPaymentError(ErrCodeFacilitatorError, "request failed", cause).
		WithDetails("attempt", "1")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through PaymentError to its cause")
	}
	code, ok := CodeOf(err)
	if !ok || code != ErrCodeFacilitatorError {
		t.Errorf("CodeOf = %v, %v; want FACILITATOR_ERROR, true", code, ok)
	}
	if err.Details["attempt"] != "1" {
		t.Errorf("expected attached detail, got %+v", err.Details)
	}
}

func TestCodeOfNonPaymentError(t *testing.T) {
	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Error("expected CodeOf to report false for a plain error")
	}
}
