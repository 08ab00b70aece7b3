package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrorTypeNetwork, "connection refused")
	expected := "network error: connection refused"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	withCode := ErrUpstreamRejected.WithCode(10201)
	expected = "upstream_rejected error (code 10201): upstream rejected the request"
	if withCode.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, withCode.Error())
	}
}

func TestSentinelMatching(t *testing.T) {
	// Separately constructed errors of the same type match the sentinel
	err := Newf(ErrorTypeEmptyResponse, "body was empty on attempt %d", 2)
	if !stderrors.Is(err, ErrEmptyResponse) {
		t.Error("Expected a constructed empty response error to match the sentinel")
	}

	withCode := ErrUpstreamRejected.WithCode(100)
	if !stderrors.Is(withCode, ErrUpstreamRejected) {
		t.Error("Expected an error with code to still match its sentinel")
	}

	if stderrors.Is(err, ErrMissingToken) {
		t.Error("Errors of different types must not match")
	}
}

func TestErrorAs(t *testing.T) {
	var apiErr *Error
	wrapped := ErrUpstreamRejected.WithCode(42)

	if !stderrors.As(wrapped, &apiErr) {
		t.Fatal("Expected errors.As to extract the typed error")
	}
	if apiErr.Code != 42 {
		t.Errorf("Expected code 42, got %d", apiErr.Code)
	}
	if apiErr.Type != ErrorTypeUpstreamRejected {
		t.Errorf("Expected upstream_rejected type, got %s", apiErr.Type)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  bool
	}{
		{ErrorTypeEmptyResponse, true},
		{ErrorTypeUpstreamRejected, true},
		{ErrorTypeNetwork, true},
		{ErrorTypeNotInitialized, false},
		{ErrorTypeMissingToken, false},
		{ErrorTypeParsing, false},
		{ErrorTypeClassifier, false},
		{ErrorTypeUnknown, false},
	}

	for _, test := range tests {
		t.Run(string(test.errorType), func(t *testing.T) {
			if got := IsRetryable(test.errorType); got != test.expected {
				t.Errorf("IsRetryable(%s) = %v, expected %v", test.errorType, got, test.expected)
			}
		})
	}
}
