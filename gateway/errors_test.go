package gateway

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryableClassification(t *testing.T) {
	pe := ProviderError{GatewayError: GatewayError{Message: "boom"}}

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"authentication", &AuthenticationError{ProviderError: pe}, false},
		{"invalid request", &InvalidRequestError{ProviderError: pe}, false},
		{"not found", &NotFoundError{ProviderError: pe}, false},
		{"context length", &ContextLengthError{ProviderError: pe}, false},
		{"configuration", &ConfigurationError{GatewayError: GatewayError{Message: "boom"}}, false},
		{"abort", &AbortError{GatewayError: GatewayError{Message: "boom"}}, false},
		{"rate limit", &RateLimitError{ProviderError: pe}, true},
		{"server", &ServerError{ProviderError: pe}, true},
		{"network", &NetworkError{GatewayError: GatewayError{Message: "boom"}}, true},
		{"timeout", &RequestTimeoutError{GatewayError: GatewayError{Message: "boom"}}, true},
		{"unknown", errors.New("mystery"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%T) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestProviderErrorRetryableFlag(t *testing.T) {
	retryable := &ProviderError{GatewayError: GatewayError{Message: "x"}, Retryable: true}
	fatal := &ProviderError{GatewayError: GatewayError{Message: "x"}, Retryable: false}

	if !IsRetryable(retryable) {
		t.Error("expected retryable provider error to be retryable")
	}
	if IsRetryable(fatal) {
		t.Error("expected non-retryable provider error to be fatal")
	}
}

func TestGatewayErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &GatewayError{Message: "wrapped", Cause: cause}

	if !errors.Is(fmt.Errorf("outer: %w", err), cause) {
		t.Error("expected errors.Is to find the root cause through Unwrap")
	}
	if err.Error() != "wrapped: root cause" {
		t.Errorf("unexpected error string: %q", err.Error())
	}
}

func TestProviderErrorString(t *testing.T) {
	err := &ProviderError{
		GatewayError: GatewayError{Message: "overloaded"},
		Provider:     "openai",
		StatusCode:   503,
		Retryable:    true,
	}
	want := "[openai] overloaded (status=503, retryable=true)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
