package gateway

import (
	"context"
	"testing"
)

// mockAdapter is a test double for ProviderAdapter.
type mockAdapter struct {
	name     string
	response *Response
	err      error
	calls    int
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func newMockAdapter(name, text string) *mockAdapter {
	return &mockAdapter{
		name: name,
		response: &Response{
			ID:         "test_resp",
			Model:      "test-model",
			Provider:   name,
			Text:       text,
			StopReason: StopNormal,
			Usage:      Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}
}

// fastRetry is a retry policy with negligible delays for tests.
func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: 0.001, MaxDelay: 0.001, BackoffMultiplier: 1}
}

func TestClientComplete(t *testing.T) {
	mock := newMockAdapter("test-provider", "Hello!")
	client := NewClient(WithProvider(mock))

	resp, err := client.Complete(context.Background(), Request{
		Model:    "test-model",
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Hello!" {
		t.Errorf("expected text %q, got %q", "Hello!", resp.Text)
	}
	if resp.Provider != "test-provider" {
		t.Errorf("expected provider %q, got %q", "test-provider", resp.Provider)
	}
}

func TestClientProviderRouting(t *testing.T) {
	openai := newMockAdapter("openai", "OpenAI response")
	anthropic := newMockAdapter("anthropic", "Anthropic response")

	client := NewClient(
		WithProvider(openai),
		WithProvider(anthropic),
		WithDefaultProvider("openai"),
	)

	// Explicit provider.
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
		Provider: "anthropic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Anthropic response" {
		t.Errorf("expected Anthropic response, got %q", resp.Text)
	}

	// Default provider.
	resp, err = client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "OpenAI response" {
		t.Errorf("expected OpenAI response, got %q", resp.Text)
	}
}

func TestClientNoProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error for no provider")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	client := NewClient(WithProvider(newMockAdapter("openai", "hi")))
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
		Provider: "does-not-exist",
	})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestClientRetriesTransientErrors(t *testing.T) {
	mock := &mockAdapter{
		name: "flaky",
		err: &ServerError{ProviderError: ProviderError{
			GatewayError: GatewayError{Message: "server error"}, Retryable: true,
		}},
	}
	client := NewClient(WithProvider(mock), WithRetryPolicy(fastRetry(3)))

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.calls)
	}
}

func TestClientDoesNotRetryFatalErrors(t *testing.T) {
	mock := &mockAdapter{
		name: "strict",
		err: &AuthenticationError{ProviderError: ProviderError{
			GatewayError: GatewayError{Message: "bad key"}, StatusCode: 401,
		}},
	}
	client := NewClient(WithProvider(mock), WithRetryPolicy(fastRetry(3)))

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 attempt for fatal error, got %d", mock.calls)
	}
}

func TestSingleProviderBecomesDefault(t *testing.T) {
	client := NewClient(WithProvider(newMockAdapter("only", "response")))
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "response" {
		t.Errorf("expected default routing to single provider, got %q", resp.Text)
	}
}
