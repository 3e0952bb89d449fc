// Package gateway is the boundary abstraction over hosted language-model
// APIs. It wraps the gollm library (github.com/teilomillet/gollm) behind a
// small provider-agnostic client so the rest of the agent never talks to a
// provider SDK directly.
//
// # Architecture
//
//   - Client routes requests to registered ProviderAdapters and applies a
//     bounded exponential-backoff retry policy.
//   - The typed error hierarchy classifies provider failures as retryable
//     (rate limits, server errors, timeouts) or fatal (auth, invalid
//     request, context length). Only fatal-after-retry errors escape to
//     callers.
//   - GollmAdapter translates between gateway types and gollm's prompt
//     model, including recovery of tool calls the model embeds in text.
//
// Every call is blocking; cancellation is injected through the
// context.Context passed to Complete, which is also checked between retry
// attempts.
package gateway
