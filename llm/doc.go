// Package llm provides a provider-neutral abstraction layer for Large Language Model (LLM) APIs.
//
// This package defines common types, interfaces, and utilities that allow callers
// to work with multiple LLM providers (OpenAI, Anthropic, Ollama) without being
// tightly coupled to any specific provider's SDK.
//
// # Core Concepts
//
//  1. Messages: The Message type is a tagged variant (system, user, assistant,
//     tool_result) carrying text, image and document attachments, tool calls,
//     or tool results depending on its kind.
//
//  2. Tools: The ToolSpec type represents a tool definition that can be provided
//     to an LLM; ToolCall and ToolResult represent tool invocations and their results.
//
//  3. Client Interface: The Client interface provides Synchronous() for non-streaming
//     calls and Stream() for streaming calls. Implementations in the per-provider
//     subpackages handle the wire-format translation.
//
//  4. Middleware: The Middleware and StreamMiddleware interfaces allow adding
//     cross-cutting concerns like logging, retry logic, rate limiting, etc.
//     without modifying provider implementations. WrapWithRetry adds
//     backoff-based retries for retryable errors.
//
//  5. Errors: The Error type provides provider-neutral error handling with support
//     for rate limits, retryable errors, and provider-specific error details.
//     UnmappableMessageError guards against message kinds an adapter cannot translate.
//
// Usage Example
//
//	client, err := openai.NewOpenAIClient(apiKey, "", "gpt-4o", "")
//	if err != nil { ... }
//
//	client := llm.WrapWithRetry(client, logger, nil)
//
//	req := &llm.Request{
//	    Model:  "gpt-4o",
//	    System: []string{"You are a helpful assistant."},
//	    Messages: []llm.Message{
//	        llm.NewTextMessage("Hello!"),
//	    },
//	}
//
//	resp, err := client.Synchronous(ctx, req)
//
// # Extension Points
//
// To add a new LLM provider:
//  1. Implement the Client interface
//  2. Translate between provider-specific types and llm package types
//  3. Handle provider-specific errors and translate to llm.Error types
package llm
