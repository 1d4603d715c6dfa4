package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingMiddleware logs requests, responses, and errors with structured
// fields. It implements both Middleware and StreamMiddleware.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware writing to the given logger.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "llmLogging").Logger(),
	}
}

// BeforeRequest implements Middleware.BeforeRequest.
func (m *LoggingMiddleware) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("system_prompts", len(req.System)).
		Int("tools", len(req.Tools)).
		Msg("LLM request")
	return req, nil
}

// AfterResponse implements Middleware.AfterResponse.
func (m *LoggingMiddleware) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	evt := m.logger.Debug().
		Str("model", req.Model).
		Str("stop_reason", resp.StopReason).
		Int("tool_calls", len(resp.Message.ToolCalls))
	if resp.Usage != nil {
		evt = evt.
			Int64("input_tokens", resp.Usage.InputTokens).
			Int64("output_tokens", resp.Usage.OutputTokens)
	}
	evt.Msg("LLM response")
	return resp, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, req *Request, err error) error {
	m.logger.Warn().
		Str("model", req.Model).
		Err(err).
		Msg("LLM request failed")
	return err
}

// BeforeStream implements StreamMiddleware.BeforeStream.
func (m *LoggingMiddleware) BeforeStream(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("LLM stream started")
	return req, nil
}

// OnStreamEvent implements StreamMiddleware.OnStreamEvent.
func (m *LoggingMiddleware) OnStreamEvent(ctx context.Context, req *Request, event *StreamEvent) (*StreamEvent, error) {
	return event, nil
}

// OnStreamError implements StreamMiddleware.OnStreamError.
func (m *LoggingMiddleware) OnStreamError(ctx context.Context, req *Request, err error) error {
	m.logger.Warn().
		Str("model", req.Model).
		Err(err).
		Msg("LLM stream failed")
	return err
}

var _ Middleware = (*LoggingMiddleware)(nil)
var _ StreamMiddleware = (*LoggingMiddleware)(nil)
