package anthropic

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rs/zerolog"

	"github.com/jmontane/switchyard/llm"
)

// anthropicStream implements the llm.Stream interface for Messages-API
// streaming responses. Events are produced by a background goroutine and
// consumed through the pull-based Stream interface; a condition variable
// bridges the two.
type anthropicStream struct {
	ctx     context.Context
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
	logger  zerolog.Logger
}

// newAnthropicStream creates a new anthropicStream.
func newAnthropicStream(ctx context.Context, stream *ssestream.Stream[anthropic.MessageStreamEventUnion], logger zerolog.Logger) *anthropicStream {
	as := &anthropicStream{
		ctx:     ctx,
		stream:  stream,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
		logger:  logger,
	}
	as.cond = sync.NewCond(&as.mu)
	return as
}

// Next advances to the next event in the stream.
func (s *anthropicStream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		go s.startStream()
	}

	s.current++

	// Wait until the producer has buffered the next event, failed, or finished
	for s.current >= len(s.events) && !s.done && s.err == nil {
		s.cond.Wait()
	}

	if s.err != nil {
		return false
	}
	if s.done && s.current >= len(s.events) {
		return false
	}

	return s.current < len(s.events)
}

// Event returns the current event.
func (s *anthropicStream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *anthropicStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *anthropicStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// emit appends an event and wakes the consumer. Must be called with s.mu held.
func (s *anthropicStream) emit(event *llm.StreamEvent) {
	s.events = append(s.events, event)
	s.cond.Broadcast()
}

// startStream drains the SSE stream and buffers provider-neutral events.
func (s *anthropicStream) startStream() {
	s.mu.Lock()
	s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStart})
	s.mu.Unlock()

	var currentToolCall *llm.ToolCall
	var toolInputBuilder strings.Builder
	var usage *llm.Usage

	finishToolCall := func() {
		if currentToolCall == nil {
			return
		}
		var input map[string]interface{}
		if toolInputBuilder.Len() > 0 {
			if err := json.Unmarshal([]byte(toolInputBuilder.String()), &input); err != nil {
				input = make(map[string]interface{})
			}
		} else {
			input = make(map[string]interface{})
		}
		currentToolCall.Input = input
		toolInputBuilder.Reset()
		currentToolCall = nil
	}

	for s.stream.Next() {
		event := s.stream.Current()

		s.mu.Lock()

		switch evt := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			// Start event already emitted

		case anthropic.ContentBlockStartEvent:
			if contentBlock := evt.ContentBlock.AsAny(); contentBlock != nil {
				if block, ok := contentBlock.(anthropic.ToolUseBlock); ok {
					currentToolCall = &llm.ToolCall{
						ID:    block.ID,
						Name:  block.Name,
						Input: make(map[string]interface{}),
					}
					toolInputBuilder.Reset()

					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentBlock,
						Delta: &llm.StreamDelta{
							Type:     llm.StreamDeltaTypeToolCall,
							ToolCall: currentToolCall,
						},
					})
				}
			}

		case anthropic.ContentBlockDeltaEvent:
			switch d := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if d.Text != "" {
					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentDelta,
						Delta: &llm.StreamDelta{
							Type: llm.StreamDeltaTypeText,
							Text: d.Text,
						},
					})
				}
			case anthropic.InputJSONDelta:
				if currentToolCall != nil && d.PartialJSON != "" {
					toolInputBuilder.WriteString(d.PartialJSON)
					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentDelta,
						Delta: &llm.StreamDelta{
							Type:      llm.StreamDeltaTypeToolInput,
							ToolInput: d.PartialJSON,
						},
					})
				}
			}

		case anthropic.ContentBlockStopEvent:
			finishToolCall()

		case anthropic.MessageDeltaEvent:
			usage = &llm.Usage{
				InputTokens:              evt.Usage.InputTokens,
				OutputTokens:             evt.Usage.OutputTokens,
				CacheCreationInputTokens: evt.Usage.CacheCreationInputTokens,
				CacheReadInputTokens:     evt.Usage.CacheReadInputTokens,
			}

			if usage.CacheCreationInputTokens > 0 || usage.CacheReadInputTokens > 0 {
				cacheEfficiency := float64(0)
				if usage.InputTokens > 0 {
					cacheEfficiency = float64(usage.CacheReadInputTokens) / float64(usage.InputTokens) * 100
				}
				s.logger.Debug().
					Int64("input_tokens", usage.InputTokens).
					Int64("cache_creation_tokens", usage.CacheCreationInputTokens).
					Int64("cache_read_tokens", usage.CacheReadInputTokens).
					Float64("cache_efficiency", cacheEfficiency).
					Msg("Prompt cache stats (stream)")
			}

		case anthropic.MessageStopEvent:
			finishToolCall()

			s.emit(&llm.StreamEvent{
				Type:  llm.StreamEventTypeMessageDelta,
				Usage: usage,
			})
			s.emit(&llm.StreamEvent{
				Type:  llm.StreamEventTypeStop,
				Usage: usage,
				Done:  true,
			})

			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}

		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stream.Err(); err != nil {
		s.err = err
	}
	s.done = true
	s.cond.Broadcast()
}

var _ llm.Stream = (*anthropicStream)(nil)
