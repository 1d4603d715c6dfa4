package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jmontane/switchyard/llm"
)

// openaiStream implements the llm.Stream interface for chat-completions
// streaming responses.
type openaiStream struct {
	ctx     context.Context
	stream  *openai.ChatCompletionStream
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	err     error
	done    bool
	started bool
}

// newOpenAIStream creates a new openaiStream.
func newOpenAIStream(ctx context.Context, stream *openai.ChatCompletionStream) *openaiStream {
	return &openaiStream{
		ctx:     ctx,
		stream:  stream,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
	}
}

// Next advances to the next event in the stream.
func (s *openaiStream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		s.startStream()
	}

	if s.err != nil {
		return false
	}

	// The SDK stream is drained up front; done only means no further events
	// will be buffered, not that buffered ones were consumed.
	s.current++
	return s.current < len(s.events)
}

// Event returns the current event.
func (s *openaiStream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *openaiStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *openaiStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// startStream drains the SDK stream and buffers provider-neutral events.
func (s *openaiStream) startStream() {
	s.events = append(s.events, &llm.StreamEvent{
		Type: llm.StreamEventTypeStart,
	})

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
	}

	for {
		response, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			s.err = err
			s.done = true
			return
		}

		if len(response.Choices) == 0 {
			continue
		}

		choice := response.Choices[0]

		if choice.Delta.Content != "" {
			s.events = append(s.events, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Delta: &llm.StreamDelta{
					Type: llm.StreamDeltaTypeText,
					Text: choice.Delta.Content,
				},
			})
		}

		for _, toolCallDelta := range choice.Delta.ToolCalls {
			if toolCallDelta.Index == nil {
				continue
			}

			// A new ID means the previous tool call is complete
			if currentToolCall != nil && toolCallDelta.ID != "" && currentToolCall.ID != toolCallDelta.ID {
				finishToolCall()
				currentToolCall = nil
			}

			if currentToolCall == nil && toolCallDelta.ID != "" {
				currentToolCall = &llm.ToolCall{
					ID:    toolCallDelta.ID,
					Name:  toolCallDelta.Function.Name,
					Input: make(map[string]interface{}),
				}

				s.events = append(s.events, &llm.StreamEvent{
					Type: llm.StreamEventTypeContentBlock,
					Delta: &llm.StreamDelta{
						Type:     llm.StreamDeltaTypeToolCall,
						ToolCall: currentToolCall,
					},
				})
			}

			if toolCallDelta.Function.Arguments != "" {
				toolInputBuilder.WriteString(toolCallDelta.Function.Arguments)

				s.events = append(s.events, &llm.StreamEvent{
					Type: llm.StreamEventTypeContentDelta,
					Delta: &llm.StreamDelta{
						Type:      llm.StreamDeltaTypeToolInput,
						ToolInput: toolCallDelta.Function.Arguments,
					},
				})
			}
		}

		if choice.FinishReason != "" {
			finishToolCall()

			if response.Usage != nil && response.Usage.TotalTokens > 0 {
				usage = &llm.Usage{
					InputTokens:  int64(response.Usage.PromptTokens),
					OutputTokens: int64(response.Usage.CompletionTokens),
				}
			}

			s.events = append(s.events, &llm.StreamEvent{
				Type:  llm.StreamEventTypeMessageDelta,
				Usage: usage,
			}, &llm.StreamEvent{
				Type:  llm.StreamEventTypeStop,
				Usage: usage,
				Done:  true,
			})
			break
		}
	}
}

var _ llm.Stream = (*openaiStream)(nil)
