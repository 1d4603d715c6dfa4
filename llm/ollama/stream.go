package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/jmontane/switchyard/llm"
)

// ollamaStream implements the llm.Stream interface on top of Ollama's
// callback-based Chat API. The callback runs in a background goroutine and
// buffers events; a condition variable bridges it to the pull-based Stream
// interface.
type ollamaStream struct {
	ctx     context.Context
	client  *api.Client
	req     *api.ChatRequest
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
}

// newOllamaStream creates a new ollamaStream.
func newOllamaStream(ctx context.Context, client *api.Client, req *api.ChatRequest) *ollamaStream {
	stream := &ollamaStream{
		ctx:     ctx,
		client:  client,
		req:     req,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
	}
	stream.cond = sync.NewCond(&stream.mu)
	return stream
}

// Next advances to the next event in the stream.
func (s *ollamaStream) Next() bool {
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
func (s *ollamaStream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *ollamaStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *ollamaStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
	return nil
}

// emit appends an event and wakes the consumer. Must be called with s.mu held.
func (s *ollamaStream) emit(event *llm.StreamEvent) {
	s.events = append(s.events, event)
	s.cond.Broadcast()
}

// startStream runs the chat call and buffers provider-neutral events as the
// callback delivers chunks.
func (s *ollamaStream) startStream() {
	s.mu.Lock()
	s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStart})
	s.mu.Unlock()

	// Ollama sends incremental deltas (new tokens) in each response, not
	// cumulative content.
	var currentToolCall *llm.ToolCall
	firstContentBlock := true

	err := s.client.Chat(s.ctx, s.req, func(resp api.ChatResponse) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if resp.Message.Content != "" {
			eventType := llm.StreamEventTypeContentDelta
			if firstContentBlock {
				eventType = llm.StreamEventTypeContentBlock
				firstContentBlock = false
			}
			s.emit(&llm.StreamEvent{
				Type: eventType,
				Delta: &llm.StreamDelta{
					Type: llm.StreamDeltaTypeText,
					Text: resp.Message.Content,
				},
			})
		}

		for _, toolCall := range resp.Message.ToolCalls {
			if currentToolCall == nil || currentToolCall.Name != toolCall.Function.Name {
				currentToolCall = &llm.ToolCall{
					ID:    fmt.Sprintf("call_%s_%d", toolCall.Function.Name, len(s.events)),
					Name:  toolCall.Function.Name,
					Input: make(map[string]interface{}),
				}

				s.emit(&llm.StreamEvent{
					Type: llm.StreamEventTypeContentBlock,
					Delta: &llm.StreamDelta{
						Type:     llm.StreamDeltaTypeToolCall,
						ToolCall: currentToolCall,
					},
				})
			}

			// Arguments arrive as partial maps; merge them into the call
			if len(toolCall.Function.Arguments) > 0 {
				for k, v := range toolCall.Function.Arguments {
					currentToolCall.Input[k] = v
				}

				if argsBytes, err := json.Marshal(currentToolCall.Input); err == nil {
					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentDelta,
						Delta: &llm.StreamDelta{
							Type:      llm.StreamDeltaTypeToolInput,
							ToolInput: string(argsBytes),
						},
					})
				}
			}
		}

		if resp.Done {
			usage := &llm.Usage{}
			if resp.PromptEvalCount > 0 {
				usage.InputTokens = int64(resp.PromptEvalCount)
			}
			if resp.EvalCount > 0 {
				usage.OutputTokens = int64(resp.EvalCount)
			}

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
		}

		return nil
	})

	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.err = err
		s.done = true
		s.cond.Broadcast()
	}
}

var _ llm.Stream = (*ollamaStream)(nil)
