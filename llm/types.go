package llm

import (
	"encoding/json"
)

// MessageKind tags the variant of a conversation message.
type MessageKind string

const (
	KindSystem     MessageKind = "system"
	KindUser       MessageKind = "user"
	KindAssistant  MessageKind = "assistant"
	KindToolResult MessageKind = "tool_result"
)

// Message is a single provider-neutral conversation message. Which fields are
// populated depends on Kind:
//
//   - KindSystem: Text
//   - KindUser: Text plus optional Images and Documents
//   - KindAssistant: Text plus optional ToolCalls
//   - KindToolResult: ToolResults (one or more)
//
// Messages are treated as immutable once constructed; adapters only read them.
type Message struct {
	Kind        MessageKind
	Text        string
	Images      []Image
	Documents   []Document
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Image is an image attachment on a user message, referenced by URL or
// embedded as raw bytes with a media type.
type Image struct {
	URL       string
	Data      []byte
	MediaType string // e.g. "image/png"; required when Data is set
	Detail    string // optional provider hint: "low", "high", "auto"
}

// Document is a file attachment on a user message.
type Document struct {
	Filename  string
	Data      []byte
	MediaType string // e.g. "application/pdf", "text/plain"
}

// ToolCall is a model-requested invocation of a caller-supplied tool.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{} // JSON-serializable input parameters
}

// ToolResult carries the outcome of executing a single tool call back to the
// model. One tool-result message may carry several of these.
type ToolResult struct {
	ToolCallID string
	Content    string // JSON-serialized or plain-text result
	IsError    bool
}

// ToolSpec represents a tool definition that can be provided to an LLM.
type ToolSpec struct {
	Name        string
	Description string
	Schema      ToolSchema
}

// ToolSchema represents the JSON schema for a tool's input parameters.
type ToolSchema struct {
	Type        string
	Properties  map[string]interface{}
	Required    []string
	ExtraFields map[string]interface{} // For any additional schema fields
}

// Request represents a complete LLM API request.
// System prompts are kept separate from the conversation; adapters prepend
// them before the conversation messages in their given order.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	Tools       []ToolSpec
	MaxTokens   int64
	Temperature *float64 // Optional temperature override
}

// Response represents a complete LLM API response. Message is always an
// assistant-kind message carrying the generated text and any tool calls.
type Response struct {
	Message    Message
	Usage      *Usage
	StopReason string
}

// Usage represents token usage information from an LLM response.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	// Provider-specific usage fields can be added here
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// StreamDelta represents a single delta in a streaming response.
type StreamDelta struct {
	Type      StreamDeltaType
	Text      string    // For text deltas
	ToolCall  *ToolCall // For tool call start
	ToolInput string    // For tool input JSON deltas
}

// StreamDeltaType represents the type of streaming delta.
type StreamDeltaType string

const (
	StreamDeltaTypeText      StreamDeltaType = "text"
	StreamDeltaTypeToolCall  StreamDeltaType = "tool_call"
	StreamDeltaTypeToolInput StreamDeltaType = "tool_input"
)

// StreamEvent represents a complete streaming event.
type StreamEvent struct {
	Type  StreamEventType
	Delta *StreamDelta
	Usage *Usage
	Done  bool
}

// StreamEventType represents the type of streaming event.
type StreamEventType string

const (
	StreamEventTypeStart        StreamEventType = "start"
	StreamEventTypeContentBlock StreamEventType = "content_block"
	StreamEventTypeContentDelta StreamEventType = "content_delta"
	StreamEventTypeMessageDelta StreamEventType = "message_delta"
	StreamEventTypeStop         StreamEventType = "stop"
)

// NewSystemMessage creates a system-kind message.
func NewSystemMessage(text string) Message {
	return Message{Kind: KindSystem, Text: text}
}

// NewUserMessage creates a user message with text and optional attachments.
func NewUserMessage(text string, images []Image, documents []Document) Message {
	return Message{
		Kind:      KindUser,
		Text:      text,
		Images:    images,
		Documents: documents,
	}
}

// NewTextMessage creates a user message carrying only text.
func NewTextMessage(text string) Message {
	return Message{Kind: KindUser, Text: text}
}

// NewAssistantMessage creates an assistant message with text content.
func NewAssistantMessage(text string) Message {
	return Message{Kind: KindAssistant, Text: text}
}

// NewToolCallMessage creates an assistant message requesting tool invocations.
func NewToolCallMessage(text string, calls []ToolCall) Message {
	return Message{
		Kind:      KindAssistant,
		Text:      text,
		ToolCalls: calls,
	}
}

// NewToolResultMessage creates a tool-result message carrying the outcome of
// one or more tool calls.
func NewToolResultMessage(results ...ToolResult) Message {
	return Message{
		Kind:        KindToolResult,
		ToolResults: results,
	}
}

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
