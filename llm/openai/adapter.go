package openai

import (
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jmontane/switchyard/llm"
)

// MessageMapper translates a provider-neutral conversation into the message
// list of a chat-completions request. It is constructed with the ordered
// system prompts and the ordered conversation messages; Map performs a single
// pass and holds no state beyond its output accumulator.
type MessageMapper struct {
	system   []string
	messages []llm.Message
}

// NewMessageMapper creates a mapper for the given system prompts and
// conversation messages.
func NewMessageMapper(system []string, messages []llm.Message) *MessageMapper {
	return &MessageMapper{
		system:   system,
		messages: messages,
	}
}

// Map produces the chat-completions message list. System prompts always come
// first: the constructor-supplied prompts in order, then any system-kind
// messages found inside the conversation, hoisted to the front in their
// original relative order. Every other message yields one output record in
// input order, except tool-result messages, which expand to one record per
// contained result.
func (m *MessageMapper) Map() ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(m.system)+len(m.messages))

	for _, prompt := range m.system {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	for _, msg := range m.messages {
		if msg.Kind == llm.KindSystem {
			result = append(result, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: msg.Text,
			})
		}
	}

	for _, msg := range m.messages {
		if msg.Kind == llm.KindSystem {
			continue
		}
		records, err := mapMessage(msg)
		if err != nil {
			return nil, err
		}
		result = append(result, records...)
	}

	return result, nil
}

// mapMessage converts a single conversation message. Tool-result messages
// return one record per result; everything else returns exactly one record.
func mapMessage(msg llm.Message) ([]openai.ChatCompletionMessage, error) {
	switch msg.Kind {
	case llm.KindUser:
		return []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: userContent(msg),
		}}, nil

	case llm.KindAssistant:
		record := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: msg.Text,
		}
		if len(msg.ToolCalls) > 0 {
			calls, err := mapToolCalls(msg.ToolCalls)
			if err != nil {
				return nil, err
			}
			record.ToolCalls = calls
		}
		return []openai.ChatCompletionMessage{record}, nil

	case llm.KindToolResult:
		records := make([]openai.ChatCompletionMessage, 0, len(msg.ToolResults))
		for _, res := range msg.ToolResults {
			records = append(records, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    res.Content,
				ToolCallID: res.ToolCallID,
			})
		}
		return records, nil

	default:
		return nil, &llm.UnmappableMessageError{Kind: msg.Kind}
	}
}

// userContent builds the content array for a user record: one text part
// first, then one part per image, then one part per document.
func userContent(msg llm.Message) []openai.ChatMessagePart {
	parts := make([]openai.ChatMessagePart, 0, 1+len(msg.Images)+len(msg.Documents))
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: msg.Text,
	})
	for _, img := range msg.Images {
		parts = append(parts, imagePart(img))
	}
	for _, doc := range msg.Documents {
		parts = append(parts, documentPart(doc))
	}
	return parts
}

// mapToolCalls converts assistant tool calls to the function-calling wire
// format. Inputs are marshaled to a JSON string for function.arguments.
func mapToolCalls(calls []llm.ToolCall) ([]openai.ToolCall, error) {
	result := make([]openai.ToolCall, 0, len(calls))
	for _, call := range calls {
		argsJSON, err := json.Marshal(call.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool input for %s: %w", call.Name, err)
		}
		result = append(result, openai.ToolCall{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      call.Name,
				Arguments: string(argsJSON),
			},
		})
	}
	return result, nil
}

// ToTools converts llm.ToolSpecs to the chat-completions function format.
func ToTools(specs []llm.ToolSpec) []openai.Tool {
	result := make([]openai.Tool, 0, len(specs))
	for i := range specs {
		result = append(result, ToTool(&specs[i]))
	}
	return result
}

// ToTool converts a single llm.ToolSpec to a chat-completions tool definition.
func ToTool(spec *llm.ToolSpec) openai.Tool {
	properties := make(map[string]interface{})
	for k, v := range spec.Schema.Properties {
		properties[k] = v
	}

	parameters := map[string]interface{}{
		"type":       spec.Schema.Type,
		"properties": properties,
	}
	if len(spec.Schema.Required) > 0 {
		parameters["required"] = spec.Schema.Required
	}
	for k, v := range spec.Schema.ExtraFields {
		parameters[k] = v
	}

	function := openai.FunctionDefinition{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  parameters,
	}

	return openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &function,
	}
}

// FromToolCall converts a chat-completions tool call response to an llm.ToolCall.
func FromToolCall(toolCall openai.ToolCall) llm.ToolCall {
	var input map[string]interface{}
	if toolCall.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &input); err != nil {
			input = make(map[string]interface{})
		}
	} else {
		input = make(map[string]interface{})
	}

	return llm.ToolCall{
		ID:    toolCall.ID,
		Name:  toolCall.Function.Name,
		Input: input,
	}
}
