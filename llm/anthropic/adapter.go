package anthropic

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/samber/lo"

	"github.com/jmontane/switchyard/llm"
)

// ToMessageParams converts provider-neutral conversation messages to
// Messages-API params. System-kind messages must be hoisted into the request
// system blocks before calling this; passing one through is a programming
// error.
func ToMessageParams(msgs []llm.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		param, err := ToMessageParam(msg)
		if err != nil {
			return nil, err
		}
		result = append(result, param)
	}
	return result, nil
}

// ToMessageParam converts a single llm.Message to a MessageParam. Tool-result
// messages become a single user message carrying one tool_result block per
// result, per the Messages-API convention.
func ToMessageParam(msg llm.Message) (anthropic.MessageParam, error) {
	switch msg.Kind {
	case llm.KindUser:
		blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.Images)+len(msg.Documents))
		blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
		for _, img := range msg.Images {
			blocks = append(blocks, imageBlock(img))
		}
		for _, doc := range msg.Documents {
			blocks = append(blocks, documentBlock(doc))
		}
		return anthropic.NewUserMessage(blocks...), nil

	case llm.KindAssistant:
		blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
		if msg.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
		}
		for _, call := range msg.ToolCalls {
			blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, call.Input, call.Name))
		}
		return anthropic.NewAssistantMessage(blocks...), nil

	case llm.KindToolResult:
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
		for _, res := range msg.ToolResults {
			blocks = append(blocks, anthropic.NewToolResultBlock(res.ToolCallID, res.Content, res.IsError))
		}
		return anthropic.NewUserMessage(blocks...), nil

	default:
		return anthropic.MessageParam{}, &llm.UnmappableMessageError{Kind: msg.Kind}
	}
}

// imageBlock converts an image attachment to a base64 image block.
func imageBlock(img llm.Image) anthropic.ContentBlockParamUnion {
	if len(img.Data) > 0 {
		return anthropic.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data))
	}
	// The Messages API has no remote-URL image source in this SDK surface;
	// reference the URL in a text block so the model still sees it.
	return anthropic.NewTextBlock(fmt.Sprintf("[image: %s]", img.URL))
}

// documentBlock converts a document attachment. PDFs ride as base64 document
// sources; everything else is delivered as a plain-text source.
func documentBlock(doc llm.Document) anthropic.ContentBlockParamUnion {
	if doc.MediaType == "application/pdf" {
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(doc.Data),
		})
	}
	return anthropic.NewDocumentBlock(anthropic.PlainTextSourceParam{
		Data: string(doc.Data),
	})
}

// FromContentBlocks converts a Messages-API response body to an assistant
// message.
func FromContentBlocks(blocks []anthropic.ContentBlockUnion) llm.Message {
	msg := llm.Message{Kind: llm.KindAssistant}
	for _, blockUnion := range blocks {
		switch block := blockUnion.AsAny().(type) {
		case anthropic.TextBlock:
			if msg.Text != "" {
				msg.Text += "\n"
			}
			msg.Text += block.Text
		case anthropic.ToolUseBlock:
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: decodeToolInput(block.Input),
			})
		}
	}
	return msg
}

// decodeToolInput normalizes the SDK's raw tool input into a plain map via a
// JSON round-trip.
func decodeToolInput(input interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	if input == nil {
		return result
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return result
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return make(map[string]interface{})
	}
	return result
}

// ToToolUnionParam converts an llm.ToolSpec to a Messages-API tool definition.
func ToToolUnionParam(spec *llm.ToolSpec) anthropic.ToolUnionParam {
	toolParam := anthropic.ToolParam{
		Name:        spec.Name,
		Description: anthropic.String(spec.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type:        "object",
			Properties:  spec.Schema.Properties,
			Required:    spec.Schema.Required,
			ExtraFields: spec.Schema.ExtraFields,
		},
	}

	return anthropic.ToolUnionParam{OfTool: &toolParam}
}

// ToToolUnionParams converts a slice of llm.ToolSpecs to tool definitions.
func ToToolUnionParams(specs []llm.ToolSpec) []anthropic.ToolUnionParam {
	return lo.Map(specs, func(spec llm.ToolSpec, _ int) anthropic.ToolUnionParam {
		return ToToolUnionParam(&spec)
	})
}
