package anthropic

import (
	"errors"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/jmontane/switchyard/llm"
)

func TestToMessageParamUser(t *testing.T) {
	msg := llm.NewUserMessage(
		"what is this?",
		[]llm.Image{{Data: []byte{0x89, 0x50}, MediaType: "image/png"}},
		[]llm.Document{{Filename: "notes.txt", Data: []byte("some notes"), MediaType: "text/plain"}},
	)

	param, err := ToMessageParam(msg)
	if err != nil {
		t.Fatalf("ToMessageParam failed: %v", err)
	}
	if param.Role != anthropic.MessageParamRoleUser {
		t.Errorf("Expected user role, got %v", param.Role)
	}
	if len(param.Content) != 3 {
		t.Fatalf("Expected 3 content blocks (text, image, document), got %d", len(param.Content))
	}
	if param.Content[0].OfText == nil || param.Content[0].OfText.Text != "what is this?" {
		t.Errorf("Expected text block first, got %+v", param.Content[0])
	}
	if param.Content[1].OfImage == nil {
		t.Errorf("Expected image block second, got %+v", param.Content[1])
	}
	if param.Content[2].OfDocument == nil {
		t.Errorf("Expected document block third, got %+v", param.Content[2])
	}
}

func TestToMessageParamAssistantToolCalls(t *testing.T) {
	msg := llm.NewToolCallMessage("let me check", []llm.ToolCall{
		{ID: "toolu_1", Name: "get_weather", Input: map[string]interface{}{"city": "Oslo"}},
	})

	param, err := ToMessageParam(msg)
	if err != nil {
		t.Fatalf("ToMessageParam failed: %v", err)
	}
	if param.Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("Expected assistant role, got %v", param.Role)
	}
	if len(param.Content) != 2 {
		t.Fatalf("Expected text + tool use blocks, got %d", len(param.Content))
	}
	toolUse := param.Content[1].OfToolUse
	if toolUse == nil {
		t.Fatal("Expected tool use block")
	}
	if toolUse.ID != "toolu_1" || toolUse.Name != "get_weather" {
		t.Errorf("Unexpected tool use block: %+v", toolUse)
	}
}

func TestToMessageParamAssistantTextOnly(t *testing.T) {
	param, err := ToMessageParam(llm.NewAssistantMessage("plain answer"))
	if err != nil {
		t.Fatalf("ToMessageParam failed: %v", err)
	}
	if len(param.Content) != 1 {
		t.Fatalf("Expected single text block, got %d", len(param.Content))
	}
}

func TestToMessageParamToolResults(t *testing.T) {
	msg := llm.NewToolResultMessage(
		llm.ToolResult{ToolCallID: "toolu_1", Content: `{"ok": true}`},
		llm.ToolResult{ToolCallID: "toolu_2", Content: "boom", IsError: true},
	)

	param, err := ToMessageParam(msg)
	if err != nil {
		t.Fatalf("ToMessageParam failed: %v", err)
	}
	// Tool results ride in a single user message, one block per result
	if param.Role != anthropic.MessageParamRoleUser {
		t.Errorf("Expected user role for tool results, got %v", param.Role)
	}
	if len(param.Content) != 2 {
		t.Fatalf("Expected 2 tool result blocks, got %d", len(param.Content))
	}
	first := param.Content[0].OfToolResult
	if first == nil || first.ToolUseID != "toolu_1" {
		t.Errorf("Unexpected first tool result: %+v", first)
	}
	second := param.Content[1].OfToolResult
	if second == nil || second.ToolUseID != "toolu_2" {
		t.Errorf("Unexpected second tool result: %+v", second)
	}
	if !second.IsError.Value {
		t.Error("Expected error flag on second result")
	}
}

func TestToMessageParamUnknownKind(t *testing.T) {
	_, err := ToMessageParam(llm.Message{Kind: "smoke_signal"})
	if err == nil {
		t.Fatal("Expected error for unknown message kind")
	}
	var unmappable *llm.UnmappableMessageError
	if !errors.As(err, &unmappable) {
		t.Fatalf("Expected UnmappableMessageError, got %T", err)
	}
	if !strings.Contains(err.Error(), "smoke_signal") {
		t.Errorf("Expected offending kind in error, got %q", err.Error())
	}
}

func TestBuildSystemBlocks(t *testing.T) {
	blocks := buildSystemBlocks([]string{"one", "two", "three"})
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}
	for i, want := range []string{"one", "two", "three"} {
		if blocks[i].Text != want {
			t.Errorf("blocks[%d]: expected %q, got %q", i, want, blocks[i].Text)
		}
	}
	// Only the final block carries cache control
	if blocks[0].CacheControl.Type != "" {
		t.Error("Expected no cache control on intermediate blocks")
	}
	if blocks[2].CacheControl.Type == "" {
		t.Error("Expected cache control on the final block")
	}
}

func TestToToolUnionParam(t *testing.T) {
	spec := llm.ToolSpec{
		Name:        "get_weather",
		Description: "Look up weather",
		Schema: llm.ToolSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"city": map[string]interface{}{"type": "string"},
			},
			Required: []string{"city"},
		},
	}

	tool := ToToolUnionParam(&spec)
	if tool.OfTool == nil {
		t.Fatal("Expected tool param")
	}
	if tool.OfTool.Name != "get_weather" {
		t.Errorf("Expected name get_weather, got %q", tool.OfTool.Name)
	}
	if len(tool.OfTool.InputSchema.Required) != 1 {
		t.Errorf("Expected required fields preserved, got %v", tool.OfTool.InputSchema.Required)
	}
}
