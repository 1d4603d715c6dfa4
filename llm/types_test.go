package llm

import (
	"encoding/json"
	"testing"
)

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage("Hello, world!")
	if msg.Kind != KindUser {
		t.Errorf("Expected kind %v, got %v", KindUser, msg.Kind)
	}
	if msg.Text != "Hello, world!" {
		t.Errorf("Expected text 'Hello, world!', got %q", msg.Text)
	}
	if len(msg.Images) != 0 || len(msg.Documents) != 0 {
		t.Error("Expected no attachments on a plain text message")
	}
}

func TestNewUserMessageAttachments(t *testing.T) {
	images := []Image{{URL: "https://example.com/cat.png", Detail: "low"}}
	documents := []Document{{Filename: "report.pdf", Data: []byte{0x25, 0x50}, MediaType: "application/pdf"}}

	msg := NewUserMessage("look at this", images, documents)
	if msg.Kind != KindUser {
		t.Errorf("Expected kind %v, got %v", KindUser, msg.Kind)
	}
	if len(msg.Images) != 1 {
		t.Errorf("Expected 1 image, got %d", len(msg.Images))
	}
	if len(msg.Documents) != 1 {
		t.Errorf("Expected 1 document, got %d", len(msg.Documents))
	}
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("You are terse.")
	if msg.Kind != KindSystem {
		t.Errorf("Expected kind %v, got %v", KindSystem, msg.Kind)
	}
	if msg.Text != "You are terse." {
		t.Errorf("Expected prompt text, got %q", msg.Text)
	}
}

func TestNewToolCallMessage(t *testing.T) {
	calls := []ToolCall{
		{ID: "call_1", Name: "test_tool", Input: map[string]interface{}{"arg": "value"}},
	}
	msg := NewToolCallMessage("running a tool", calls)
	if msg.Kind != KindAssistant {
		t.Errorf("Expected kind %v, got %v", KindAssistant, msg.Kind)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].ID != "call_1" {
		t.Errorf("Expected tool call ID 'call_1', got %q", msg.ToolCalls[0].ID)
	}
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage(
		ToolResult{ToolCallID: "call_1", Content: `{"result": "success"}`},
		ToolResult{ToolCallID: "call_2", Content: "failed", IsError: true},
	)
	if msg.Kind != KindToolResult {
		t.Errorf("Expected kind %v, got %v", KindToolResult, msg.Kind)
	}
	if len(msg.ToolResults) != 2 {
		t.Fatalf("Expected 2 tool results, got %d", len(msg.ToolResults))
	}
	if msg.ToolResults[0].ToolCallID != "call_1" {
		t.Errorf("Expected first result for 'call_1', got %q", msg.ToolResults[0].ToolCallID)
	}
	if !msg.ToolResults[1].IsError {
		t.Error("Expected error flag on second result")
	}
}

func TestMessageToJSON(t *testing.T) {
	msg := NewTextMessage("Test message")
	jsonData, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("Failed to marshal message to JSON: %v", err)
	}
	if len(jsonData) == 0 {
		t.Fatal("Expected non-empty JSON data")
	}
	// Verify it's valid JSON
	var decoded Message
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if decoded.Kind != msg.Kind {
		t.Errorf("Expected kind %v, got %v", msg.Kind, decoded.Kind)
	}
}
