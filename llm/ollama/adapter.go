package ollama

import (
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/jmontane/switchyard/llm"
)

// ToOllamaMessages converts provider-neutral conversation messages to Ollama
// chat messages. A single tool-result message fans out into one role "tool"
// record per result, so the returned slice can be longer than the input.
// Tool specs, when provided, are used to validate and coerce tool-call
// arguments against their schemas.
func ToOllamaMessages(msgs []llm.Message, toolSpecs ...[]llm.ToolSpec) ([]api.Message, error) {
	var toolSpecMap map[string]llm.ToolSpec
	if len(toolSpecs) > 0 && len(toolSpecs[0]) > 0 {
		toolSpecMap = make(map[string]llm.ToolSpec)
		for _, spec := range toolSpecs[0] {
			toolSpecMap[spec.Name] = spec
		}
	}

	result := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		converted, err := ToOllamaMessage(msg, toolSpecMap)
		if err != nil {
			return nil, fmt.Errorf("failed to convert message: %w", err)
		}
		result = append(result, converted...)
	}
	return result, nil
}

// ToOllamaMessage converts a single llm.Message. toolSpecMap is optional and
// used for validating/coercing tool-call arguments.
func ToOllamaMessage(msg llm.Message, toolSpecMap map[string]llm.ToolSpec) ([]api.Message, error) {
	switch msg.Kind {
	case llm.KindSystem:
		return []api.Message{{Role: "system", Content: msg.Text}}, nil

	case llm.KindUser:
		content := msg.Text
		images := make([]api.ImageData, 0, len(msg.Images))
		for _, img := range msg.Images {
			if len(img.Data) > 0 {
				images = append(images, api.ImageData(img.Data))
				continue
			}
			// No remote-URL image support in the chat API; reference it inline.
			if content != "" {
				content += "\n"
			}
			content += fmt.Sprintf("[image: %s]", img.URL)
		}
		for _, doc := range msg.Documents {
			if content != "" {
				content += "\n"
			}
			content += documentText(doc)
		}
		return []api.Message{{Role: "user", Content: content, Images: images}}, nil

	case llm.KindAssistant:
		toolCalls := make([]api.ToolCall, 0, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			args, err := toolCallArguments(call, toolSpecMap)
			if err != nil {
				return nil, err
			}
			toolCalls = append(toolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      call.Name,
					Arguments: args,
				},
			})
		}
		return []api.Message{{Role: "assistant", Content: msg.Text, ToolCalls: toolCalls}}, nil

	case llm.KindToolResult:
		result := make([]api.Message, 0, len(msg.ToolResults))
		for _, res := range msg.ToolResults {
			result = append(result, api.Message{Role: "tool", Content: res.Content})
		}
		return result, nil

	default:
		return nil, &llm.UnmappableMessageError{Kind: msg.Kind}
	}
}

// documentText renders a document attachment as labeled inline text.
func documentText(doc llm.Document) string {
	return fmt.Sprintf("<document filename=%q media_type=%q>\n%s\n</document>",
		doc.Filename, doc.MediaType, string(doc.Data))
}

// toolCallArguments produces the argument map for a replayed tool call,
// validating against the tool schema when one is known.
func toolCallArguments(call llm.ToolCall, toolSpecMap map[string]llm.ToolSpec) (api.ToolCallFunctionArguments, error) {
	if toolSpecMap != nil {
		if spec, ok := toolSpecMap[call.Name]; ok {
			args, err := validateAndConvertToolArguments(call.Name, call.Input, spec.Schema)
			if err != nil {
				return nil, fmt.Errorf("tool argument validation failed: %w", err)
			}
			return args, nil
		}
	}

	args := make(api.ToolCallFunctionArguments)
	for k, v := range call.Input {
		args[k] = v
	}
	return args, nil
}

// validateAndConvertToolArguments validates required parameters and coerces
// argument values to the types their schema declares. Local models are loose
// about argument types, so numbers and booleans frequently arrive as strings.
func validateAndConvertToolArguments(toolName string, args map[string]interface{}, schema llm.ToolSchema) (api.ToolCallFunctionArguments, error) {
	result := make(api.ToolCallFunctionArguments)

	for _, reqParam := range schema.Required {
		val, exists := args[reqParam]
		if !exists {
			providedKeys := make([]string, 0, len(args))
			for k := range args {
				providedKeys = append(providedKeys, k)
			}
			return nil, fmt.Errorf("missing required parameter '%s' for tool '%s' (provided: %v)", reqParam, toolName, providedKeys)
		}
		if isEmptyValue(val) {
			return nil, fmt.Errorf("required parameter '%s' for tool '%s' cannot be empty", reqParam, toolName)
		}
	}

	properties := schema.Properties
	if properties == nil {
		properties = make(map[string]interface{})
	}

	for k, v := range args {
		propSchema, exists := properties[k]
		if !exists {
			// Parameter not in schema, pass through as-is
			result[k] = v
			continue
		}

		converted, err := convertValueToType(v, getPropertyType(propSchema), k)
		if err != nil {
			return nil, fmt.Errorf("failed to convert parameter '%s' for tool '%s': %w", k, toolName, err)
		}
		result[k] = converted
	}

	return result, nil
}

// isEmptyValue checks if a value is considered empty (nil, empty string, empty array, etc.)
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}

	switch val := v.(type) {
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	}

	return false
}

// getPropertyType extracts the type from a property schema definition.
func getPropertyType(propSchema interface{}) string {
	if propMap, ok := propSchema.(map[string]interface{}); ok {
		if propType, ok := propMap["type"].(string); ok {
			return propType
		}
	}
	return "string"
}

// convertValueToType coerces a value to the schema-declared type.
func convertValueToType(v interface{}, targetType, paramName string) (interface{}, error) {
	switch targetType {
	case "integer", "int":
		return convertToInteger(v, paramName)
	case "number", "float":
		return convertToNumber(v, paramName)
	case "boolean", "bool":
		return convertToBoolean(v, paramName)
	case "string":
		return convertToString(v), nil
	default:
		// Arrays, objects, and unknown types pass through
		return v, nil
	}
}

func convertToInteger(v interface{}, paramName string) (interface{}, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		var i int
		if _, err := fmt.Sscanf(val, "%d", &i); err != nil {
			return nil, fmt.Errorf("parameter '%s': cannot convert '%s' to integer", paramName, val)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("parameter '%s': cannot convert %T to integer", paramName, v)
	}
}

func convertToNumber(v interface{}, paramName string) (interface{}, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(val, "%f", &f); err != nil {
			return nil, fmt.Errorf("parameter '%s': cannot convert '%s' to number", paramName, val)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("parameter '%s': cannot convert %T to number", paramName, v)
	}
}

func convertToBoolean(v interface{}, paramName string) (interface{}, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		default:
			return nil, fmt.Errorf("parameter '%s': cannot convert '%s' to boolean", paramName, val)
		}
	case int:
		return val != 0, nil
	default:
		return nil, fmt.Errorf("parameter '%s': cannot convert %T to boolean", paramName, v)
	}
}

func convertToString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// FromOllamaMessage converts an Ollama chat response message to an assistant
// message. Ollama does not assign tool call IDs, so one is synthesized per
// call from the function name and position.
func FromOllamaMessage(msg *api.Message) llm.Message {
	result := llm.Message{
		Kind: llm.KindAssistant,
		Text: msg.Content,
	}

	for i, toolCall := range msg.ToolCalls {
		input := make(map[string]interface{})
		for k, v := range toolCall.Function.Arguments {
			input[k] = v
		}
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:    fmt.Sprintf("call_%s_%d", toolCall.Function.Name, i),
			Name:  toolCall.Function.Name,
			Input: input,
		})
	}

	return result
}

// ToOllamaTools converts llm.ToolSpecs to Ollama function definitions.
func ToOllamaTools(specs []llm.ToolSpec) ([]api.Tool, error) {
	result := make([]api.Tool, 0, len(specs))
	for _, spec := range specs {
		tool, err := ToOllamaTool(&spec)
		if err != nil {
			return nil, fmt.Errorf("failed to convert tool %s: %w", spec.Name, err)
		}
		result = append(result, tool)
	}
	return result, nil
}

// ToOllamaTool converts a single llm.ToolSpec to Ollama's Tool format.
// Property schemas are reduced to their type; nested schema features are not
// carried over.
func ToOllamaTool(spec *llm.ToolSpec) (api.Tool, error) {
	properties := make(map[string]api.ToolProperty)
	for k, v := range spec.Schema.Properties {
		if propMap, ok := v.(map[string]interface{}); ok {
			toolProp := api.ToolProperty{}
			if propType, ok := propMap["type"].(string); ok {
				toolProp.Type = []string{propType}
			}
			if desc, ok := propMap["description"].(string); ok {
				toolProp.Description = desc
			}
			properties[k] = toolProp
		} else {
			properties[k] = api.ToolProperty{
				Type: []string{"string"},
			}
		}
	}

	return api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: api.ToolFunctionParameters{
				Type:       spec.Schema.Type,
				Properties: properties,
				Required:   spec.Schema.Required,
			},
		},
	}, nil
}
