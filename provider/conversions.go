package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"chatwave/chat"
)

// FromChat builds a provider conversation from a chat transcript.
//
// The system prompt (if any) comes first. Empty assistant messages are
// dropped: they are placeholders still waiting for this very answer.
//
// Example:
//
//	history := []chat.Message{
//	    {Role: chat.RoleUser, Content: "Hello"},
//	    {Role: chat.RoleAssistant, Content: ""},
//	}
//	msgs := FromChat("Be brief.", history)
//	// msgs == [{system "Be brief."} {user "Hello"}]
func FromChat(systemPrompt string, history []chat.Message) []Message {
	result := make([]Message, 0, len(history)+1)
	if systemPrompt != "" {
		result = append(result, Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		if m.Role == chat.RoleAssistant && m.Content == "" {
			continue
		}
		result = append(result, Message{Role: string(m.Role), Content: m.Content})
	}
	return result
}

// ConvertToOllamaMessages converts provider messages to Ollama api.Message.
//
// Both types have compatible Role and Content fields, so this is a simple
// field mapping.
func ConvertToOllamaMessages(messages []Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertToOpenAIMessages converts provider messages to OpenAI format.
// Unknown roles are sent as user messages.
func ConvertToOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}

// convertToAnthropicMessages converts provider messages to Anthropic format.
// Returns the message array and the system blocks found.
func convertToAnthropicMessages(messages []Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case RoleAssistant:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)
		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}
