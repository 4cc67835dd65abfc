// Package llm wraps the model provider. The rest of the system treats the
// provider as an opaque invoke(model, messages, options) capability; this
// package owns the translation to the provider's wire types.
package llm

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/lbianchi/customgpt-go/internal/chat"
	"github.com/lbianchi/customgpt-go/internal/config"
)

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// TransportError reports a failed model invocation, carrying the provider's
// error text.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model invocation failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ChatMessages converts the assembled context into provider messages. Image
// parts travel as data URIs with a detail hint.
func ChatMessages(messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		cm := openai.ChatCompletionMessage{Role: string(m.Role)}
		if m.Content.IsMultimodal() {
			cm.MultiContent = chatParts(m.Content.Parts)
		} else {
			cm.Content = m.Content.Text
		}
		out = append(out, cm)
	}
	return out
}

func chatParts(parts []chat.Part) []openai.ChatMessagePart {
	out := make([]openai.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case chat.PartImage:
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", p.MediaType, p.Data),
					Detail: imageDetail(p.Detail),
				},
			})
		default:
			out = append(out, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}
	return out
}

func imageDetail(detail string) openai.ImageURLDetail {
	switch detail {
	case "low":
		return openai.ImageURLDetailLow
	case "high":
		return openai.ImageURLDetailHigh
	}
	return openai.ImageURLDetailAuto
}
