package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"google.golang.org/genai"

	"finanzaviz/pkg/core/normalize"
)

// GeminiProvider implements Provider using the official GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider initializes the shared genai client. The API key comes
// from apiKey, falling back to the GEMINI_API_KEY environment variable.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// GenerateStructured sends one ordered-parts request with a response schema
// and returns the raw JSON text the service produced.
func (p *GeminiProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	parts, err := toGenaiParts(req.Parts)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	result, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", req.Model)
	}

	log.Debug().Str("model", req.Model).Int("parts", len(parts)).Int("response_length", len(text)).Msg("structured generation completed")
	return text, nil
}

// StartChat opens a stateful session with the grounding instruction and a
// thinking budget. History lives inside the SDK chat object.
func (p *GeminiProvider) StartChat(ctx context.Context, req ChatRequest) (ChatSession, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ThinkingBudget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(req.ThinkingBudget),
		}
	}

	chat, err := p.client.Chats.Create(ctx, req.Model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &geminiChat{chat: chat, model: req.Model}, nil
}

type geminiChat struct {
	chat  *genai.Chat
	model string
}

func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("chat exchange failed: %w", err)
	}
	out := resp.Text()
	if out == "" {
		return "", fmt.Errorf("empty response from chat model %s", c.model)
	}
	return out, nil
}

// toGenaiParts maps normalized request parts to SDK parts, preserving order.
// Inline payloads are decoded back to raw bytes; the SDK re-encodes on the
// wire.
func toGenaiParts(parts []normalize.RequestPart) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.InlineData != nil {
			raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("invalid inline payload: %w", err)
			}
			out = append(out, genai.NewPartFromBytes(raw, part.InlineData.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(part.Text))
	}
	return out, nil
}
