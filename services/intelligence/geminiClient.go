package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

const classifyInstruction = `You route messages for Amara, the assistant of a home-services marketplace.
Reply with a JSON object {"intent": string, "service": string, "city": string}.
intent is one of "search" (find professionals), "book" (make a booking), "help" (questions about the platform, payments, refunds, accounts) or "chat".
service is one of cleaning, childcare, cooking, laundry, eldercare, gardening, petcare, or "" when none is mentioned.
city is the city the user names, or "". Messages may be English or Spanish.`

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient returns a client whose model answers in JSON.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(classifyInstruction)}}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Close() error { return g.client.Close() }

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// Classify implements Classifier.
func (g *GeminiClient) Classify(ctx context.Context, text, locale string) (Intent, error) {
	raw, err := g.GenerateContent(ctx, fmt.Sprintf("locale: %s\nmessage: %s", locale, text))
	if err != nil {
		return Intent{}, err
	}
	return ParseIntent(raw)
}

// ParseIntent decodes a JSON-mode reply, tolerating a fenced code block.
func ParseIntent(raw string) (Intent, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out Intent
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return Intent{}, fmt.Errorf("invalid intent payload: %w", err)
	}
	return out.normalize(), nil
}
