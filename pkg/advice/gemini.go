package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Prompt is one structured-output request
type Prompt struct {
	Text   string
	Schema *genai.Schema
}

// Generator turns a prompt into raw JSON text
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeminiGenerator calls the Gemini API in JSON mode
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a client for the given model
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate implements Generator
func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   p.Schema,
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: p.Text}},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

var practiceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"veteransWisdom": {
			Type:        genai.TypeString,
			Description: "A concise, grizzled tip using transposed chord names for the instrument.",
		},
		"practiceFocus": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       {Type: genai.TypeString, Description: "Short, engaging title for the practice focus."},
				"description": {Type: genai.TypeString, Description: "Brief description of the practice focus."},
			},
			Required: []string{"title", "description"},
		},
	},
	Required: []string{"veteransWisdom", "practiceFocus"},
}

var balanceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis":       {Type: genai.TypeString},
		"coachingPoints": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"analysis", "coachingPoints"},
}
