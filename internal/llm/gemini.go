package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(apiKey, model string, opts *clientOptions) (*geminiClient, error) {
	ctx := context.Background()
	config := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if opts.baseURL != "" {
		config.HTTPOptions.BaseURL = opts.baseURL
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

func convertGeminiMessages(messages []Message) (*genai.Content, []*genai.Content) {
	var systemInstruction *genai.Content
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case "system":
			systemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
		case "user":
			contents = append(contents, genai.NewContentFromParts(geminiParts(m), genai.RoleUser))
		case "assistant":
			contents = append(contents, genai.NewContentFromParts(geminiParts(m), genai.RoleModel))
		}
	}

	return systemInstruction, contents
}

func geminiParts(m Message) []*genai.Part {
	parts := make([]*genai.Part, 0, len(m.Images)+1)
	if m.Content != "" {
		parts = append(parts, genai.NewPartFromText(m.Content))
	}
	for _, img := range m.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	return parts
}

// geminiSchema converts a JSON schema definition to Gemini's OpenAPI subset.
// Property order follows Required first, then the remaining names sorted.
func geminiSchema(def jsonschema.Definition) *genai.Schema {
	s := &genai.Schema{Description: def.Description, Enum: def.Enum}

	switch def.Type {
	case jsonschema.Object:
		s.Type = genai.TypeObject
	case jsonschema.String:
		s.Type = genai.TypeString
	case jsonschema.Integer:
		s.Type = genai.TypeInteger
	case jsonschema.Number:
		s.Type = genai.TypeNumber
	case jsonschema.Boolean:
		s.Type = genai.TypeBoolean
	case jsonschema.Array:
		s.Type = genai.TypeArray
		if def.Items != nil {
			s.Items = geminiSchema(*def.Items)
		}
	}

	if len(def.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, prop := range def.Properties {
			s.Properties[name] = geminiSchema(prop)
		}
		s.Required = append([]string(nil), def.Required...)

		seen := make(map[string]bool, len(def.Properties))
		for _, name := range def.Required {
			if _, ok := def.Properties[name]; ok && !seen[name] {
				s.PropertyOrdering = append(s.PropertyOrdering, name)
				seen[name] = true
			}
		}
		var rest []string
		for name := range def.Properties {
			if !seen[name] {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		s.PropertyOrdering = append(s.PropertyOrdering, rest...)
	}

	return s
}

func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if !hasUserMessage(req.Messages) {
		return "", fmt.Errorf("gemini: no user message provided")
	}
	systemInstruction, contents := convertGeminiMessages(req.Messages)

	config := &genai.GenerateContentConfig{SystemInstruction: systemInstruction}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = geminiSchema(*req.Schema)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response text")
	}
	return text, nil
}
