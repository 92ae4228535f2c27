package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"

	genai "google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("llm: missing Gemini API key")

// GeminiClient is a thin wrapper around the official genai client.
// Every call is a single attempt.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Name identifies the backend and model in logs.
func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
// Close is a no-op; the genai client holds no resources to release.
func (g *GeminiClient) Close() error { return nil }

// GenerateStructured sends the prompt with a response schema and requests
// application/json.
func (g *GeminiClient) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	schema, err := toGenaiSchema(req.Schema)
	if err != nil {
		return "", err
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
			Temperature:      genai.Ptr(req.Temperature),
		},
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// StreamChat replays the history and streams the reply to the new message.
func (g *GeminiClient) StreamChat(ctx context.Context, req ChatRequest) (iter.Seq2[string, error], error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role, err := genaiRole(turn.Role)
		if err != nil {
			return nil, err
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	responses := g.cli.Models.GenerateContentStream(ctx, g.model, contents, cfg)
	return func(yield func(string, error) bool) {
		for resp, err := range responses {
			if err != nil {
				yield("", err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}, nil
}

func genaiRole(role string) (genai.Role, error) {
	switch r := genai.Role(role); r {
	case genai.RoleUser, genai.RoleModel:
		return r, nil
	default:
		return "", fmt.Errorf("llm: unknown history role %q", role)
	}
}

// toGenaiSchema converts the subset of JSON Schema used by the pipeline
// (object, array, string, integer, number, boolean; properties, items,
// required, description, minItems) into a genai schema.
func toGenaiSchema(s map[string]any) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}
	out := &genai.Schema{}

	switch t, _ := s["type"].(string); t {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("llm: unsupported schema type %q", t)
	}

	if d, ok := s["description"].(string); ok {
		out.Description = d
	}
	if n, ok := asInt64(s["minItems"]); ok {
		out.MinItems = genai.Ptr(n)
	}
	if req, ok := s["required"].([]string); ok {
		out.Required = append([]string(nil), req...)
	}
	if order, ok := s["x-order"].([]string); ok {
		out.PropertyOrdering = append([]string(nil), order...)
	}
	if props, ok := s["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("llm: property %q is not a schema object", name)
			}
			conv, err := toGenaiSchema(sub)
			if err != nil {
				return nil, fmt.Errorf("llm: property %q: %w", name, err)
			}
			out.Properties[name] = conv
		}
	}
	if items, ok := s["items"].(map[string]any); ok {
		conv, err := toGenaiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("llm: items: %w", err)
		}
		out.Items = conv
	}
	return out, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
