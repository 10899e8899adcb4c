package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// ErrEmptyReply is returned when the model answers with no usable text.
var ErrEmptyReply = errors.New("model returned empty text")

// GeminiOptions configures GeminiClient. Set APIKey for the Gemini API or
// Project+Location for Vertex AI.
type GeminiOptions struct {
	APIKey   string
	Project  string
	Location string

	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// GeminiClient implements domain.LLMClient on top of google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
	opts   GeminiOptions
}

// NewGeminiClient creates a client for the Gemini API or, when no API key is
// given, for Vertex AI.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	switch {
	case opts.APIKey != "":
		cc.APIKey = opts.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case opts.Project != "" && opts.Location != "":
		cc.Project = opts.Project
		cc.Location = opts.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini: either an API key or project and location must be set")
	}

	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiClient{client: client, opts: opts}, nil
}

// BuildContents maps the window to genai contents and appends userText as the
// final user turn.
func BuildContents(window []domain.WindowTurn, userText string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(window)+1)
	for _, t := range window {
		role := genai.Role(genai.RoleUser)
		if t.Role != domain.WindowRoleUser {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return append(contents, genai.NewContentFromText(userText, genai.RoleUser))
}

// GenerateReply implements domain.LLMClient.
func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	persona string,
	window []domain.WindowTurn,
	userText string,
) (string, error) {
	temp := g.opts.Temperature
	topP := g.opts.TopP

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   g.opts.MaxOutputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.opts.Model, BuildContents(window, userText), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
