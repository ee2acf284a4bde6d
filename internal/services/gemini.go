package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"unicode/utf8"

	"google.golang.org/genai"
)

// Roughly the embedding model's input token limit.
const maxEmbedInputBytes = 40000

// InlineDocument is a file passed to the model alongside the prompt.
// Data holds the standard base64 encoding of the file bytes.
type InlineDocument struct {
	MIMEType string
	Data     string
}

// Scorer sends a prompt plus one inline document to a generative model and
// returns the raw text it produced.
type Scorer interface {
	Generate(ctx context.Context, prompt string, doc InlineDocument) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	Scorer
	Embedder
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	embedModel  string
	temperature float32
}

func NewGeminiService(ctx context.Context, apiKey, modelName, embedModel string) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   modelName,
		embedModel:  embedModel,
		temperature: 0.2,
	}, nil
}

// Generate implements Scorer. Every failure is reported as ErrGenerationFailed.
func (g *geminiService) Generate(ctx context.Context, prompt string, doc InlineDocument) (string, error) {
	data, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		return "", fmt.Errorf("%w: decode inline document: %v", ErrGenerationFailed, err)
	}

	contents := []*genai.Content{{
		Role: string(genai.RoleUser),
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: data}},
		},
	}}

	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrGenerationFailed)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrGenerationFailed)
	}

	return text, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = clipUTF8(text, maxEmbedInputBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// clipUTF8 cuts s to at most n bytes without splitting a rune.
func clipUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
