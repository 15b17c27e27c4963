package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"google.golang.org/genai"
)

// Generation parameters follow the hosted backend contract: low temperature
// abstractive summaries, bounded output.
const (
	geminiTemperature     = 0.3
	geminiMaxOutputTokens = 500

	// EmbeddingDimension is a fixed system parameter. All stored vectors and
	// query vectors share this dimensionality; changing it invalidates the
	// persisted memory.
	EmbeddingDimension = 768
)

// Gemini is the hosted generation backend and the embedding provider
type Gemini interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	embeddingModel  string
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.5-flash",
		embeddingModel:  "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Name() string {
	return model.BackendPrimary
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(geminiTemperature)),
		MaxOutputTokens: geminiMaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, genai.Text(prompt), config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.T(model.TagGeneration))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", goerr.New("empty response from model", goerr.T(model.TagGeneration))
	}

	return text, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(EmbeddingDimension)),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content", goerr.T(model.TagMemory))
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("empty embedding response", goerr.T(model.TagMemory))
	}

	return resp.Embeddings[0].Values, nil
}
