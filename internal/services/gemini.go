package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
)

// InferenceClient sends one prompt and returns the model's raw text.
type InferenceClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerativeClient is what the Gemini client offers: completions and embeddings.
type GenerativeClient interface {
	InferenceClient
	Embedder
}

// modelsAPI is the part of genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

const (
	defaultModel        = "gemini-2.0-flash"
	defaultEmbedModel   = "text-embedding-004"
	defaultMaxLogLength = 200
	maxEmbedInputBytes  = 40000
)

// GeminiClient is a single-attempt client for the Gemini API.
type GeminiClient struct {
	models     modelsAPI
	model      string
	embedModel string
	logger     *zap.Logger
	maxLogLen  int
}

var _ GenerativeClient = (*GeminiClient)(nil)

// NewGeminiClient builds a client from cfg. The API key travels with every
// request as the x-goog-api-key credential.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, log *zap.Logger) (*GeminiClient, error) {
	return newGeminiClient(ctx, cfg, genai.HTTPOptions{}, log)
}

func newGeminiClient(ctx context.Context, cfg config.GeminiConfig, httpOptions genai.HTTPOptions, log *zap.Logger) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	embedModel := strings.TrimSpace(cfg.EmbedModel)
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &GeminiClient{
		models:     client.Models,
		model:      model,
		embedModel: embedModel,
		logger:     log,
		maxLogLen:  defaultMaxLogLength,
	}, nil
}

func (g *GeminiClient) Model() string {
	return g.model
}

// Complete implements InferenceClient. It returns the text of the first
// candidate's first content part.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("gemini generate content request",
		zap.String("model", g.model),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Warn("gemini generate content failed", zap.String("model", g.model), zap.Error(err))
		return "", toServiceError(ctx, err)
	}

	text, err := firstPartText(resp)
	if err != nil {
		g.logger.Warn("gemini returned malformed envelope", zap.String("model", g.model), zap.Error(err))
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.String("model", g.model),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, g.maxLogLen)),
	)

	return text, nil
}

// Embed implements Embedder.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbedInputBytes {
		text = strings.ToValidUTF8(text[:maxEmbedInputBytes], "")
	}

	result, err := g.models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, toServiceError(ctx, err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding values", ErrMalformedEnvelope)
	}

	return result.Embeddings[0].Values, nil
}

func firstPartText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedEnvelope)
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", ErrMalformedEnvelope)
	}
	if len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0] == nil {
		return "", fmt.Errorf("%w: content has no parts", ErrMalformedEnvelope)
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: first part has no text", ErrMalformedEnvelope)
	}
	return text, nil
}

// toServiceError maps SDK failures onto ServiceError. Caller cancellation is
// passed through untouched.
func toServiceError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("gemini request aborted: %w", ctxErr)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{StatusCode: apiErr.Code, Body: apiErrorBody(apiErr), Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ServiceError{StatusCode: apiErrPtr.Code, Body: apiErrorBody(*apiErrPtr), Err: err}
	}

	return &ServiceError{Err: err}
}

func apiErrorBody(e genai.APIError) string {
	if e.Status == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Status
	}
	return e.Status + ": " + e.Message
}
