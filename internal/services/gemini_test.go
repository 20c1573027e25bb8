package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/config"
)

type fakeModels struct {
	resp      *genai.GenerateContentResponse
	embed     *genai.EmbedContentResponse
	err       error
	lastModel string
	lastText  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastText = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.lastModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastText = contents[0].Parts[0].Text
	}
	return f.embed, f.err
}

func newFakeGemini(models *fakeModels) *GeminiClient {
	return &GeminiClient{
		models:     models,
		model:      "gemini-2.0-flash",
		embedModel: "text-embedding-004",
		logger:     zap.NewNop(),
		maxLogLen:  defaultMaxLogLength,
	}
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeminiComplete_FirstPart(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"a":1}`, "ignored second part")}
	g := newFakeGemini(models)

	out, err := g.Complete(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, "gemini-2.0-flash", models.lastModel)
	assert.Equal(t, "extract this", models.lastText)
}

func TestGeminiComplete_MalformedEnvelope(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		"empty text":    textResponse(""),
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newFakeGemini(&fakeModels{resp: resp}).Complete(context.Background(), "p")
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestGeminiComplete_APIErrorBecomesServiceError(t *testing.T) {
	models := &fakeModels{err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded"}}

	_, err := newFakeGemini(models).Complete(context.Background(), "p")
	require.ErrorIs(t, err, ErrServiceUnavailable)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.StatusCode)
	assert.Equal(t, "UNAVAILABLE: overloaded", svcErr.Body)
	assert.True(t, IsTransient(err))
}

func TestGeminiComplete_TransportError(t *testing.T) {
	models := &fakeModels{err: errors.New("dial tcp: connection refused")}

	_, err := newFakeGemini(models).Complete(context.Background(), "p")
	require.ErrorIs(t, err, ErrServiceUnavailable)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Zero(t, svcErr.StatusCode)
}

func TestGeminiComplete_CancelledContextIsNotServiceError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	models := &fakeModels{err: errors.New("request canceled")}
	_, err := newFakeGemini(models).Complete(ctx, "p")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
}

func TestGeminiEmbed(t *testing.T) {
	models := &fakeModels{embed: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2, 0.3}}},
	}}
	g := newFakeGemini(models)

	vec, err := g.Embed(context.Background(), "Go developer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-004", models.lastModel)

	long := strings.Repeat("a", maxEmbedInputBytes+100)
	_, err = g.Embed(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, models.lastText, maxEmbedInputBytes)

	_, err = newFakeGemini(&fakeModels{embed: &genai.EmbedContentResponse{}}).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.GeminiConfig{APIKey: "  "}, nil)
	assert.Error(t, err)
}

func newHTTPTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := newGeminiClient(context.Background(), config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		Timeout: 5 * time.Second,
	}, genai.HTTPOptions{BaseURL: srv.URL + "/"}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestGeminiComplete_OverHTTP(t *testing.T) {
	var (
		hits    atomic.Int32
		gotKey  atomic.Value
		gotPath atomic.Value
	)
	g := newHTTPTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotKey.Store(r.Header.Get("x-goog-api-key"))
		gotPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]}}]}`))
	})

	out, err := g.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "test-key", gotKey.Load())
	assert.Contains(t, gotPath.Load(), "gemini-2.0-flash:generateContent")
}

func TestGeminiComplete_OverHTTPServerError(t *testing.T) {
	g := newHTTPTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})

	_, err := g.Complete(context.Background(), "hello")
	require.ErrorIs(t, err, ErrServiceUnavailable)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.StatusCode)
	assert.Contains(t, svcErr.Body, "overloaded")
}

func TestGeminiComplete_OverHTTPEmptyCandidates(t *testing.T) {
	g := newHTTPTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := g.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}
