package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErr "github.com/command-deck/engine/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "test-model"}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost", Model: "m"}, zap.NewNop())
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.True(t, appErr.IsCode(err, appErr.CodeConfig))
}

func TestNilClientFailsBeforeNetwork(t *testing.T) {
	var c *Client
	_, err := c.GenerateUserGuide(context.Background(), "ctx")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateTechnicalSpecSendsTemplateAndContext(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"# Spec"},{"text":"\nbody"}]}}]}`))
	})

	out, err := c.GenerateTechnicalSpec(context.Background(), `{"summary":"deck"}`)
	require.NoError(t, err)
	assert.Equal(t, "# Spec\nbody", out)

	require.Len(t, got.Contents, 1)
	prompt := got.Contents[0].Parts[0].Text
	assert.True(t, strings.HasPrefix(prompt, technicalSpecTemplate))
	assert.True(t, strings.HasSuffix(prompt, `{"summary":"deck"}`))
	assert.Nil(t, got.SystemInstruction)
	assert.Nil(t, got.GenerationConfig)
}

func TestGenerateHonoursModelAndJSONMode(t *testing.T) {
	var got generateRequest
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	})

	out, err := c.Generate(context.Background(), Request{Prompt: "p", SystemPrompt: "sys", Model: "other", JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "/models/other:generateContent", path)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestGenerateSurfacesAPIErrorWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := c.GenerateUserGuide(context.Background(), "ctx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Generate(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}
