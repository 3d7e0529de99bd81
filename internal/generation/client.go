// Package generation turns stored project context into prompts for an external
// text-generation model and returns the model's raw text.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/command-deck/engine/pkg/metrics"
	appErr "github.com/command-deck/engine/pkg/errors"
)

const (
	// DefaultTimeout bounds a single model call when Config.Timeout is zero.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the largest model response body accepted (10MB).
	MaxResponseSize = 10 * 1024 * 1024
)

// ErrNotConfigured is returned when no API key is available. It is raised before any network call.
var ErrNotConfigured = appErr.New(appErr.CodeConfig, "AI_API_KEY is not configured")

// Request is a single generation call.
type Request struct {
	Prompt       string
	SystemPrompt string
	// Model overrides the configured default model.
	Model string
	// JSONMode asks the model to answer with a JSON document.
	JSONMode bool
}

// Generator is the boundary consumed by handlers and workers.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateTechnicalSpec(ctx context.Context, context string) (string, error)
	GenerateUserGuide(ctx context.Context, context string) (string, error)
}

// Config holds model API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls a generateContent-style model endpoint over HTTP.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	model   string
	log     *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient validates cfg and builds a client. A missing API key is a configuration error.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeConfig, "AI_BASE_URL is not a valid URL")
	}
	if cfg.Model == "" {
		return nil, appErr.New(appErr.CodeConfig, "AI_MODEL is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		log:     log,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one prompt and returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	return c.generate(ctx, "generic", req)
}

func (c *Client) generate(ctx context.Context, operation string, req Request) (out string, err error) {
	if c == nil || c.apiKey == "" {
		return "", ErrNotConfigured
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			c.log.Error("generation failed",
				zap.String("operation", operation),
				zap.String("model", model),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
		}
		metrics.GenerationRequestsTotal.WithLabelValues(operation, status).Inc()
		metrics.GenerationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	if req.JSONMode {
		body.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "encode generation request failed")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "build generation request failed")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "model request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "read model response failed")
	}
	if len(raw) > MaxResponseSize {
		return "", appErr.New(appErr.CodeUnavailable, "model response too large")
	}

	var parsed generateResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", appErr.New(appErr.CodeUnavailable, fmt.Sprintf("model API returned %d: %s", resp.StatusCode, msg)).
			WithMeta("status", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", appErr.Wrap(decodeErr, appErr.CodeUnavailable, "decode model response failed")
	}
	if len(parsed.Candidates) == 0 {
		return "", appErr.New(appErr.CodeUnavailable, "model returned no candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	c.log.Debug("generation completed",
		zap.String("operation", operation),
		zap.String("model", model),
		zap.Int("chars", sb.Len()),
		zap.Duration("duration", time.Since(start)))
	return sb.String(), nil
}
