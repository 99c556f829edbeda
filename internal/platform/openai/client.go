// Package openai is a small client for OpenAI-compatible text generation
// endpoints. It speaks the Responses API by default and can fall back to Chat
// Completions for providers (Gemini's OpenAI endpoint among them) that only
// implement the older surface.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/httpx"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
	"github.com/yungbote/dlp-generator/internal/platform/promptstyle"
)

const (
	APIResponses = "responses"
	APIChat      = "chat"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1-mini"

	maxResponseBytes = 8 << 20
)

var ErrMissingAPIKey = errors.New("missing LLM API key")

type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// API selects the wire protocol: APIResponses or APIChat.
	API         string
	Timeout     time.Duration
	Temperature *float64
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	api         string
	temperature *float64
	httpClient  *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	api := strings.ToLower(strings.TrimSpace(cfg.API))
	switch api {
	case "":
		api = APIResponses
	case APIResponses, APIChat:
	default:
		return nil, fmt.Errorf("unknown LLM api %q (want %q or %q)", cfg.API, APIResponses, APIChat)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		api:         api,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// doOnce performs a single JSON request. There are no retries.
func (c *client) doOnce(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.Current().ObserveLLMRequest(c.model, "error", time.Since(start))
		return err
	}
	raw, readErr := httpx.ReadLimited(resp.Body, maxResponseBytes)
	_ = resp.Body.Close()
	observability.Current().ObserveLLMRequest(c.model, strconv.Itoa(resp.StatusCode), time.Since(start))
	if readErr != nil {
		return readErr
	}

	if !httpx.IsSuccess(resp.StatusCode) {
		return &httpx.StatusError{Service: "openai", StatusCode: resp.StatusCode, Body: httpx.Truncate(raw, 512)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w; raw=%s", err, httpx.Truncate(raw, 512))
	}
	return nil
}

// -------------------- Responses API --------------------

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model       string         `json:"model"`
	Input       []inputMessage `json:"input"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

// -------------------- Chat Completions --------------------

type chatRequest struct {
	Model       string         `json:"model"`
	Messages    []inputMessage `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (text string, err error) {
	ctx, span := observability.StartSpan(ctx, "openai.generate_text",
		attribute.String("llm.model", c.model),
		attribute.String("llm.api", c.api),
	)
	defer func() { observability.EndSpan(span, err) }()

	system = promptstyle.ApplySystem(system, promptstyle.ModeJSON)
	messages := []inputMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	var refusal string
	switch c.api {
	case APIChat:
		var resp chatResponse
		if err := c.doOnce(ctx, http.MethodPost, "/chat/completions", chatRequest{
			Model: c.model, Messages: messages, Temperature: c.temperature,
		}, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) > 0 {
			text = resp.Choices[0].Message.Content
			refusal = resp.Choices[0].Message.Refusal
		}
	default:
		var resp responsesResponse
		if err := c.doOnce(ctx, http.MethodPost, "/responses", responsesRequest{
			Model: c.model, Input: messages, Temperature: c.temperature,
		}, &resp); err != nil {
			return "", err
		}
		text = extractOutputText(resp)
		refusal = resp.Refusal
	}

	if refusal != "" {
		return "", fmt.Errorf("model refused: %s", refusal)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output text found in response")
	}
	c.log.Debug("generated text", "model", c.model, "chars", len(text))
	return text, nil
}
