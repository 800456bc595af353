package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const extractPrompt = `You read pharmaceutical facility briefs. Reply with one JSON object and nothing else:
{"rooms": [string], "batchSize": number (optional), "throughput": number (optional),
 "layoutStyle": "compact"|"spacious"|"linear"|"balanced" (optional),
 "prioritizeFlow": "material"|"personnel"|"balanced" (optional)}
List every room type the facility needs, using common GMP room names.`

const rationalePrompt = `You are a GMP facility designer. In at most four sentences, explain why the
following room arrangement suits the brief. Mention cleanroom grades and flows where relevant.`

// HTTPConfig configures an OpenAI-compatible chat-completions endpoint.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	RetryCount int
}

// HTTPClient is a Generator backed by a chat-completions API.
type HTTPClient struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPClient creates a chat-completions generator.
func NewHTTPClient(cfg HTTPConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &HTTPClient{httpClient: client, model: cfg.Model, logger: logger}
}

// ExtractRooms asks the model for a JSON room list.
func (c *HTTPClient) ExtractRooms(ctx context.Context, description string) (*Extraction, error) {
	content, err := c.complete(ctx, extractPrompt, description)
	if err != nil {
		return nil, err
	}
	ex, err := parseExtraction(content)
	if err != nil {
		c.logger.Error("Unreadable room extraction", zap.Error(err), zap.String("content", content))
		return nil, err
	}
	c.logger.Info("Extracted rooms from description", zap.Int("room_count", len(ex.Rooms)))
	return ex, nil
}

// Rationale asks the model for a short explanation of the layout.
func (c *HTTPClient) Rationale(ctx context.Context, rooms []RoomSummary, description string) (string, error) {
	summary, err := json.Marshal(rooms)
	if err != nil {
		return "", fmt.Errorf("encoding room summaries: %w", err)
	}
	prompt := fmt.Sprintf("Brief: %s\nRooms: %s", description, summary)
	content, err := c.complete(ctx, rationalePrompt, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("%w: empty rationale", ErrMalformed)
	}
	return text, nil
}

func (c *HTTPClient) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var out chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		c.logger.Error("Text generation call failed", zap.Error(err))
		return "", fmt.Errorf("calling text generation API: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		c.logger.Error("Text generation API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", msg),
		)
		return "", fmt.Errorf("text generation API error: %s (status: %d)", msg, resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return out.Choices[0].Message.Content, nil
}

// parseExtraction decodes a model reply, tolerating a Markdown code fence
// but nothing else around the object.
func parseExtraction(content string) (*Extraction, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	var ex Extraction
	if err := dec.Decode(&ex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformed)
	}
	if ex.Rooms == nil {
		return nil, fmt.Errorf("%w: missing rooms", ErrMalformed)
	}
	return &ex, nil
}
