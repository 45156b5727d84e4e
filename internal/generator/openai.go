package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	// maxResponseSize bounds how much of a completion response is read.
	maxResponseSize = 1 << 20 // 1 MB
)

// systemPrompt frames every completion call. The per-cell rule arrives in
// the user message, so this stays constant across steps.
const systemPrompt = "You update one cell of a toroidal grid of short text fragments. " +
	"Apply the given rule to the cell and its four neighbors, then reply with " +
	"the cell's next value only, with no commentary and no quotation marks."

// OpenAIConfig configures an OpenAI-compatible completion client. Zero
// values fall back to sensible defaults; APIKey may be empty for local
// endpoints that do not authenticate.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint. The
// per-call timeout lives on the underlying http.Client, so a hung upstream
// call resolves as an ordinary failure instead of pinning its cell forever.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// Compile-time interface satisfaction check.
var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &OpenAIClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
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
	} `json:"error"`
}

// Generate implements Generator against the chat-completions endpoint.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("completion endpoint: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// userPrompt lays out the rule and the captured neighborhood for the model.
func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule: %s\n\n", req.Rule)
	fmt.Fprintf(&b, "Cell: %q\n", req.Current)
	fmt.Fprintf(&b, "North: %q\n", req.North)
	fmt.Fprintf(&b, "South: %q\n", req.South)
	fmt.Fprintf(&b, "West: %q\n", req.West)
	fmt.Fprintf(&b, "East: %q\n", req.East)
	return b.String()
}
