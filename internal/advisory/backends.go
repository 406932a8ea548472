// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// openAIBaseURL is the default OpenAI-compatible API root.
var openAIBaseURL = "https://api.openai.com/v1"

const defaultMaxTokens = 2048

// ClaudeBackend sends one prompt to the Claude Messages API.
type ClaudeBackend struct {
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides claudeAPIURL when set (proxies, gateways).
	BaseURL string
	Client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete implements Model.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	endpoint := claudeAPIURL
	if c.BaseURL != "" {
		endpoint = strings.TrimRight(c.BaseURL, "/") + "/v1/messages"
	}
	body := claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens(c.MaxTokens),
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var cResp claudeResponse
	if err := postJSON(ctx, c.Client, endpoint, headers, body, &cResp); err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

// OpenAIBackend sends one prompt to an OpenAI-compatible chat completions
// endpoint. A local server works with BaseURL set and no key.
type OpenAIBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
	Client    *http.Client
}

type openAIRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements Model.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	base := openAIBaseURL
	if o.BaseURL != "" {
		base = o.BaseURL
	}
	body := openAIRequest{
		Model:     o.Model,
		MaxTokens: maxTokens(o.MaxTokens),
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{}
	if o.APIKey != "" {
		headers["Authorization"] = "Bearer " + o.APIKey
	}

	var oResp openAIResponse
	if err := postJSON(ctx, o.Client, strings.TrimRight(base, "/")+"/chat/completions", headers, body, &oResp); err != nil {
		return "", fmt.Errorf("calling chat completions API: %w", err)
	}
	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("chat completions API returned no choices")
	}
	return oResp.Choices[0].Message.Content, nil
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, in, out any) error {
	bodyBytes, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
