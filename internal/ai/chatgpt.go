package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatGPT represents a client for an OpenAI-compatible chat completions API
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// New creates a new ChatGPT client. baseURL is the API root, e.g. https://api.openai.com/v1
func New(apiKey, baseURL, model string) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}

	return &ChatGPT{
		apiKey:      apiKey,
		apiURL:      strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:       model,
		maxTokens:   100,
		temperature: 0.3,
		// Callers bound each request with a context deadline
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for output matching a JSON schema
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema is a named strict output schema
type JSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// translationSchema is the {english, russian} object the model must return
var translationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"english": map[string]interface{}{"type": "string"},
		"russian": map[string]interface{}{"type": "string"},
	},
	"required":             []string{"english", "russian"},
	"additionalProperties": false,
}

// GenerateTranslation asks the model for a simple Russian equivalent of word.
// It returns the raw JSON text of the answer; decoding is left to the caller.
func (c *ChatGPT) GenerateTranslation(ctx context.Context, word string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the English word %q into a simple Russian equivalent for a child. "+
			"Return only JSON: {\"english\": \"...\", \"russian\": \"...\"}",
		word,
	)

	request := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: "Ты - простой англо-русский словарь для детей. Переводи по одному слову и отвечай только JSON."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "translation",
				Strict: true,
				Schema: translationSchema,
			},
		},
	}

	return c.complete(ctx, request)
}

// complete sends a chat request and returns the first choice's content
func (c *ChatGPT) complete(ctx context.Context, request ChatRequest) (string, error) {
	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// Close releases idle connections held by the client
func (c *ChatGPT) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
