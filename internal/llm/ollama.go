package llm

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

// OllamaClient is a local inference backend speaking the Ollama HTTP API.
type OllamaClient struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama backend. Defaults target a local
// server with a lightweight model.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2:3b"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ModelName returns the configured model identifier.
func (c *OllamaClient) ModelName() string {
	return c.model
}

// CheckHealth verifies the server is reachable and the model is pulled.
func (c *OllamaClient) CheckHealth(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama not accessible at %s: %v", ErrUnavailable, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode ollama model list: %w", err)
	}
	for _, m := range result.Models {
		if strings.HasPrefix(m.Name, c.model) {
			return nil
		}
	}
	return fmt.Errorf("model %s not available in ollama - please run: ollama pull %s", c.model, c.model)
}

// Complete generates text for a single prompt via /api/generate.
func (c *OllamaClient) Complete(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	if systemPrompt != "" {
		requestBody["system"] = systemPrompt
	}

	body, err := c.post(ctx, "/api/generate", requestBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return response.Response, nil
}

// Chat generates text for a multi-turn exchange via /api/chat.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	payload := make([]map[string]string, 0, len(messages)+1)
	if systemPrompt != "" {
		payload = append(payload, map[string]string{"role": "system", "content": systemPrompt})
	}
	for _, msg := range messages {
		payload = append(payload, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	requestBody := map[string]interface{}{
		"model":    c.model,
		"messages": payload,
		"stream":   false,
	}

	body, err := c.post(ctx, "/api/chat", requestBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode ollama chat response: %w", err)
	}
	return response.Message.Content, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, requestBody map[string]interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, "POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapCallError("ollama", c.timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama request failed: %d - %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
