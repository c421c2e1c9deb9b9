package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is used when neither the caller nor the config
	// names a model.
	DefaultGeminiModel = "gemini-2.5-flash-preview-05-20"

	// defaultGeminiTimeout bounds a single generation call. Long-form
	// drafts on large models routinely run for minutes.
	defaultGeminiTimeout = 3 * time.Minute
)

// GeminiClient is the remote Gemini API backend.
type GeminiClient struct {
	modelName   string
	timeout     time.Duration
	temperature float32
	maxTokens   int32
	gClient     *genai.Client
}

// NewGeminiClient creates a Gemini backend. The API key is resolved from
// (in order) GEMINI_API_KEY, GOOGLE_GEMINI_API_KEY, GOOGLE_AI_API_KEY, and
// the ai.gemini.api_key config entry.
func NewGeminiClient(modelName string) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultGeminiModel
		}
	}

	timeout := defaultGeminiTimeout
	if raw := viper.GetString("ai.gemini.timeout"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	temperature := float32(viper.GetFloat64("ai.gemini.temperature"))
	maxTokens := viper.GetInt32("ai.gemini.max_tokens")

	return &GeminiClient{
		modelName:   modelName,
		timeout:     timeout,
		temperature: temperature,
		maxTokens:   maxTokens,
		gClient:     gClient,
	}, nil
}

// ModelName returns the configured model identifier.
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// Complete generates text for a single prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	return c.generate(ctx, contents, systemPrompt)
}

// Chat generates text for a multi-turn exchange.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: msg.Content}},
			Role:  role,
		})
	}
	return c.generate(ctx, contents, systemPrompt)
}

// CheckHealth issues a minimal generation to verify connectivity and
// credentials before expensive work begins.
func (c *GeminiClient) CheckHealth(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: "Reply with the single word: ok"}},
		Role:  "user",
	}}
	if _, err := c.gClient.Models.GenerateContent(probeCtx, c.modelName, contents, nil); err != nil {
		return fmt.Errorf("%w: gemini health probe failed: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *GeminiClient) generate(ctx context.Context, contents []*genai.Content, systemPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	if c.temperature > 0 {
		config.Temperature = genai.Ptr(c.temperature)
	}
	if c.maxTokens > 0 {
		config.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.gClient.Models.GenerateContent(callCtx, c.modelName, contents, config)
	if err != nil {
		return "", wrapCallError("gemini", c.timeout, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.modelName)
	}
	return text, nil
}
