package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// GroqAPIURL is the default Groq API endpoint (OpenAI-compatible).
	GroqAPIURL = "https://api.groq.com/openai/v1"
	// DefaultGroqModel is the default model to use.
	DefaultGroqModel = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// Groq model constants.
const (
	GroqLlama4Scout17B = "meta-llama/llama-4-scout-17b-16e-instruct"
	GroqLlama31_8B     = "llama-3.1-8b-instant"
	GroqLlama33_70B    = "llama-3.3-70b-versatile"
	GroqGemma2_9B      = "gemma2-9b-it"
)

// GroqLLM implements the LLM interface for Groq's API.
type GroqLLM struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// GroqOption configures a GroqLLM.
type GroqOption func(*GroqLLM)

// WithGroqAPIKey sets the API key.
func WithGroqAPIKey(apiKey string) GroqOption {
	return func(g *GroqLLM) {
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = GroqAPIURL
		g.client = openai.NewClientWithConfig(config)
	}
}

// WithGroqModel sets the model.
func WithGroqModel(model string) GroqOption {
	return func(g *GroqLLM) {
		g.model = model
	}
}

// WithGroqTemperature sets the sampling temperature.
func WithGroqTemperature(temperature float32) GroqOption {
	return func(g *GroqLLM) {
		g.temperature = temperature
	}
}

// WithGroqBaseURL sets a custom base URL (for testing or proxies).
func WithGroqBaseURL(baseURL string) GroqOption {
	return func(g *GroqLLM) {
		apiKey := os.Getenv("GROQ_API_KEY")
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = baseURL
		g.client = openai.NewClientWithConfig(config)
	}
}

// WithGroqClient sets a custom OpenAI client.
func WithGroqClient(client *openai.Client) GroqOption {
	return func(g *GroqLLM) {
		g.client = client
	}
}

// NewGroqLLM creates a new Groq LLM client. The API key defaults to the
// GROQ_API_KEY environment variable.
func NewGroqLLM(opts ...GroqOption) *GroqLLM {
	config := openai.DefaultConfig(os.Getenv("GROQ_API_KEY"))
	config.BaseURL = GroqAPIURL

	g := &GroqLLM{
		client: openai.NewClientWithConfig(config),
		model:  DefaultGroqModel,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Complete generates a completion for a given prompt.
func (g *GroqLLM) Complete(ctx context.Context, prompt string) (string, error) {
	g.logger.Info("Complete called", "model", g.model, "prompt_len", len(prompt))

	return g.Chat(ctx, []ChatMessage{NewUserMessage(prompt)})
}

// Chat generates a response for a list of chat messages.
func (g *GroqLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    toOpenAIMessages(messages),
			Temperature: g.temperature,
		},
	)

	if err != nil {
		g.logger.Error("Chat failed", "error", err)
		return "", fmt.Errorf("groq chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream generates a streaming completion for a given prompt.
func (g *GroqLLM) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	g.logger.Info("Stream called", "model", g.model, "prompt_len", len(prompt))

	stream, err := g.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    toOpenAIMessages([]ChatMessage{NewUserMessage(prompt)}),
			Temperature: g.temperature,
			Stream:      true,
		},
	)

	if err != nil {
		g.logger.Error("Stream failed", "error", err)
		return nil, fmt.Errorf("groq stream failed: %w", err)
	}

	tokenChan := make(chan string)

	go func() {
		defer close(tokenChan)
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				g.logger.Error("Stream receive error", "error", err)
				return
			}

			if len(response.Choices) > 0 {
				delta := response.Choices[0].Delta.Content
				if delta != "" {
					select {
					case tokenChan <- delta:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return tokenChan, nil
}

// toOpenAIMessages converts chat messages to the go-openai representation.
func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// Ensure GroqLLM implements the interface.
var _ LLM = (*GroqLLM)(nil)
