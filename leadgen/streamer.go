// ABOUTME: Streaming text generation behind a small interface
// ABOUTME: The production streamer uses OpenAI chat completions
package leadgen

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 2000
)

// Prompt is one generation request.
type Prompt struct {
	Text      string
	Model     string
	MaxTokens int
}

// TextStreamer streams generated text, calling onChunk for each piece in
// order.
type TextStreamer interface {
	StreamText(ctx context.Context, p Prompt, onChunk func(string)) error
}

// OpenAIStreamer streams chat completions from an OpenAI-compatible API.
type OpenAIStreamer struct {
	client *openai.Client
}

// NewOpenAIStreamer builds a streamer. Empty baseURL or apiKey fall back to
// the SDK defaults and environment.
func NewOpenAIStreamer(baseURL, apiKey string) *OpenAIStreamer {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	cl := openai.NewClient(opts...)
	return &OpenAIStreamer{client: &cl}
}

func (s *OpenAIStreamer) StreamText(ctx context.Context, p Prompt, onChunk func(string)) error {
	model := p.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	stream := s.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage(p.Text)},
		Model:     shared.ChatModel(model),
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			onChunk(text)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("stream failed: %w", err)
	}
	return nil
}
