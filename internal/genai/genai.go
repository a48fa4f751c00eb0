// Package genai provides the AI completion gateway using the OpenAI API.
//
// All network calls go through a bounded retry policy; callers that cannot
// tolerate failure use CompleteOrFallback, which substitutes a fixed
// localized message when every attempt is exhausted.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// FallbackText is the fixed substitute returned when the AI service stays
// unreachable after all retries.
const FallbackText = "Мозг коуча сейчас перезагружается, попробуй позже."

// DefaultRequestTimeout bounds a single completion request.
const DefaultRequestTimeout = 60 * time.Second

// Role constants for completion messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a completion conversation. Images carry
// base64-encoded JPEG payloads attached to user messages.
type Message struct {
	Role    string
	Content string
	Images  []string
}

// Options tunes a single completion call. Zero values leave the API defaults.
type Options struct {
	Temperature float64
	MaxTokens   int64
}

// ClientInterface defines the completion operations consumed by other packages.
type ClientInterface interface {
	// Complete performs a completion with retries and returns an error when
	// all attempts are exhausted or the failure is not retryable.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)

	// CompleteOrFallback performs a completion and never fails: exhausted
	// retries yield FallbackText instead of an error.
	CompleteOrFallback(ctx context.Context, messages []Message, opts Options) string
}

// completionCaller is the minimal surface of the OpenAI chat completion API,
// extracted so tests can inject a fake.
type completionCaller interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiCaller struct {
	client openai.Client
}

func (c openaiCaller) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// Client wraps the OpenAI chat completion service with retry and fallback.
type Client struct {
	chat   completionCaller
	model  string
	policy RetryPolicy
	sleep  SleepFunc
}

// NewClient initializes a GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not set via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4o
	}

	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(DefaultRequestTimeout),
	)
	slog.Debug("GenAI client created", "model", model)
	return &Client{
		chat:   openaiCaller{client: cli},
		model:  model,
		policy: DefaultRetryPolicy(),
		sleep:  sleepContext,
	}, nil
}

// Complete performs a chat completion with bounded retries.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	params := c.buildParams(messages, opts)

	start := time.Now()
	text, err := retryWithBackoff(ctx, c.policy, c.sleep, IsTransient, func() (string, error) {
		return c.attempt(ctx, params)
	})
	if err != nil {
		slog.Error("GenAI Complete failed", "error", err, "latency", time.Since(start))
		return "", err
	}
	slog.Info("GenAI Complete succeeded", "latency", time.Since(start))
	return text, nil
}

// CompleteOrFallback performs a completion and substitutes FallbackText on
// any failure. Callers never need their own error branch for AI calls.
func (c *Client) CompleteOrFallback(ctx context.Context, messages []Message, opts Options) string {
	text, err := c.Complete(ctx, messages, opts)
	if err != nil {
		slog.Warn("GenAI CompleteOrFallback returning fallback text", "error", err)
		return FallbackText
	}
	return text
}

func (c *Client) attempt(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildParams(messages []Message, opts Options) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: buildMessageParams(messages),
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}
	return params
}

// buildMessageParams converts gateway messages into OpenAI message params,
// attaching images as data-URL content parts on user messages.
func buildMessageParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case msg.Role == RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case len(msg.Images) > 0:
			parts := []openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(msg.Content),
			}
			for _, img := range msg.Images {
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: "data:image/jpeg;base64," + img,
				}))
			}
			out = append(out, openai.UserMessage(parts))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// IsTransient classifies errors worth retrying: rate limits, upstream 5xx
// responses and connectivity failures. Malformed-request style API errors
// and cancelled contexts are not retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return true
		case apiErr.StatusCode == 408:
			return true
		case apiErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	// Empty-completion responses are a server-side hiccup worth one more try.
	if strings.Contains(err.Error(), "no choices returned") {
		return true
	}

	// Anything that is not an API error is assumed to be a connectivity issue.
	return true
}
