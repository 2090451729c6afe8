package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrUnavailable marks a completion that failed after exhausting retries.
var ErrUnavailable = errors.New("model backend unavailable")

// ErrMalformedReply marks a 2xx response whose payload lacks the expected
// fields. Not retried: the backend is reachable but not speaking the
// protocol, so another attempt would not help.
var ErrMalformedReply = errors.New("malformed completion payload")

// Options configure the generation parameters sent with every request.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Completer issues chat completions against any OpenAI-compatible
// endpoint (DeepSeek by default) with bounded retry/backoff.
type Completer struct {
	client *openai.Client
	opts   Options
	retry  RetryPolicy
}

// NewCompleter creates a Completer for the given endpoint.
func NewCompleter(baseURL, apiKey string, opts Options, retry RetryPolicy) *Completer {
	// The SDK retries 429/5xx on its own; the RetryPolicy owns that here.
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &Completer{
		client: &client,
		opts:   opts,
		retry:  retry,
	}
}

// Complete sends the full ordered message history and returns the
// assistant's reply text. Rate limits, non-2xx statuses, and transport
// failures are retried with exponential backoff; a malformed success is
// surfaced immediately.
func (c *Completer) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.opts.Model,
		Messages:    convertMessages(messages),
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(c.opts.MaxTokens),
	}

	attempts := c.retry.attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimited(err) {
				// Rate limits are expected under load; wait without
				// capturing them as the terminal failure.
				log.Warn("model rate limited", "attempt", attempt+1, "wait", c.retry.Backoff(attempt))
			} else {
				log.Error("completion request failed", "attempt", attempt+1, "err", err)
				lastErr = err
			}
			if attempt+1 < attempts {
				if werr := c.retry.Wait(ctx, attempt); werr != nil {
					return "", fmt.Errorf("%w: %v", ErrUnavailable, werr)
				}
			}
			continue
		}

		if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
			return "", fmt.Errorf("%w: no choices returned", ErrMalformedReply)
		}
		return completion.Choices[0].Message.Content, nil
	}

	if lastErr == nil {
		return "", fmt.Errorf("%w: no response after %d attempts", ErrUnavailable, attempts)
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func isRateLimited(err error) bool {
	var apierr *openai.Error
	return errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests
}

func convertMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
