package ai

import (
	"context"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// CompletionRequest is the single logical operation the core depends on:
// given a structured prompt, the provider returns free-form text or best
// effort JSON, and may fail at any time for any reason.
type CompletionRequest struct {
	System      string
	Turns       []ChatTurn
	MaxTokens   int64
	Temperature float64
}

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

const defaultModel = anthropic.ModelClaudeSonnet4_20250514

type anthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type anthropicClientCreator func(apiKey string) anthropicMessager

func defaultAnthropicCreator(apiKey string) anthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicMessager anthropicClientCreator = defaultAnthropicCreator

// AnthropicClient is the one Completer implementation. The optional
// limiter bounds outbound call rate to protect upstream quota; the
// gateway's no-retry policy sits above it and is unaffected.
type AnthropicClient struct {
	messages anthropicMessager
	limiter  *rate.Limiter
}

func NewAnthropicClientFromEnv(limiter *rate.Limiter) (*AnthropicClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicClient{messages: newAnthropicMessager(apiKey), limiter: limiter}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	params := anthropic.MessageNewParams{
		Model:       defaultModel,
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	for _, turn := range req.Turns {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == "assistant" {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
