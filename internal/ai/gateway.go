package ai

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Gateway is the single entry point per AI task. Each operation is total:
// build prompt, make exactly one provider call, parse and validate, and on
// any failure return the deterministic estimate instead. There is no retry
// state; the first failure falls straight through. Only the source tag and
// telemetry distinguish a genuine model answer from a fallback.
type Gateway struct {
	completer Completer
	tracer    trace.Tracer
}

// Per-task provider parameters. Low temperature for the numeric tasks,
// higher for prose.
const (
	descriptionMaxTokens = 200
	descriptionTemp      = 0.7
	priceMaxTokens       = 100
	priceTemp            = 0.3
	dealMaxTokens        = 200
	dealTemp             = 0.5
	replyMaxTokens       = 150
	replyTemp            = 0.7
	rewriteMaxTokens     = 200
	rewriteTemp          = 0.7
)

var errNoCompleter = errors.New("no completion provider configured")

// NewGateway builds a gateway around an injected provider client. A nil
// completer is allowed and routes every call to the fallback path, which
// keeps the marketplace usable without credentials.
func NewGateway(completer Completer) *Gateway {
	return &Gateway{
		completer: completer,
		tracer:    otel.Tracer("souq/ai"),
	}
}

func (g *Gateway) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g.completer == nil {
		return "", errNoCompleter
	}
	return g.completer.Complete(ctx, req)
}

func (g *Gateway) finishSpan(span trace.Span, task string, source Source, err error) {
	if err != nil {
		span.RecordError(err)
		log.Printf("ai %s falling back: %v", task, err)
	}
	span.SetAttributes(attribute.String("ai.source", string(source)))
	span.End()
}

func (g *Gateway) GenerateDescription(ctx context.Context, req DescriptionRequest) DescriptionResult {
	ctx, span := g.tracer.Start(ctx, "ai.generate_description")
	raw, err := g.complete(ctx, CompletionRequest{
		Turns:       []ChatTurn{{Role: "user", Content: buildDescriptionPrompt(req)}},
		MaxTokens:   descriptionMaxTokens,
		Temperature: descriptionTemp,
	})
	if err == nil {
		var text string
		if text, err = parseText(raw); err == nil {
			g.finishSpan(span, "generate-description", SourceAI, nil)
			return DescriptionResult{Text: text, Source: SourceAI}
		}
	}
	g.finishSpan(span, "generate-description", SourceFallback, err)
	return fallbackDescription(req)
}

func (g *Gateway) SuggestPriceRange(ctx context.Context, req PriceSuggestionRequest) PriceSuggestionResult {
	ctx, span := g.tracer.Start(ctx, "ai.suggest_price_range")
	raw, err := g.complete(ctx, CompletionRequest{
		Turns:       []ChatTurn{{Role: "user", Content: buildPriceSuggestionPrompt(req)}},
		MaxTokens:   priceMaxTokens,
		Temperature: priceTemp,
	})
	if err == nil {
		var result PriceSuggestionResult
		if result, err = parsePriceSuggestion(raw); err == nil {
			g.finishSpan(span, "suggest-price", SourceAI, nil)
			return result
		}
	}
	g.finishSpan(span, "suggest-price", SourceFallback, err)
	return fallbackPriceRange(req)
}

func (g *Gateway) ScoreDeal(ctx context.Context, req ScoreRequest) ScoreResult {
	ctx, span := g.tracer.Start(ctx, "ai.score_deal")
	raw, err := g.complete(ctx, CompletionRequest{
		Turns:       []ChatTurn{{Role: "user", Content: buildDealScorePrompt(req)}},
		MaxTokens:   dealMaxTokens,
		Temperature: dealTemp,
	})
	if err == nil {
		var result ScoreResult
		if result, err = parseDealScore(raw); err == nil {
			g.finishSpan(span, "score-deal", SourceAI, nil)
			return result
		}
	}
	g.finishSpan(span, "score-deal", SourceFallback, err)
	return fallbackDealScore(req)
}

func (g *Gateway) DraftSellerReply(ctx context.Context, req ReplyDraftRequest) ReplyDraftResult {
	ctx, span := g.tracer.Start(ctx, "ai.draft_seller_reply")
	system, turns := buildReplyDraftMessages(req)
	raw, err := g.complete(ctx, CompletionRequest{
		System:      system,
		Turns:       turns,
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemp,
	})
	if err == nil {
		var text string
		if text, err = parseText(raw); err == nil {
			g.finishSpan(span, "draft-reply", SourceAI, nil)
			return ReplyDraftResult{Text: text, Source: SourceAI}
		}
	}
	g.finishSpan(span, "draft-reply", SourceFallback, err)
	return fallbackReplyDraft(req)
}

// RewriteDescription has no estimator: on any failure the caller gets the
// original text back unchanged.
func (g *Gateway) RewriteDescription(ctx context.Context, description string, style RewriteStyle) string {
	ctx, span := g.tracer.Start(ctx, "ai.rewrite_description")
	raw, err := g.complete(ctx, CompletionRequest{
		Turns:       []ChatTurn{{Role: "user", Content: buildRewritePrompt(description, style)}},
		MaxTokens:   rewriteMaxTokens,
		Temperature: rewriteTemp,
	})
	if err == nil {
		var text string
		if text, err = parseText(raw); err == nil {
			g.finishSpan(span, "rewrite-description", SourceAI, nil)
			return text
		}
	}
	g.finishSpan(span, "rewrite-description", SourceFallback, err)
	return description
}
