package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"concierge/internal/domain"
	"concierge/internal/policy"
)

// classifier picks the domain for a request. The engine's single choice is
// authoritative; keyword scoring covers the engine being unavailable or
// answering something that is not a configured domain.
type classifier struct {
	specs         []policy.DomainSpec
	engine        domain.Engine
	strategy      string // "keyword" | "llm" | "hybrid"
	lowerKeywords map[string][]string
	logger        *slog.Logger
}

func newClassifier(specs []policy.DomainSpec, eng domain.Engine, strategy string, logger *slog.Logger) *classifier {
	if strategy == "" {
		strategy = "hybrid"
	}

	// Pre-compute lowercase keywords to avoid repeated ToLower per request.
	lowerKW := make(map[string][]string, len(specs))
	for _, s := range specs {
		kws := make([]string, len(s.Keywords))
		for i, kw := range s.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		lowerKW[s.Name] = kws
	}

	return &classifier{
		specs:         specs,
		engine:        eng,
		strategy:      strategy,
		lowerKeywords: lowerKW,
		logger:        logger,
	}
}

func (c *classifier) classify(ctx context.Context, text string) string {
	switch c.strategy {
	case "keyword":
		return c.classifyByKeyword(text)
	case "llm":
		return c.classifyByEngine(ctx, text)
	default: // hybrid
		if dom := c.classifyByEngine(ctx, text); dom != "" {
			return dom
		}
		return c.classifyByKeyword(text)
	}
}

// classifyByEngine asks the reasoning engine to name one domain. Returns ""
// when the engine fails or answers outside the configured set.
func (c *classifier) classifyByEngine(ctx context.Context, text string) string {
	if c.engine == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Classify the customer request into exactly one domain. Reply with the domain name only, nothing else.\n\nDomains:\n")
	for _, s := range c.specs {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
	}

	resp, err := c.engine.Complete(ctx, domain.CompletionRequest{
		System:    b.String(),
		Messages:  []domain.Message{{Role: "user", Content: text}},
		MaxTokens: 16,
	})
	if err != nil {
		c.logger.Warn("engine classification failed", "error", err)
		return ""
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	for _, s := range c.specs {
		if answer == s.Name {
			return s.Name
		}
	}
	c.logger.Debug("engine classification outside configured domains", "answer", answer)
	return ""
}

// classifyByKeyword scores pre-computed keywords against the request text
// and picks the best match. Empty string means nothing matched.
func (c *classifier) classifyByKeyword(text string) string {
	lower := strings.ToLower(text)

	var bestMatch string
	var bestScore int
	for _, s := range c.specs {
		score := 0
		for _, kw := range c.lowerKeywords[s.Name] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestMatch = s.Name
		}
	}

	if bestScore > 0 {
		c.logger.Debug("keyword classification matched", "domain", bestMatch, "score", bestScore)
	}
	return bestMatch
}
