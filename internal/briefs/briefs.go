// Package briefs builds content briefs by interrogating the LLM backend
// for differentiators, data points, and a unique insight before drafting.
package briefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postforge/internal/core"
	"postforge/internal/extract"
	"postforge/internal/llm"
	"postforge/internal/logger"
)

// Request carries the caller-supplied parameters for one post.
type Request struct {
	Topic             string
	Location          core.Location
	TargetKeyword     string
	SecondaryKeywords []string
	SearchIntent      core.SearchIntent
	Audience          string
	ContentLength     int
}

// Builder assembles content briefs using an LLM backend for research.
type Builder struct {
	backend llm.Backend
}

// NewBuilder creates a brief builder over the given backend.
func NewBuilder(backend llm.Backend) *Builder {
	return &Builder{backend: backend}
}

// Build constructs a brief for the request and chosen angle. Extraction
// failures on individual research calls degrade that field rather than
// failing the build; transport errors propagate.
func (b *Builder) Build(ctx context.Context, req Request, angle string) (core.ContentBrief, error) {
	brief := core.ContentBrief{
		Topic:             req.Topic,
		TargetKeyword:     req.TargetKeyword,
		SecondaryKeywords: req.SecondaryKeywords,
		SearchIntent:      req.SearchIntent,
		Audience:          req.Audience,
		ContentAngle:      angle,
		ContentLength:     req.ContentLength,
	}

	differentiators, err := b.fetchDifferentiators(ctx, req, angle)
	if err != nil {
		if isExtraction(err) {
			logger.Warn("differentiator extraction failed, continuing without", "topic", req.Topic)
		} else {
			return brief, fmt.Errorf("failed to source differentiators: %w", err)
		}
	}
	brief.Differentiators = differentiators

	dataPoints, err := b.fetchDataPoints(ctx, req)
	if err != nil {
		if isExtraction(err) {
			logger.Warn("data point extraction failed, continuing without", "topic", req.Topic)
		} else {
			return brief, fmt.Errorf("failed to source data points: %w", err)
		}
	}
	brief.DataPoints = dataPoints

	insight, err := b.fetchInsight(ctx, req, angle, differentiators)
	if err != nil {
		if isExtraction(err) {
			logger.Warn("insight extraction failed, continuing without", "topic", req.Topic)
		} else {
			return brief, fmt.Errorf("failed to source insight: %w", err)
		}
	}
	brief.UniqueInsight = insight

	return brief, nil
}

// RefreshDataPoints asks the backend for a fresh fact set, used between
// regeneration attempts so a failed draft is not retried on stale facts.
func (b *Builder) RefreshDataPoints(ctx context.Context, brief core.ContentBrief) ([]core.DataPoint, error) {
	return b.fetchDataPoints(ctx, Request{
		Topic:         brief.Topic,
		TargetKeyword: brief.TargetKeyword,
	})
}

// DraftPrompt renders the full generation prompt for a brief and template.
func DraftPrompt(brief core.ContentBrief, templateID string) (prompt, system string) {
	var facts []string
	for _, point := range brief.DataPoints {
		facts = append(facts, fmt.Sprintf("- %s (source: %s)", point.Fact, point.Source))
	}
	factBlock := "- (none supplied)"
	if len(facts) > 0 {
		factBlock = strings.Join(facts, "\n")
	}

	diffBlock := "- (none supplied)"
	if len(brief.Differentiators) > 0 {
		diffBlock = "- " + strings.Join(brief.Differentiators, "\n- ")
	}

	insight := brief.UniqueInsight
	if insight == "" {
		insight = "(develop one original observation of your own)"
	}

	prompt = fmt.Sprintf(draftPromptTemplate,
		brief.Topic,
		brief.TargetKeyword,
		strings.Join(brief.SecondaryKeywords, ", "),
		brief.SearchIntent,
		brief.Audience,
		brief.ContentAngle,
		templateID,
		brief.ContentLength,
		diffBlock,
		factBlock,
		insight,
	)
	return prompt, draftSystemPrompt
}

func (b *Builder) fetchDifferentiators(ctx context.Context, req Request, angle string) ([]string, error) {
	prompt := fmt.Sprintf(differentiatorsPromptTemplate, req.Topic, req.TargetKeyword, req.Audience, angle)
	raw, err := b.backend.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Differentiators []string `json:"differentiators"`
	}
	if err := extract.Object(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed.Differentiators, nil
}

func (b *Builder) fetchDataPoints(ctx context.Context, req Request) ([]core.DataPoint, error) {
	locationLabel := req.Location.Name
	if req.Location.Region != "" {
		locationLabel = fmt.Sprintf("%s, %s", req.Location.Name, req.Location.Region)
	}

	prompt := fmt.Sprintf(dataPointsPromptTemplate, req.Topic, locationLabel, req.TargetKeyword)
	raw, err := b.backend.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		DataPoints []core.DataPoint `json:"dataPoints"`
	}
	if err := extract.Object(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed.DataPoints, nil
}

func (b *Builder) fetchInsight(ctx context.Context, req Request, angle string, differentiators []string) (string, error) {
	prompt := fmt.Sprintf(insightPromptTemplate, req.Topic, angle, strings.Join(differentiators, "; "))
	raw, err := b.backend.Complete(ctx, prompt, "")
	if err != nil {
		return "", err
	}

	var parsed struct {
		Insight string `json:"insight"`
	}
	if err := extract.Object(raw, &parsed); err != nil {
		return "", err
	}
	return parsed.Insight, nil
}

func isExtraction(err error) bool {
	var extractErr *extract.Error
	return errors.As(err, &extractErr)
}
