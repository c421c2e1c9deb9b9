// Package generator drives one post through brief building, drafting,
// scoring, and bounded regeneration until it passes the differentiation
// threshold or the attempt budget runs out.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"postforge/internal/briefs"
	"postforge/internal/core"
	"postforge/internal/extract"
	"postforge/internal/fingerprint"
	"postforge/internal/llm"
	"postforge/internal/logger"
	"postforge/internal/render"
	"postforge/internal/rotation"
	"postforge/internal/scoring"
)

// State labels the controller's position in the generation lifecycle.
type State string

const (
	StateBuildingBrief State = "building_brief"
	StateGenerating    State = "generating"
	StateScoring       State = "scoring"
	StateRegenerating  State = "regenerating"
	StateFinalized     State = "finalized"
	StateFailed        State = "failed"
)

// FailurePolicy selects what happens when every attempt stays below the
// differentiation threshold.
type FailurePolicy int

const (
	// ReturnBestEffort finalizes the highest-scoring candidate with
	// warnings attached.
	ReturnBestEffort FailurePolicy = iota
	// FailHard surfaces a *ThresholdError instead of a post.
	FailHard
)

// Options bound the generation loop.
type Options struct {
	MaxAttempts      int
	MinContentLength int
	FailurePolicy    FailurePolicy
}

// DefaultOptions returns the standard loop bounds.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:      3,
		MinContentLength: 500,
		FailurePolicy:    ReturnBestEffort,
	}
}

// ExhaustionError means every content angle for the topic has been
// consumed. It is fatal for the topic: the fix is a new strategy, not a
// retry.
type ExhaustionError struct {
	Topic  string
	Intent core.SearchIntent
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("all %q angles exhausted for topic %q; a new angle set or topic is needed",
		e.Intent, e.Topic)
}

// ShortContentError means the backend produced too little content even
// after the degraded-parse fallback.
type ShortContentError struct {
	Length  int
	Minimum int
}

func (e *ShortContentError) Error() string {
	return fmt.Sprintf("generated content too short: %d characters, minimum %d", e.Length, e.Minimum)
}

// ThresholdError carries the best rejected candidate when the policy is
// FailHard.
type ThresholdError struct {
	Report   core.DifferentiationReport
	Quality  float64
	Attempts int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("differentiation score %.2f below threshold after %d attempts: %v",
		e.Report.OverallScore, e.Attempts, e.Report.Issues)
}

// BriefSource supplies content briefs and refreshed fact sets.
// *briefs.Builder is the production implementation.
type BriefSource interface {
	Build(ctx context.Context, req briefs.Request, angle string) (core.ContentBrief, error)
	RefreshDataPoints(ctx context.Context, brief core.ContentBrief) ([]core.DataPoint, error)
}

// Controller orchestrates the generation state machine.
type Controller struct {
	backend llm.Backend
	briefs  BriefSource
	scorer  *scoring.DifferentiationScorer
	angles  *rotation.AngleTracker
	opts    Options
}

// NewController wires a controller from its collaborators.
func NewController(backend llm.Backend, briefSource BriefSource, scorer *scoring.DifferentiationScorer, angles *rotation.AngleTracker, opts Options) *Controller {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = 500
	}
	return &Controller{
		backend: backend,
		briefs:  briefSource,
		scorer:  scorer,
		angles:  angles,
		opts:    opts,
	}
}

// Generate runs the full pipeline for one request and returns the
// finalized post. The registry is never touched here; committing identity
// and photo reservations is the caller's responsibility and must happen
// only after this returns successfully.
func (c *Controller) Generate(ctx context.Context, req briefs.Request, templateID string) (*core.GeneratedPost, error) {
	logger.Debug("generation state", "state", string(StateBuildingBrief), "topic", req.Topic)

	available := c.angles.AvailableAngles(req.Topic, req.SearchIntent)
	if len(available) == 0 {
		return nil, &ExhaustionError{Topic: req.Topic, Intent: req.SearchIntent}
	}
	angle := available[0]

	brief, err := c.briefs.Build(ctx, req, angle)
	if err != nil {
		return nil, fmt.Errorf("brief construction failed for %q: %w", req.Topic, err)
	}

	var (
		bestDraft   core.GeneratedDraft
		bestReport  core.DifferentiationReport
		bestQuality float64
		haveBest    bool
	)

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			logger.Debug("generation state", "state", string(StateRegenerating), "topic", req.Topic, "attempt", attempt)
			// Nudge the model toward a different framing rather than
			// replaying the angle that just failed.
			brief.ContentAngle = fmt.Sprintf("%s (alternative take %d)", angle, attempt)
			if fresh, err := c.briefs.RefreshDataPoints(ctx, brief); err == nil && len(fresh) > 0 {
				brief.DataPoints = fresh
			}
		}

		logger.Debug("generation state", "state", string(StateGenerating), "topic", req.Topic, "attempt", attempt)
		prompt, system := briefs.DraftPrompt(brief, templateID)
		raw, err := c.backend.Complete(ctx, prompt, system)
		if err != nil {
			return nil, fmt.Errorf("draft generation failed for %q: %w", req.Topic, err)
		}

		draft := parseDraft(raw, req)
		if len(draft.Content) < c.opts.MinContentLength {
			return nil, &ShortContentError{Length: len(draft.Content), Minimum: c.opts.MinContentLength}
		}

		logger.Debug("generation state", "state", string(StateScoring), "topic", req.Topic, "attempt", attempt)
		report := c.scorer.Evaluate(draft.Content, brief)
		quality := scoring.EvaluateQuality(draft.Content, brief)

		if report.PassesThreshold {
			return c.finalize(req, angle, templateID, draft, report, quality, attempt, nil), nil
		}

		if !haveBest || report.OverallScore > bestReport.OverallScore {
			bestDraft = draft
			bestReport = report
			bestQuality = quality
			haveBest = true
		}

		logger.Info("draft below threshold",
			"topic", req.Topic,
			"attempt", attempt,
			"overall_score", report.OverallScore,
			"issues", report.Issues)
	}

	if c.opts.FailurePolicy == FailHard {
		logger.Debug("generation state", "state", string(StateFailed), "topic", req.Topic)
		return nil, &ThresholdError{Report: bestReport, Quality: bestQuality, Attempts: c.opts.MaxAttempts}
	}

	warnings := append([]string{
		fmt.Sprintf("differentiation threshold not met after %d attempts; publishing best effort", c.opts.MaxAttempts),
	}, bestReport.Issues...)
	return c.finalize(req, angle, templateID, bestDraft, bestReport, bestQuality, c.opts.MaxAttempts, warnings), nil
}

func (c *Controller) finalize(req briefs.Request, angle, templateID string, draft core.GeneratedDraft, report core.DifferentiationReport, quality float64, attempts int, warnings []string) *core.GeneratedPost {
	logger.Debug("generation state", "state", string(StateFinalized), "topic", req.Topic)

	c.angles.RegisterUsed(req.Topic, angle)

	reportCopy := report
	return &core.GeneratedPost{
		ID:              uuid.NewString(),
		Title:           draft.Title,
		MetaDescription: draft.MetaDescription,
		Slug:            draft.Slug,
		Content:         draft.Content,
		FAQItems:        draft.FAQItems,
		WordCount:       fingerprint.CountWords(draft.Content),
		ContentHash:     hashContent(draft.Content),
		QualityScore:    quality,
		Differentiation: &reportCopy,
		ContentAngle:    angle,
		TemplateID:      templateID,
		ModelUsed:       c.backend.ModelName(),
		Attempts:        attempts,
		GeneratedAt:     time.Now().UTC(),
		Warnings:        warnings,
	}
}

// parseDraft extracts the structured draft from raw model output. When no
// JSON shape can be recovered, the raw text becomes the content of a
// degraded draft with a synthesized title and slug; the minimum-length
// guard still applies to it.
func parseDraft(raw string, req briefs.Request) core.GeneratedDraft {
	var draft core.GeneratedDraft
	if err := extract.Object(raw, &draft); err == nil && draft.Content != "" {
		if draft.Slug == "" {
			draft.Slug = render.Slugify(draft.Title)
		}
		return draft
	}

	logger.Warn("draft response not parseable, using degraded artifact", "topic", req.Topic)
	title := req.Topic
	if req.Location.Name != "" {
		title = fmt.Sprintf("%s: %s", req.Location.Name, req.Topic)
	}
	return core.GeneratedDraft{
		Title:           title,
		MetaDescription: fmt.Sprintf("A guide to %s.", req.Topic),
		Slug:            render.Slugify(title),
		Content:         raw,
	}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
