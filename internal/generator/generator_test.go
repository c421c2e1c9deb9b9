package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"postforge/internal/briefs"
	"postforge/internal/core"
	"postforge/internal/llm"
	"postforge/internal/rotation"
	"postforge/internal/scoring"
)

// mockBackend replays queued responses and records every prompt.
type mockBackend struct {
	responses []string
	prompts   []string
	err       error
}

func (m *mockBackend) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("mock backend: no responses queued")
	}
	response := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return response, nil
}

func (m *mockBackend) Chat(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	return m.Complete(ctx, "", systemPrompt)
}

func (m *mockBackend) CheckHealth(ctx context.Context) error { return nil }

func (m *mockBackend) ModelName() string { return "mock-model" }

// mockBriefSource returns a fixed brief and tracks refresh calls.
type mockBriefSource struct {
	brief        core.ContentBrief
	refreshed    []core.DataPoint
	refreshCalls int
	buildErr     error
}

func (m *mockBriefSource) Build(ctx context.Context, req briefs.Request, angle string) (core.ContentBrief, error) {
	if m.buildErr != nil {
		return core.ContentBrief{}, m.buildErr
	}
	brief := m.brief
	brief.Topic = req.Topic
	brief.ContentAngle = angle
	return brief, nil
}

func (m *mockBriefSource) RefreshDataPoints(ctx context.Context, brief core.ContentBrief) ([]core.DataPoint, error) {
	m.refreshCalls++
	return m.refreshed, nil
}

// stubSimilarity returns a fixed score for every candidate.
type stubSimilarity struct {
	score float64
	doc   string
}

func (s stubSimilarity) ScoreAgainst(candidate string) (float64, string) {
	return s.score, s.doc
}

var testFacts = []core.DataPoint{
	{Fact: "rents rose 12 percent in 2025", Source: "city housing report"},
	{Fact: "the F train runs every 6 minutes", Source: "transit authority"},
	{Fact: "over 40 cafes opened since 2023", Source: "business registry"},
}

const testInsight = "locals do their shopping before 9am on weekends"

func testBriefSource() *mockBriefSource {
	return &mockBriefSource{
		brief: core.ContentBrief{
			TargetKeyword: "park slope guide",
			SearchIntent:  core.IntentInformational,
			DataPoints:    testFacts,
			UniqueInsight: testInsight,
			ContentLength: 1500,
		},
	}
}

func testRequest() briefs.Request {
	return briefs.Request{
		Topic:         "coffee shops",
		Location:      core.Location{Name: "Park Slope", Qualifier: "Brooklyn", Region: "NY"},
		TargetKeyword: "park slope coffee",
		SearchIntent:  core.IntentInformational,
		ContentLength: 1500,
	}
}

// passingContent builds a body that includes every fact and the insight,
// well past the minimum length.
func passingContent() string {
	var b strings.Builder
	b.WriteString("## The short version\n\n")
	for _, point := range testFacts {
		b.WriteString("Worth knowing: " + point.Fact + ". ")
	}
	b.WriteString("One thing visitors miss is that " + testInsight + ". ")
	for i := 0; i < 10; i++ {
		b.WriteString("The neighborhood rewards slow mornings and aimless walking more than any checklist ever could. ")
	}
	return b.String()
}

func draftResponse(t *testing.T, content string) string {
	t.Helper()
	draft := core.GeneratedDraft{
		Title:           "A Local's Guide to Park Slope Coffee",
		MetaDescription: "Where to actually get coffee in Park Slope.",
		Slug:            "park-slope-coffee-guide",
		Content:         content,
	}
	encoded, err := json.Marshal(draft)
	if err != nil {
		t.Fatalf("failed to encode draft fixture: %v", err)
	}
	return string(encoded)
}

func newTestController(backend llm.Backend, source BriefSource, similarity stubSimilarity, opts Options) (*Controller, *rotation.AngleTracker) {
	angles := rotation.NewAngleTracker()
	scorer := scoring.NewDifferentiationScorer(similarity, scoring.DefaultDifferentiationConfig())
	return NewController(backend, source, scorer, angles, opts), angles
}

func TestGeneratePassesFirstAttempt(t *testing.T) {
	backend := &mockBackend{responses: []string{draftResponse(t, passingContent())}}
	controller, angles := newTestController(backend, testBriefSource(), stubSimilarity{score: 0.05}, DefaultOptions())

	post, err := controller.Generate(context.Background(), testRequest(), "COMPASS")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if post.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", post.Attempts)
	}
	if post.Slug != "park-slope-coffee-guide" {
		t.Errorf("unexpected slug %q", post.Slug)
	}
	if post.TemplateID != "COMPASS" {
		t.Errorf("unexpected template %q", post.TemplateID)
	}
	if post.ModelUsed != "mock-model" {
		t.Errorf("unexpected model %q", post.ModelUsed)
	}
	if post.Differentiation == nil || !post.Differentiation.PassesThreshold {
		t.Error("expected a passing differentiation report")
	}
	if len(post.Warnings) != 0 {
		t.Errorf("passing post should carry no warnings, got %v", post.Warnings)
	}
	if post.ContentHash == "" || post.ID == "" {
		t.Error("finalized post missing hash or id")
	}

	// The consumed angle must be burned for the topic.
	remaining := angles.AvailableAngles("coffee shops", core.IntentInformational)
	for _, angle := range remaining {
		if angle == post.ContentAngle {
			t.Errorf("angle %q still available after use", angle)
		}
	}
}

func TestGenerateRegeneratesThenBestEffort(t *testing.T) {
	// Similarity stays above the ceiling on every attempt, forcing the
	// loop to exhaust its budget and fall back to best effort.
	backend := &mockBackend{responses: []string{draftResponse(t, passingContent())}}
	source := testBriefSource()
	source.refreshed = []core.DataPoint{
		{Fact: "a brand new fact from refresh", Source: "fresh source"},
	}
	controller, _ := newTestController(backend, source, stubSimilarity{score: 0.6, doc: "greenpoint-guide"}, DefaultOptions())

	post, err := controller.Generate(context.Background(), testRequest(), "CATALYST")
	if err != nil {
		t.Fatalf("expected best-effort post, got error: %v", err)
	}

	if post.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", post.Attempts)
	}
	if len(post.Warnings) == 0 {
		t.Error("best-effort post must carry warnings")
	}
	if source.refreshCalls != 2 {
		t.Errorf("expected 2 data refreshes, got %d", source.refreshCalls)
	}

	// Regeneration attempts must ask for a different framing.
	foundAlternative := false
	for _, prompt := range backend.prompts {
		if strings.Contains(prompt, "(alternative take 2)") {
			foundAlternative = true
		}
	}
	if !foundAlternative {
		t.Error("regeneration prompt never requested an alternative take")
	}
}

func TestGenerateFailHardSurfacesThresholdError(t *testing.T) {
	backend := &mockBackend{responses: []string{draftResponse(t, passingContent())}}
	opts := DefaultOptions()
	opts.FailurePolicy = FailHard
	controller, _ := newTestController(backend, testBriefSource(), stubSimilarity{score: 0.6, doc: "greenpoint-guide"}, opts)

	_, err := controller.Generate(context.Background(), testRequest(), "ATLAS")
	var thresholdErr *ThresholdError
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected *ThresholdError, got %v", err)
	}
	if thresholdErr.Attempts != 3 {
		t.Errorf("expected 3 attempts in error, got %d", thresholdErr.Attempts)
	}
	if len(thresholdErr.Report.Issues) == 0 {
		t.Error("threshold error should carry the rejection issues")
	}
}

func TestGenerateAnglesExhausted(t *testing.T) {
	backend := &mockBackend{responses: []string{draftResponse(t, passingContent())}}
	controller, angles := newTestController(backend, testBriefSource(), stubSimilarity{}, DefaultOptions())

	req := testRequest()
	for _, angle := range rotation.AnglesFor(req.SearchIntent) {
		angles.RegisterUsed(req.Topic, angle)
	}

	_, err := controller.Generate(context.Background(), req, "BEACON")
	var exhausted *ExhaustionError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustionError, got %v", err)
	}
	if exhausted.Topic != req.Topic {
		t.Errorf("error names wrong topic %q", exhausted.Topic)
	}
}

func TestGenerateShortContentFailsHard(t *testing.T) {
	backend := &mockBackend{responses: []string{draftResponse(t, "Too short to publish.")}}
	controller, _ := newTestController(backend, testBriefSource(), stubSimilarity{}, DefaultOptions())

	_, err := controller.Generate(context.Background(), testRequest(), "MOSAIC")
	var short *ShortContentError
	if !errors.As(err, &short) {
		t.Fatalf("expected *ShortContentError, got %v", err)
	}
	if short.Minimum != 500 {
		t.Errorf("expected minimum 500, got %d", short.Minimum)
	}
}

func TestGenerateDegradedParseStillFinalizes(t *testing.T) {
	// Raw prose with no recoverable JSON shape; the degraded path should
	// wrap it with a synthesized title and slug.
	backend := &mockBackend{responses: []string{passingContent()}}
	controller, _ := newTestController(backend, testBriefSource(), stubSimilarity{score: 0.05}, DefaultOptions())

	post, err := controller.Generate(context.Background(), testRequest(), "BLUEPRINT")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(post.Title, "Park Slope") {
		t.Errorf("degraded title should include the location, got %q", post.Title)
	}
	if post.Slug == "" {
		t.Error("degraded draft must still get a slug")
	}
}

func TestGenerateBriefBuildErrorPropagates(t *testing.T) {
	backend := &mockBackend{responses: []string{draftResponse(t, passingContent())}}
	source := testBriefSource()
	source.buildErr = errors.New("backend offline")
	controller, _ := newTestController(backend, source, stubSimilarity{}, DefaultOptions())

	_, err := controller.Generate(context.Background(), testRequest(), "COMPASS")
	if err == nil || !strings.Contains(err.Error(), "brief construction failed") {
		t.Fatalf("expected brief construction error, got %v", err)
	}
}
