package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"postforge/internal/core"
)

// Score weighting: angle uniqueness is weighted highest because structural
// copying is the cheapest way for a model to look novel; data-point
// inclusion is externally verifiable so it comes second; the insight check
// is a weak substring proxy and is weighted lowest.
const (
	angleWeight   = 0.40
	dataWeight    = 0.35
	insightWeight = 0.25
)

// matchPrefixLength is how much of a fact or insight must appear verbatim
// (case-insensitively) in the candidate to count as included.
const matchPrefixLength = 30

// maxSampledPhrases caps how many representative sentences are attached to
// a report.
const maxSampledPhrases = 5

// minSampledSentenceLength filters out trivial sentences from the sample.
const minSampledSentenceLength = 50

var sentenceEnders = regexp.MustCompile(`[.!?]+`)

// SimilarityScorer is the slice of the similarity engine the scorer needs.
type SimilarityScorer interface {
	ScoreAgainst(candidate string) (float64, string)
}

// DifferentiationConfig holds the tunable thresholds for differentiation
// scoring.
type DifferentiationConfig struct {
	MaxSimilarity   float64 // Ceiling on phrase overlap with any published doc
	MinUniqueFacts  int     // Minimum brief data points that must appear
	MinOverallScore float64 // Pass threshold for the composite score
}

// DefaultDifferentiationConfig returns the default thresholds.
func DefaultDifferentiationConfig() DifferentiationConfig {
	return DifferentiationConfig{
		MaxSimilarity:   0.3,
		MinUniqueFacts:  3,
		MinOverallScore: 0.75,
	}
}

// DifferentiationScorer combines corpus similarity, required-fact coverage,
// and insight presence into one pass/fail report.
type DifferentiationScorer struct {
	engine SimilarityScorer
	config DifferentiationConfig
}

// NewDifferentiationScorer creates a scorer over the given similarity engine.
func NewDifferentiationScorer(engine SimilarityScorer, config DifferentiationConfig) *DifferentiationScorer {
	return &DifferentiationScorer{engine: engine, config: config}
}

// Evaluate scores candidate text against its brief and the published corpus.
func (s *DifferentiationScorer) Evaluate(candidate string, brief core.ContentBrief) core.DifferentiationReport {
	maxSimilarity, mostSimilar := s.engine.ScoreAgainst(candidate)
	lowered := strings.ToLower(candidate)

	uniqueFactCount := 0
	for _, point := range brief.DataPoints {
		if matchesLead(lowered, point.Fact) {
			uniqueFactCount++
		}
	}

	angleScore := 1.0 - maxSimilarity
	dataScore := float64(uniqueFactCount) / float64(max(len(brief.DataPoints), 1))
	insightScore := 0.5
	if matchesLead(lowered, brief.UniqueInsight) {
		insightScore = 1.0
	}

	overall := angleWeight*angleScore + dataWeight*dataScore + insightWeight*insightScore

	var issues []string
	if maxSimilarity > s.config.MaxSimilarity {
		issues = append(issues, fmt.Sprintf(
			"content is %.0f%% similar to %q, above the %.0f%% ceiling",
			maxSimilarity*100, mostSimilar, s.config.MaxSimilarity*100))
	}
	if uniqueFactCount < s.config.MinUniqueFacts {
		issues = append(issues, fmt.Sprintf(
			"only %d of %d brief data points appear in the content, minimum is %d",
			uniqueFactCount, len(brief.DataPoints), s.config.MinUniqueFacts))
	}

	return core.DifferentiationReport{
		UniqueFactCount: uniqueFactCount,
		UniquePhrases:   samplePhrases(candidate),
		AngleScore:      angleScore,
		DataScore:       dataScore,
		InsightScore:    insightScore,
		OverallScore:    overall,
		PassesThreshold: overall >= s.config.MinOverallScore && len(issues) == 0,
		Issues:          issues,
		MaxSimilarity:   maxSimilarity,
		MostSimilarTo:   mostSimilar,
	}
}

// matchesLead reports whether the leading chunk of needle appears in the
// lower-cased haystack. This is a cheap heuristic; a similarity-threshold
// matcher can replace it without changing the scoring shape.
func matchesLead(loweredHaystack, needle string) bool {
	lead := strings.ToLower(strings.TrimSpace(needle))
	if len(lead) > matchPrefixLength {
		lead = lead[:matchPrefixLength]
	}
	return strings.Contains(loweredHaystack, lead)
}

// samplePhrases returns up to five sentences longer than fifty characters
// as a representative sample of the candidate's own phrasing.
func samplePhrases(candidate string) []string {
	var sample []string
	for _, sentence := range sentenceEnders.Split(candidate, -1) {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) > minSampledSentenceLength {
			sample = append(sample, trimmed)
			if len(sample) == maxSampledPhrases {
				break
			}
		}
	}
	return sample
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
