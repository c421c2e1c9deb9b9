package scoring

import (
	"regexp"
	"strings"

	"postforge/internal/core"
	"postforge/internal/fingerprint"
)

// Quality scoring is an additive surface-pattern point system, capped at
// 1.0. It checks structure and length, not meaning — a post can score well
// while saying little. That crudeness is a known limitation of this pass;
// semantic judgment belongs to the differentiation scorer and the model
// prompt, not here.

var (
	h2Headers   = regexp.MustCompile(`(?m)^##\s`)
	h3Headers   = regexp.MustCompile(`(?m)^###\s`)
	bulletLines = regexp.MustCompile(`(?m)^\s*[-*]\s`)
)

// EvaluateQuality returns a structural quality score in [0,1] for the
// candidate text. Points accumulate as integer tenths so a full score is
// exactly 1.0, not a float-sum approximation of it.
func EvaluateQuality(candidate string, brief core.ContentBrief) float64 {
	points := 0

	// Length tiers, mutually exclusive
	switch wordCount := fingerprint.CountWords(candidate); {
	case wordCount >= 2000:
		points += 3
	case wordCount >= 1500:
		points += 2
	case wordCount >= 1000:
		points++
	}

	if len(h2Headers.FindAllString(candidate, -1)) >= 3 {
		points += 2
	}
	if len(h3Headers.FindAllString(candidate, -1)) >= 2 {
		points++
	}
	if len(bulletLines.FindAllString(candidate, -1)) >= 3 {
		points++
	}

	if brief.TargetKeyword != "" && strings.Contains(candidate, brief.TargetKeyword) {
		points++
	}

	lowered := strings.ToLower(candidate)
	if strings.Contains(lowered, "example") {
		points++
	}
	if strings.Contains(lowered, "step") {
		points++
	}

	if points > 10 {
		points = 10
	}
	return float64(points) / 10
}
