package similarity

import (
	"testing"

	"postforge/internal/core"
)

const sampleBody = `---
slug: park-slope-family-guide
---

Park Slope rewards slow mornings. Brownstone stoops fill with neighbors
trading recommendations while Prospect Park absorbs every stroller within
twenty blocks. Seventh Avenue keeps its independent bookstores busy and
the farmers market anchors Saturday routines for most families here.`

func TestScoreAgainstSelfIsOne(t *testing.T) {
	engine := NewEngine()
	engine.LoadExisting([]core.RawDocument{
		{Filename: "2024-06-01-park-slope-family-guide.md", Text: sampleBody},
	})

	score, key := engine.ScoreAgainst(sampleBody)
	if score < 0.999 {
		t.Errorf("self similarity = %v, want 1.0", score)
	}
	if key != "park-slope-family-guide" {
		t.Errorf("most similar key = %q, want park-slope-family-guide", key)
	}
}

func TestScoreAgainstEmptyIndex(t *testing.T) {
	engine := NewEngine()
	score, key := engine.ScoreAgainst("Any candidate text about anything at all goes here")
	if score != 0 || key != "" {
		t.Errorf("empty index gave (%v, %q), want (0, \"\")", score, key)
	}
}

func TestScorePhrasesExactOverlap(t *testing.T) {
	engine := NewEngine()
	engine.Add("existing-doc", []string{
		"the quick brown fox",
		"quick brown fox jumps",
	})

	score, key := engine.ScorePhrases([]string{
		"the quick brown fox",
		"quick brown fox jumps",
	})
	if score != 1.0 {
		t.Errorf("exact phrase overlap = %v, want 1.0", score)
	}
	if key != "existing-doc" {
		t.Errorf("most similar key = %q, want existing-doc", key)
	}
}

func TestScorePhrasesPartialOverlap(t *testing.T) {
	engine := NewEngine()
	engine.Add("doc-a", []string{"alpha beta gamma delta", "beta gamma delta epsilon"})

	score, _ := engine.ScorePhrases([]string{
		"alpha beta gamma delta",
		"totally different phrase here",
	})
	if score != 0.5 {
		t.Errorf("partial overlap = %v, want 0.5", score)
	}
}

func TestTieBreakIsDeterministic(t *testing.T) {
	phrases := []string{"shared phrase number one", "shared phrase number two"}

	// Load in both orders; sorted indexing must give the same winner.
	first := NewEngine()
	first.Add("zeta-doc", phrases)
	first.Add("alpha-doc", phrases)

	second := NewEngine()
	second.Add("alpha-doc", phrases)
	second.Add("zeta-doc", phrases)

	_, keyFirst := first.ScorePhrases(phrases)
	_, keySecond := second.ScorePhrases(phrases)
	if keyFirst != keySecond {
		t.Errorf("tie-break differs by load order: %q vs %q", keyFirst, keySecond)
	}
	if keyFirst != "alpha-doc" {
		t.Errorf("tie-break winner = %q, want alpha-doc", keyFirst)
	}
}

func TestLogicalKey(t *testing.T) {
	cases := map[string]string{
		"2024-06-01-park-slope.md": "park-slope",
		"park-slope.md":            "park-slope",
		"2023-01-15-astoria-dining-guide.md": "astoria-dining-guide",
	}
	for in, want := range cases {
		if got := LogicalKey(in); got != want {
			t.Errorf("LogicalKey(%q) = %q, want %q", in, got, want)
		}
	}
}
