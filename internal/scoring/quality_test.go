package scoring

import (
	"strings"
	"testing"

	"postforge/internal/core"
)

// buildCandidate assembles markdown with the requested structural features
// and at least the requested word count.
func buildCandidate(words, h2, h3, bullets int, extras ...string) string {
	var b strings.Builder
	for i := 0; i < h2; i++ {
		b.WriteString("## Section heading\n\n")
	}
	for i := 0; i < h3; i++ {
		b.WriteString("### Subsection heading\n\n")
	}
	for i := 0; i < bullets; i++ {
		b.WriteString("- bullet item\n")
	}
	b.WriteString("\n")
	for _, extra := range extras {
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
	filler := "neighborhood streets carry steady weekend foot traffic "
	for fingerprintWords(b.String()) < words {
		b.WriteString(filler)
	}
	return b.String()
}

func fingerprintWords(s string) int {
	return len(strings.Fields(s))
}

func TestQualityFullScore(t *testing.T) {
	brief := core.ContentBrief{TargetKeyword: "Park Slope guide"}
	candidate := buildCandidate(2200, 4, 3, 5,
		"Park Slope guide readers want one worked example.",
		"Each step below takes ten minutes.")

	if score := EvaluateQuality(candidate, brief); score != 1.0 {
		t.Errorf("quality = %v, want 1.0", score)
	}
}

func TestQualityLengthTiers(t *testing.T) {
	brief := core.ContentBrief{}
	cases := []struct {
		words int
		want  float64
	}{
		{2200, 0.3},
		{1600, 0.2},
		{1100, 0.1},
		{400, 0.0},
	}
	for _, tc := range cases {
		candidate := buildCandidate(tc.words, 0, 0, 0)
		if score := EvaluateQuality(candidate, brief); score != tc.want {
			t.Errorf("quality(%d words) = %v, want %v", tc.words, score, tc.want)
		}
	}
}

func TestQualityNeverExceedsCap(t *testing.T) {
	brief := core.ContentBrief{TargetKeyword: "guide"}
	candidate := buildCandidate(5000, 10, 10, 20,
		"example example example", "step step step", "guide")

	if score := EvaluateQuality(candidate, brief); score > 1.0 {
		t.Errorf("quality = %v, exceeds cap", score)
	}
}

func TestQualityEmptyInput(t *testing.T) {
	if score := EvaluateQuality("", core.ContentBrief{}); score != 0 {
		t.Errorf("quality of empty input = %v, want 0", score)
	}
}

func TestQualityKeywordVerbatim(t *testing.T) {
	brief := core.ContentBrief{TargetKeyword: "Astoria dining"}
	with := EvaluateQuality("Astoria dining options keep expanding.", brief)
	without := EvaluateQuality("astoria DINING options keep expanding.", brief)
	if with <= without {
		t.Errorf("verbatim keyword not rewarded: with=%v without=%v", with, without)
	}
}
