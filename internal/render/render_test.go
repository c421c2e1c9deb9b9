package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postforge/internal/core"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"A Local's Guide to Park Slope", "a-local-s-guide-to-park-slope"},
		{"Park Slope, Brooklyn NY", "park-slope-brooklyn-ny"},
		{"  already-slugged  ", "already-slugged"},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWritePost(t *testing.T) {
	dir := t.TempDir()
	post := &core.GeneratedPost{
		Title:           "A Local's Guide to Park Slope Coffee",
		MetaDescription: "Where to actually get coffee.",
		Slug:            "park-slope-coffee-guide",
		Content:         "## The short version\n\nGood coffee everywhere.",
		FAQItems: []core.FAQItem{
			{Question: "Is it expensive?", Answer: "Less than you would think."},
		},
		TemplateID:   "COMPASS",
		ContentHash:  "abc123",
		QualityScore: 0.8,
		Differentiation: &core.DifferentiationReport{
			OverallScore: 0.82,
		},
		GeneratedAt: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
	photo := core.PhotoRef{
		ID:          "curated-city-01",
		URL:         "https://example.com/photo.jpg",
		Attribution: "Pexels curated",
	}
	location := core.Location{Name: "Park Slope", Qualifier: "Brooklyn", Region: "NY"}

	path, err := WritePost(dir, post, photo, location)
	if err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}

	if filepath.Base(path) != "2026-08-15-park-slope-coffee-guide.md" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written post: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"slug: park-slope-coffee-guide",
		"neighborhood: Park Slope",
		"borough: Brooklyn",
		"state: NY",
		"cover_photo_id: curated-city-01",
		"generator: postforge",
		"template: COMPASS",
		"## Frequently Asked Questions",
		"### Is it expensive?",
		"Good coffee everywhere.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("written post missing %q", want)
		}
	}

	if !strings.HasPrefix(text, "---\n") {
		t.Error("post must start with a frontmatter fence")
	}
}

func TestWritePostNoFAQSection(t *testing.T) {
	dir := t.TempDir()
	post := &core.GeneratedPost{
		Title:       "Short Post",
		Slug:        "short-post",
		Content:     "Body.",
		GeneratedAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	path, err := WritePost(dir, post, core.PhotoRef{}, core.Location{Name: "Astoria"})
	if err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Frequently Asked Questions") {
		t.Error("FAQ section should be omitted when there are no items")
	}
}
