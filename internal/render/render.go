// Package render writes finalized posts to the content tree as markdown
// files with a YAML frontmatter header.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"postforge/internal/core"
)

// GeneratorMarker identifies files produced by this system; the registry
// sync uses it to recognize our documents among externally-authored ones.
const GeneratorMarker = "postforge"

// Frontmatter is the metadata header written ahead of the post body.
type Frontmatter struct {
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Slug            string   `yaml:"slug"`
	Date            string   `yaml:"date"`
	Neighborhood    string   `yaml:"neighborhood,omitempty"`
	Borough         string   `yaml:"borough,omitempty"`
	State           string   `yaml:"state,omitempty"`
	CoverPhotoID    string   `yaml:"cover_photo_id,omitempty"`
	CoverPhotoURL   string   `yaml:"cover_photo_url,omitempty"`
	CoverPhotoCred  string   `yaml:"cover_photo_credit,omitempty"`
	Template        string   `yaml:"template,omitempty"`
	Keywords        []string `yaml:"keywords,omitempty"`
	Generator       string   `yaml:"generator"`
	ContentHash     string   `yaml:"content_hash,omitempty"`
	QualityScore    float64  `yaml:"quality_score,omitempty"`
	OverallScore    float64  `yaml:"differentiation_score,omitempty"`
}

// WritePost renders the post to <dir>/<date>-<slug>.md and returns the
// written path.
func WritePost(dir string, post *core.GeneratedPost, photo core.PhotoRef, location core.Location) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	date := post.GeneratedAt
	if date.IsZero() {
		date = time.Now().UTC()
	}

	fm := Frontmatter{
		Title:          post.Title,
		Description:    post.MetaDescription,
		Slug:           post.Slug,
		Date:           date.Format("2006-01-02"),
		Neighborhood:   location.Name,
		Borough:        location.Qualifier,
		State:          location.Region,
		CoverPhotoID:   photo.ID,
		CoverPhotoURL:  photo.URL,
		CoverPhotoCred: photo.Attribution,
		Template:       post.TemplateID,
		Generator:      GeneratorMarker,
		ContentHash:    post.ContentHash,
		QualityScore:   post.QualityScore,
	}
	if post.Differentiation != nil {
		fm.OverallScore = post.Differentiation.OverallScore
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(post.Content)

	if len(post.FAQItems) > 0 {
		b.WriteString("\n\n## Frequently Asked Questions\n")
		for _, item := range post.FAQItems {
			b.WriteString(fmt.Sprintf("\n### %s\n\n%s\n", item.Question, item.Answer))
		}
	}

	filename := fmt.Sprintf("%s-%s.md", date.Format("2006-01-02"), post.Slug)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write post file: %w", err)
	}
	return path, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts arbitrary text into a lower-case hyphenated URL slug.
func Slugify(text string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}
