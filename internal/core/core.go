package core

import "time"

// SearchIntent classifies what a reader is trying to accomplish with a query.
type SearchIntent string

const (
	IntentInformational SearchIntent = "informational"
	IntentTransactional SearchIntent = "transactional"
	IntentNavigational  SearchIntent = "navigational"
	IntentCommercial    SearchIntent = "commercial"
)

// Location identifies the place a post targets. Qualifier and Region are
// optional refinements (e.g. borough and state).
type Location struct {
	Name      string `json:"name"`      // Neighborhood or city name
	Qualifier string `json:"qualifier"` // Borough/district qualifier (optional)
	Region    string `json:"region"`    // State/region (optional)
}

// DataPoint is a single verifiable fact a post is expected to include.
type DataPoint struct {
	Fact     string `json:"fact"`     // The factual claim itself
	Source   string `json:"source"`   // Where the fact came from
	Verified bool   `json:"verified"` // Whether the fact was checked against its source
}

// ContentBrief holds the parameters for one generation attempt.
type ContentBrief struct {
	Topic             string       `json:"topic"`              // Subject of the post
	TargetKeyword     string       `json:"target_keyword"`     // Primary SEO keyword
	SecondaryKeywords []string     `json:"secondary_keywords"` // Supporting keywords
	SearchIntent      SearchIntent `json:"search_intent"`      // Reader intent classification
	Audience          string       `json:"audience"`           // Who the post is written for
	ContentAngle      string       `json:"content_angle"`      // Perspective template; mutated on regeneration
	Differentiators   []string     `json:"differentiators"`    // What sets this post apart from the corpus
	DataPoints        []DataPoint  `json:"data_points"`        // Facts the post must include
	UniqueInsight     string       `json:"unique_insight"`     // One original observation the post must carry
	ContentLength     int          `json:"content_length"`     // Target word count
}

// FAQItem is a question/answer pair appended to a post.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeneratedDraft is the structured shape expected from the LLM backend.
type GeneratedDraft struct {
	Title           string    `json:"title"`
	MetaDescription string    `json:"metaDescription"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	FAQItems        []FAQItem `json:"faqItems"`
}

// DifferentiationReport is the outcome of scoring a candidate against the
// published corpus and its brief. It is derived data and never persisted.
type DifferentiationReport struct {
	UniqueFactCount int      `json:"unique_fact_count"` // Brief data points found in the candidate
	UniquePhrases   []string `json:"unique_phrases"`    // Sample of long sentences from the candidate
	AngleScore      float64  `json:"angle_score"`       // 1 - max similarity vs. corpus
	DataScore       float64  `json:"data_score"`        // Fraction of data points included
	InsightScore    float64  `json:"insight_score"`     // 1.0 if the insight appears, 0.5 otherwise
	OverallScore    float64  `json:"overall_score"`     // Weighted composite in [0,1]
	PassesThreshold bool     `json:"passes_threshold"`  // Overall score meets minimum and no issues
	Issues          []string `json:"issues"`            // Human-readable reasons for failure
	MaxSimilarity   float64  `json:"max_similarity"`    // Highest phrase overlap with any published doc
	MostSimilarTo   string   `json:"most_similar_to"`   // Key of the closest published doc
}

// GeneratedPost is the finalized artifact produced by the generation
// controller. Downstream layers persist and publish it.
type GeneratedPost struct {
	ID              string                 `json:"id"`               // Unique identifier
	Title           string                 `json:"title"`            // Post title
	MetaDescription string                 `json:"meta_description"` // SEO meta description
	Slug            string                 `json:"slug"`             // URL slug
	Content         string                 `json:"content"`          // Full markdown body
	FAQItems        []FAQItem              `json:"faq_items"`        // FAQ section entries
	WordCount       int                    `json:"word_count"`       // Words in content, markup excluded
	ContentHash     string                 `json:"content_hash"`     // Stable digest of the final text
	QualityScore    float64                `json:"quality_score"`    // Structural quality in [0,1]
	Differentiation *DifferentiationReport `json:"differentiation"`  // Final scoring report
	ContentAngle    string                 `json:"content_angle"`    // Angle the post was written from
	TemplateID      string                 `json:"template_id"`      // Structural template used
	ModelUsed       string                 `json:"model_used"`       // Backend/model that produced the content
	Attempts        int                    `json:"attempts"`         // Generation attempts consumed
	GeneratedAt     time.Time              `json:"generated_at"`     // Timestamp of finalization
	Warnings        []string               `json:"warnings"`         // Non-fatal issues (best-effort mode)
}

// PublishedRecord is the registry's identity entry for one published post.
type PublishedRecord struct {
	Slug         string    `json:"slug"`           // Unique slug across both trees
	Location     Location  `json:"location"`       // Location the post targets
	CoverPhotoID string    `json:"cover_photo_id"` // Consumed photo identifier
	PublishedAt  time.Time `json:"published_at"`   // Publication timestamp
	SourceTree   string    `json:"source_tree"`    // Which content tree the file lives in
}

// PhotoRef is a still-image reference from a curated catalog or a search
// provider.
type PhotoRef struct {
	ID          string `json:"id"`          // Opaque provider-scoped identifier
	URL         string `json:"url"`         // Image URL
	Description string `json:"description"` // Alt text / description
	Attribution string `json:"attribution"` // Photographer or source credit
	Rank        int    `json:"rank"`        // Position in provider results
}

// RawDocument is a published document as read off disk, before any parsing.
type RawDocument struct {
	Filename string `json:"filename"` // Base filename, typically date-prefixed
	Path     string `json:"path"`     // Absolute path on disk
	Tree     string `json:"tree"`     // Name of the content tree it came from
	Text     string `json:"text"`     // Raw file contents
}
