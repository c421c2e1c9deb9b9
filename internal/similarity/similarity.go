package similarity

import (
	"regexp"
	"sort"
	"strings"

	"postforge/internal/core"
	"postforge/internal/fingerprint"
)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// Engine holds one phrase fingerprint per published document and scores new
// candidates against all of them.
type Engine struct {
	keys    []string
	phrases map[string]map[string]struct{}
}

// NewEngine creates an empty similarity engine.
func NewEngine() *Engine {
	return &Engine{
		phrases: make(map[string]map[string]struct{}),
	}
}

// LoadExisting fingerprints every raw document and indexes it under its
// logical key. Documents are indexed in sorted key order so that ties in
// ScoreAgainst resolve the same way on every run.
func (e *Engine) LoadExisting(docs []core.RawDocument) {
	for _, doc := range docs {
		e.Add(LogicalKey(doc.Filename), fingerprint.ExtractPhrases(doc.Text))
	}
}

// Add indexes a phrase set under the given key, replacing any previous
// entry for that key.
func (e *Engine) Add(key string, phrases []string) {
	if _, exists := e.phrases[key]; !exists {
		e.keys = append(e.keys, key)
		sort.Strings(e.keys)
	}
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[p] = struct{}{}
	}
	e.phrases[key] = set
}

// Size returns the number of indexed documents.
func (e *Engine) Size() int {
	return len(e.keys)
}

// ScoreAgainst fingerprints the candidate text and returns the maximum
// similarity against any indexed document along with that document's key.
// An empty index yields (0, "").
func (e *Engine) ScoreAgainst(candidate string) (float64, string) {
	return e.ScorePhrases(fingerprint.ExtractPhrases(candidate))
}

// ScorePhrases scores an already-extracted candidate phrase sequence. The
// similarity against each document is |candidate ∩ stored| / max(|candidate|, 1).
func (e *Engine) ScorePhrases(candidate []string) (float64, string) {
	set := make(map[string]struct{}, len(candidate))
	for _, p := range candidate {
		set[p] = struct{}{}
	}

	denominator := len(set)
	if denominator < 1 {
		denominator = 1
	}

	best := 0.0
	bestKey := ""
	for _, key := range e.keys {
		overlap := 0
		for p := range set {
			if _, ok := e.phrases[key][p]; ok {
				overlap++
			}
		}
		score := float64(overlap) / float64(denominator)
		if score > best {
			best = score
			bestKey = key
		}
	}
	return best, bestKey
}

// LogicalKey strips a filename's embedded date prefix and extension to
// recover the document's identity (e.g. "2024-06-01-park-slope.md" →
// "park-slope").
func LogicalKey(filename string) string {
	key := datePrefix.ReplaceAllString(filename, "")
	if i := strings.LastIndex(key, "."); i > 0 {
		key = key[:i]
	}
	return key
}
