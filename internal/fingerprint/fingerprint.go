package fingerprint

import (
	"regexp"
	"strings"
)

// PhraseLength is the number of tokens in each extracted phrase window.
const PhraseLength = 4

// minTokenLength filters out short glue words; only tokens strictly longer
// than this survive normalization.
const minTokenLength = 3

var markupChars = regexp.MustCompile("[#*`>\\[\\]()!_|~-]")

// ExtractPhrases normalizes text and returns every contiguous window of
// PhraseLength tokens, joined by single spaces, in order of occurrence.
// Duplicate windows are kept; callers that need a set collapse them.
// Input with fewer than PhraseLength meaningful tokens yields nil.
func ExtractPhrases(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) < PhraseLength {
		return nil
	}

	phrases := make([]string, 0, len(tokens)-PhraseLength+1)
	for i := 0; i+PhraseLength <= len(tokens); i++ {
		phrases = append(phrases, strings.Join(tokens[i:i+PhraseLength], " "))
	}
	return phrases
}

// Tokenize lower-cases the text, strips a leading frontmatter block and
// markdown control characters, and splits on whitespace, keeping only
// tokens longer than three characters.
func Tokenize(text string) []string {
	body := StripFrontmatter(text)
	normalized := markupChars.ReplaceAllString(strings.ToLower(body), " ")

	var tokens []string
	for _, token := range strings.Fields(normalized) {
		if len(token) > minTokenLength {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// CountWords returns the number of words in the text with frontmatter and
// markdown markup excluded.
func CountWords(text string) int {
	body := StripFrontmatter(text)
	return len(strings.Fields(markupChars.ReplaceAllString(body, " ")))
}

// StripFrontmatter removes a leading "---" delimited frontmatter block, if
// present, and returns the remaining body.
func StripFrontmatter(text string) string {
	trimmed := strings.TrimLeft(text, "\n\r \t")
	if !strings.HasPrefix(trimmed, "---") {
		return text
	}
	rest := trimmed[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return text
	}
	body := rest[end+len("\n---"):]
	// Drop the remainder of the closing delimiter line.
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return body
}
