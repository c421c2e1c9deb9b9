// Package extract pulls structured data out of raw LLM output, which may
// arrive fenced, wrapped in prose, or as bare JSON.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Error reports that no extraction pattern produced valid JSON. Callers
// must have a fallback artifact ready when they see it.
type Error struct {
	Attempts []string
	LastErr  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("no JSON object found after trying %s: %v",
		strings.Join(e.Attempts, ", "), e.LastErr)
}

func (e *Error) Unwrap() error {
	return e.LastErr
}

// Object attempts to unmarshal a JSON object embedded in raw text into v,
// trying a fenced ```json block, then the outermost brace-delimited span,
// then the whole text. It returns *Error when every pattern fails.
func Object(raw string, v any) error {
	var lastErr error
	attempts := []string{}

	if match := fencedBlock.FindStringSubmatch(raw); match != nil {
		attempts = append(attempts, "fenced block")
		if err := json.Unmarshal([]byte(match[1]), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		attempts = append(attempts, "brace span")
		if err := json.Unmarshal([]byte(raw[start:end+1]), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	attempts = append(attempts, "whole text")
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), v); err == nil {
		return nil
	} else {
		lastErr = err
	}

	return &Error{Attempts: attempts, LastErr: lastErr}
}
