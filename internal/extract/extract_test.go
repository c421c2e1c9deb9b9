package extract

import (
	"errors"
	"testing"
)

type payload struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func TestObjectFencedBlock(t *testing.T) {
	raw := "Here is the article you asked for:\n```json\n{\"title\": \"Guide\", \"slug\": \"guide\"}\n```\nLet me know if you need changes."

	var p payload
	if err := Object(raw, &p); err != nil {
		t.Fatalf("Object() error: %v", err)
	}
	if p.Title != "Guide" || p.Slug != "guide" {
		t.Errorf("parsed %+v", p)
	}
}

func TestObjectBareBraces(t *testing.T) {
	raw := "Sure! {\"title\": \"Guide\", \"slug\": \"guide\"} Hope that helps."

	var p payload
	if err := Object(raw, &p); err != nil {
		t.Fatalf("Object() error: %v", err)
	}
	if p.Title != "Guide" {
		t.Errorf("parsed %+v", p)
	}
}

func TestObjectWholeText(t *testing.T) {
	raw := "  {\"title\": \"Guide\", \"slug\": \"guide\"}  "

	var p payload
	if err := Object(raw, &p); err != nil {
		t.Fatalf("Object() error: %v", err)
	}
	if p.Slug != "guide" {
		t.Errorf("parsed %+v", p)
	}
}

func TestObjectFailureIsTyped(t *testing.T) {
	var p payload
	err := Object("no structured data anywhere in this reply", &p)
	if err == nil {
		t.Fatal("expected extraction error")
	}

	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("error is %T, want *extract.Error", err)
	}
	if len(extractErr.Attempts) == 0 {
		t.Error("error does not record attempted patterns")
	}
}

func TestObjectMalformedEverywhere(t *testing.T) {
	raw := "```json\n{\"title\": broken}\n```"

	var p payload
	err := Object(raw, &p)

	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("error is %T, want *extract.Error", err)
	}
	if len(extractErr.Attempts) != 3 {
		t.Errorf("attempts = %v, want all three patterns tried", extractErr.Attempts)
	}
}
