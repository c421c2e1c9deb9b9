package photos

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"postforge/internal/core"
	"postforge/internal/logger"
)

// Validator checks that provider-returned photo URLs actually resolve
// before they are trusted. Some providers hand back an HTML landing page
// instead of the image itself; those are resolved through their og:image
// meta tag.
type Validator struct {
	client *http.Client
}

// NewValidator creates a validator with the given request timeout.
func NewValidator(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Validator{
		client: &http.Client{Timeout: timeout},
	}
}

// Validate confirms the photo's URL is reachable and returns the ref,
// with its URL rewritten to the real image when the original pointed at
// an HTML page.
func (v *Validator) Validate(ctx context.Context, ref core.PhotoRef) (core.PhotoRef, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", ref.URL, nil)
	if err != nil {
		return ref, fmt.Errorf("invalid photo URL %q: %w", ref.URL, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return ref, fmt.Errorf("photo URL unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		// Some CDNs reject HEAD; retry as GET.
		return v.validateWithGet(ctx, ref)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ref, fmt.Errorf("photo URL returned status %d", resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return v.resolveImagePage(ctx, ref)
	}
	return ref, nil
}

func (v *Validator) validateWithGet(ctx context.Context, ref core.PhotoRef) (core.PhotoRef, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", ref.URL, nil)
	if err != nil {
		return ref, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return ref, fmt.Errorf("photo URL unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ref, fmt.Errorf("photo URL returned status %d", resp.StatusCode)
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return v.resolveImagePage(ctx, ref)
	}
	return ref, nil
}

// resolveImagePage fetches an HTML landing page and extracts its og:image
// URL so the artifact references the image, not the page.
func (v *Validator) resolveImagePage(ctx context.Context, ref core.PhotoRef) (core.PhotoRef, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", ref.URL, nil)
	if err != nil {
		return ref, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return ref, fmt.Errorf("photo page unreachable: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ref, fmt.Errorf("failed to parse photo page: %w", err)
	}

	imageURL, exists := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !exists || imageURL == "" {
		return ref, fmt.Errorf("photo page at %q exposes no og:image", ref.URL)
	}

	logger.Debug("resolved photo page to image", "page", ref.URL, "image", imageURL)
	ref.URL = imageURL
	return ref, nil
}
