package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"postforge/internal/core"
	"postforge/internal/logger"
)

// OpenverseProvider implements Provider using the Openverse API, which
// requires no API key for anonymous read access.
type OpenverseProvider struct {
	client    *http.Client
	baseURL   string
	rateLimit time.Duration
	lastCall  time.Time
}

// NewOpenverseProvider creates a new Openverse photo provider
func NewOpenverseProvider() *OpenverseProvider {
	return &OpenverseProvider{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   "https://api.openverse.org/v1",
		rateLimit: time.Second, // Anonymous tier is tightly rate limited
	}
}

// GetName returns the name of this provider
func (o *OpenverseProvider) GetName() string {
	return "Openverse"
}

// openverseResponse mirrors the fields we use from the image search endpoint
type openverseResponse struct {
	Results []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Attribution string `json:"attribution"`
	} `json:"results"`
}

// Search performs an image search against the Openverse API
func (o *OpenverseProvider) Search(ctx context.Context, query string, limit int) ([]core.PhotoRef, error) {
	if elapsed := time.Since(o.lastCall); elapsed < o.rateLimit {
		time.Sleep(o.rateLimit - elapsed)
	}
	o.lastCall = time.Now()

	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("license_type", "commercial")

	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/images/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openverse: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openverse search returned status %d", resp.StatusCode)
	}

	var parsed openverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode openverse response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return nil, ErrNoPhotos
	}

	refs := make([]core.PhotoRef, 0, len(parsed.Results))
	for i, result := range parsed.Results {
		refs = append(refs, core.PhotoRef{
			ID:          "openverse-" + result.ID,
			URL:         result.URL,
			Description: result.Title,
			Attribution: result.Attribution,
			Rank:        i + 1,
		})
	}

	logger.Debug("openverse search complete", "query", query, "results", len(refs))
	return refs, nil
}
