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

// PexelsProvider implements Provider using the Pexels search API
type PexelsProvider struct {
	apiKey    string
	client    *http.Client
	baseURL   string
	rateLimit time.Duration
	lastCall  time.Time
}

// NewPexelsProvider creates a new Pexels photo provider
func NewPexelsProvider(apiKey string) *PexelsProvider {
	return &PexelsProvider{
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   "https://api.pexels.com/v1",
		rateLimit: 200 * time.Millisecond,
	}
}

// GetName returns the name of this provider
func (p *PexelsProvider) GetName() string {
	return "Pexels"
}

// pexelsResponse mirrors the fields we use from the search endpoint
type pexelsResponse struct {
	Photos []struct {
		ID           int64  `json:"id"`
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Search performs a photo search against the Pexels API
func (p *PexelsProvider) Search(ctx context.Context, query string, limit int) ([]core.PhotoRef, error) {
	if elapsed := time.Since(p.lastCall); elapsed < p.rateLimit {
		time.Sleep(p.rateLimit - elapsed)
	}
	p.lastCall = time.Now()

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: pexels: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search returned status %d", resp.StatusCode)
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode pexels response: %w", err)
	}

	if len(parsed.Photos) == 0 {
		return nil, ErrNoPhotos
	}

	refs := make([]core.PhotoRef, 0, len(parsed.Photos))
	for i, photo := range parsed.Photos {
		refs = append(refs, core.PhotoRef{
			ID:          fmt.Sprintf("pexels-%d", photo.ID),
			URL:         photo.Src.Large,
			Description: photo.Alt,
			Attribution: fmt.Sprintf("Photo by %s on Pexels", photo.Photographer),
			Rank:        i + 1,
		})
	}

	logger.Debug("pexels search complete", "query", query, "results", len(refs))
	return refs, nil
}
