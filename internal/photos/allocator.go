package photos

import (
	"context"
	"fmt"
	"math/rand"

	"postforge/internal/core"
	"postforge/internal/logger"
)

// UsageChecker reports whether a photo has already been assigned to a
// published post. The registry satisfies this; taking an interface here
// keeps the dependency pointing registry -> photos, not both ways.
type UsageChecker interface {
	IsPhotoConsumed(id string) bool
}

// Request describes what the allocator should look for.
type Request struct {
	Query        string // search query when a provider is configured
	CategoryHint string // preferred curated bucket, e.g. "residential"
}

// Allocator picks a cover photo that has never been used before. It tries
// the configured search provider first, then walks the curated buckets,
// and only hands out a random non-blocked photo as a last resort.
type Allocator struct {
	checker     UsageChecker
	provider    Provider
	validator   *Validator
	searchLimit int
}

// NewAllocator creates an allocator. provider and validator may be nil;
// a nil provider skips straight to the curated buckets.
func NewAllocator(checker UsageChecker, provider Provider, validator *Validator) *Allocator {
	return &Allocator{
		checker:     checker,
		provider:    provider,
		validator:   validator,
		searchLimit: 15,
	}
}

// Allocate returns an unused, non-blocked photo for the request. The
// returned photo is not reserved; the caller records it in the registry
// once the post is actually written.
func (a *Allocator) Allocate(ctx context.Context, req Request) (core.PhotoRef, error) {
	if ref, ok := a.fromProvider(ctx, req); ok {
		return ref, nil
	}

	buckets := a.bucketOrder(req.CategoryHint)
	for _, bucket := range buckets {
		for _, ref := range Catalog(bucket) {
			if a.usable(ref.ID) {
				logger.Debug("allocated curated photo", "id", ref.ID, "bucket", bucket)
				return ref, nil
			}
		}
	}

	return a.lastResort()
}

// fromProvider searches the configured provider and returns the first
// usable, validated result. Provider failures degrade to the curated
// buckets rather than failing the allocation.
func (a *Allocator) fromProvider(ctx context.Context, req Request) (core.PhotoRef, bool) {
	if a.provider == nil || req.Query == "" {
		return core.PhotoRef{}, false
	}

	refs, err := a.provider.Search(ctx, req.Query, a.searchLimit)
	if err != nil {
		logger.Warn("photo search failed, falling back to curated buckets",
			"provider", a.provider.GetName(), "error", err)
		return core.PhotoRef{}, false
	}

	for _, ref := range refs {
		if !a.usable(ref.ID) {
			continue
		}
		if a.validator != nil {
			validated, err := a.validator.Validate(ctx, ref)
			if err != nil {
				logger.Debug("skipping photo that failed validation", "id", ref.ID, "error", err)
				continue
			}
			ref = validated
		}
		return ref, true
	}
	return core.PhotoRef{}, false
}

// lastResort picks a random non-blocked photo from any curated bucket,
// ignoring the used-set. Duplicated cover photos are bad but publishable;
// an empty cover slot is not.
func (a *Allocator) lastResort() (core.PhotoRef, error) {
	var pool []core.PhotoRef
	for _, category := range CatalogCategories() {
		for _, ref := range Catalog(category) {
			if !IsBlocked(ref.ID) {
				pool = append(pool, ref)
			}
		}
	}
	if len(pool) == 0 {
		return core.PhotoRef{}, ErrCatalogExhausted
	}

	ref := pool[rand.Intn(len(pool))]
	logger.Warn("all curated photos consumed, reusing one at random", "id", ref.ID)
	return ref, nil
}

func (a *Allocator) bucketOrder(hint string) []string {
	buckets := make([]string, 0, len(fallbackBuckets)+1)
	seen := make(map[string]bool)
	if hint != "" && Catalog(hint) != nil {
		buckets = append(buckets, hint)
		seen[hint] = true
	}
	for _, bucket := range fallbackBuckets {
		if !seen[bucket] {
			buckets = append(buckets, bucket)
			seen[bucket] = true
		}
	}
	return buckets
}

func (a *Allocator) usable(id string) bool {
	if IsBlocked(id) {
		return false
	}
	if a.checker != nil && a.checker.IsPhotoConsumed(id) {
		return false
	}
	return true
}

// Describe summarizes the allocator configuration for log output.
func (a *Allocator) Describe() string {
	if a.provider == nil {
		return "curated buckets only"
	}
	return fmt.Sprintf("provider %s with curated fallback", a.provider.GetName())
}
