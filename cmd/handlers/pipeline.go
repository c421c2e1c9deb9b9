package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"postforge/internal/briefs"
	"postforge/internal/config"
	"postforge/internal/core"
	"postforge/internal/corpus"
	"postforge/internal/generator"
	"postforge/internal/llm"
	"postforge/internal/logger"
	"postforge/internal/photos"
	"postforge/internal/registry"
	"postforge/internal/render"
	"postforge/internal/rotation"
	"postforge/internal/scoring"
	"postforge/internal/similarity"
	"postforge/internal/store"
)

// pipeline bundles everything a publication run needs: the registry,
// the similarity engine over the existing corpus, the LLM backend, and
// the generation controller.
type pipeline struct {
	cfg        *config.Config
	registry   *registry.Registry
	archive    *store.Store
	backend    llm.Backend
	angles     *rotation.AngleTracker
	controller *generator.Controller
	allocator  *photos.Allocator
}

// publishResult reports one item's outcome.
type publishResult struct {
	Post    *core.GeneratedPost
	Photo   core.PhotoRef
	Path    string
	Skipped string // non-empty reason when nothing was generated
}

// buildPipeline wires a full publication pipeline from configuration.
// The registry is synced against the content trees and the similarity
// engine is loaded from the same scan before anything generates.
func buildPipeline(ctx context.Context, strict bool) (*pipeline, error) {
	cfg := config.Get()

	reg, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	trees := contentTrees(cfg)
	if err := reg.Sync(trees); err != nil {
		return nil, fmt.Errorf("registry sync failed: %w", err)
	}

	docs, err := corpus.ReadTrees(trees)
	if err != nil {
		return nil, fmt.Errorf("failed to read content trees: %w", err)
	}
	engine := similarity.NewEngine()
	engine.LoadExisting(docs)
	logger.Info("similarity index loaded", "documents", engine.Size())

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to open post archive: %w", err)
	}

	angles := rotation.NewAngleTracker()
	angles.Restore(reg.UsedAngles())

	scorer := scoring.NewDifferentiationScorer(engine, scoring.DifferentiationConfig{
		MaxSimilarity:   cfg.Generation.MaxSimilarity,
		MinUniqueFacts:  cfg.Generation.MinUniqueFacts,
		MinOverallScore: cfg.Generation.MinOverallScore,
	})

	opts := generator.Options{
		MaxAttempts:      cfg.Generation.MaxAttempts,
		MinContentLength: cfg.Generation.MinContentLength,
		FailurePolicy:    generator.ReturnBestEffort,
	}
	if strict {
		opts.FailurePolicy = generator.FailHard
	}

	controller := generator.NewController(backend, briefs.NewBuilder(backend), scorer, angles, opts)

	allocator, err := newAllocator(cfg, reg)
	if err != nil {
		return nil, err
	}
	logger.Info("photo allocation ready", "mode", allocator.Describe())

	return &pipeline{
		cfg:        cfg,
		registry:   reg,
		archive:    archive,
		backend:    backend,
		angles:     angles,
		controller: controller,
		allocator:  allocator,
	}, nil
}

// Close releases pipeline resources.
func (p *pipeline) Close() {
	if p.archive != nil {
		if err := p.archive.Close(); err != nil {
			logger.Error("Failed to close post archive", err)
		}
	}
}

// publish runs one request end to end: generate, pick a photo, write the
// file, and commit identity to the registry. Identity is only committed
// after the file is on disk.
func (p *pipeline) publish(ctx context.Context, req briefs.Request, categoryHint string) (*publishResult, error) {
	if p.registry.HasLocation(req.Location) {
		return &publishResult{
			Skipped: fmt.Sprintf("location %q already has a published post", req.Location.Name),
		}, nil
	}

	templateID := rotation.NextTemplate(p.registry.TemplateHistory())

	post, err := p.controller.Generate(ctx, req, templateID)
	if err != nil {
		return nil, err
	}
	post.Slug = p.uniqueSlug(post.Slug, req.Location)

	query := fmt.Sprintf("%s %s", req.Location.Name, req.Topic)
	photo, err := p.allocator.Allocate(ctx, photos.Request{Query: query, CategoryHint: categoryHint})
	if err != nil {
		return nil, fmt.Errorf("photo allocation failed: %w", err)
	}

	path, err := render.WritePost(p.cfg.Content.OutputDir, post, photo, req.Location)
	if err != nil {
		return nil, err
	}

	record := core.PublishedRecord{
		Slug:         post.Slug,
		Location:     req.Location,
		CoverPhotoID: photo.ID,
		PublishedAt:  post.GeneratedAt,
		SourceTree:   "primary",
	}
	if err := p.registry.Register(record); err != nil {
		return nil, fmt.Errorf("failed to record publication: %w", err)
	}
	if err := p.registry.PushTemplate(post.TemplateID); err != nil {
		return nil, fmt.Errorf("failed to record template use: %w", err)
	}
	if err := p.registry.SetUsedAngles(p.angles.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to record angle use: %w", err)
	}

	if err := p.archive.SavePost(*post); err != nil {
		logger.Warn("failed to archive post", "slug", post.Slug, "error", err)
	}
	if err := p.archive.RecordAttempt(post.ID, post.Attempts, post.ContentAngle, post.Differentiation, post.QualityScore); err != nil {
		logger.Warn("failed to record attempt", "slug", post.Slug, "error", err)
	}

	return &publishResult{Post: post, Photo: photo, Path: path}, nil
}

// uniqueSlug resolves slug collisions by qualifying with the location,
// then with a random suffix as the final fallback.
func (p *pipeline) uniqueSlug(slug string, loc core.Location) string {
	if !p.registry.HasSlug(slug) {
		return slug
	}
	qualified := slug + "-" + render.Slugify(loc.Name)
	if loc.Qualifier != "" {
		qualified = slug + "-" + render.Slugify(loc.Name+" "+loc.Qualifier)
	}
	if !p.registry.HasSlug(qualified) {
		logger.Warn("slug collision, qualified with location", "slug", slug, "resolved", qualified)
		return qualified
	}
	suffixed := fmt.Sprintf("%s-%s", qualified, uuid.NewString()[:8])
	logger.Warn("slug collision persists, adding random suffix", "slug", slug, "resolved", suffixed)
	return suffixed
}

func contentTrees(cfg *config.Config) []corpus.Tree {
	var trees []corpus.Tree
	for _, tree := range cfg.ContentTrees() {
		trees = append(trees, corpus.Tree{Name: tree.Name, Root: tree.Root})
	}
	return trees
}

// newBackend creates the configured LLM backend and verifies it is
// reachable before any generation work begins.
func newBackend(ctx context.Context, cfg *config.Config) (llm.Backend, error) {
	var backend llm.Backend
	switch cfg.AI.Backend {
	case "ollama":
		backend = llm.NewOllamaClient(
			cfg.AI.Ollama.BaseURL,
			cfg.AI.Ollama.Model,
			config.Duration(cfg.AI.Ollama.Timeout, 5*time.Minute),
		)
	case "gemini", "":
		client, err := llm.NewGeminiClient(cfg.AI.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown ai backend %q (want gemini or ollama)", cfg.AI.Backend)
	}

	if err := backend.CheckHealth(ctx); err != nil {
		return nil, fmt.Errorf("%s backend health check failed: %w", cfg.AI.Backend, err)
	}
	return backend, nil
}

// newAllocator builds the photo allocator, with or without a search
// provider depending on configuration.
func newAllocator(cfg *config.Config, reg *registry.Registry) (*photos.Allocator, error) {
	var provider photos.Provider
	if cfg.Photos.Provider != "" && cfg.Photos.Provider != "none" {
		factory := photos.NewProviderFactory()
		created, err := factory.CreateProvider(photos.ProviderType(cfg.Photos.Provider), map[string]string{
			"api_key": cfg.Photos.Providers.Pexels.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create photo provider %q (available: %v): %w",
				cfg.Photos.Provider, factory.GetAvailableProviders(), err)
		}
		provider = created
	}

	var validator *photos.Validator
	if cfg.Photos.ValidateURLs && provider != nil {
		validator = photos.NewValidator(config.Duration(cfg.Photos.Timeout, 15*time.Second))
	}

	return photos.NewAllocator(reg, provider, validator), nil
}
