package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"postforge/internal/core"
	"postforge/internal/corpus"
)

func tempRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return r
}

func TestHasSlugNormalizedVariants(t *testing.T) {
	r := tempRegistry(t)
	if err := r.Register(core.PublishedRecord{Slug: "park-slope-coffee-guide"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	variants := []string{
		"park-slope-coffee-guide",
		"Park-Slope-Coffee-Guide",
		"park slope coffee guide",
		"park_slope_coffee_guide",
		"ParkSlopeCoffeeGuide",
	}
	for _, variant := range variants {
		if !r.HasSlug(variant) {
			t.Errorf("expected HasSlug(%q) to be true", variant)
		}
	}
	if r.HasSlug("park-slope-pizza-guide") {
		t.Error("unrelated slug should not match")
	}
}

func TestHasLocationBlankFieldsAreWildcards(t *testing.T) {
	r := tempRegistry(t)
	if err := r.Register(core.PublishedRecord{
		Slug:     "greenpoint-guide",
		Location: core.Location{Name: "Greenpoint"},
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Stored record has no qualifier/region, so any refinement matches.
	if !r.HasLocation(core.Location{Name: "greenpoint", Qualifier: "Brooklyn", Region: "NY"}) {
		t.Error("blank stored qualifier should match any candidate qualifier")
	}
	if !r.HasLocation(core.Location{Name: "Greenpoint"}) {
		t.Error("exact name should match")
	}
	if r.HasLocation(core.Location{Name: "Williamsburg"}) {
		t.Error("different name should not match")
	}
}

func TestHasLocationQualifierDisambiguates(t *testing.T) {
	r := tempRegistry(t)
	if err := r.Register(core.PublishedRecord{
		Slug:     "chinatown-manhattan-guide",
		Location: core.Location{Name: "Chinatown", Qualifier: "Manhattan", Region: "NY"},
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if r.HasLocation(core.Location{Name: "Chinatown", Qualifier: "Queens", Region: "NY"}) {
		t.Error("different qualifier should not match when both are set")
	}
	if !r.HasLocation(core.Location{Name: "Chinatown", Qualifier: "Manhattan", Region: "NY"}) {
		t.Error("same qualifier should match")
	}
}

func TestPersistenceRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	record := core.PublishedRecord{
		Slug:         "bushwick-art-walk",
		Location:     core.Location{Name: "Bushwick", Qualifier: "Brooklyn", Region: "NY"},
		CoverPhotoID: "curated-city-01",
		PublishedAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		SourceTree:   "primary",
	}
	if err := r.Register(record); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.SetUsedAngles(map[string][]string{"coffee shops": {"beginner-guide"}}); err != nil {
		t.Fatalf("SetUsedAngles failed: %v", err)
	}
	if err := r.PushTemplate("COMPASS"); err != nil {
		t.Fatalf("PushTemplate failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !reopened.HasSlug("bushwick-art-walk") {
		t.Error("slug lost across reload")
	}
	if !reopened.IsPhotoConsumed("curated-city-01") {
		t.Error("used photo lost across reload")
	}
	angles := reopened.UsedAngles()
	if len(angles["coffee shops"]) != 1 || angles["coffee shops"][0] != "beginner-guide" {
		t.Errorf("angle state lost across reload: %v", angles)
	}
	history := reopened.TemplateHistory()
	if len(history) != 1 || history[0] != "COMPASS" {
		t.Errorf("template history lost across reload: %v", history)
	}
}

func TestBlockedPhotoIsConsumed(t *testing.T) {
	r := tempRegistry(t)
	if !r.IsPhotoConsumed("pexels-1141853") {
		t.Error("blocked photo should always report consumed")
	}
	if r.IsPhotoConsumed("pexels-999999") {
		t.Error("unknown photo should not report consumed")
	}
	r.ReservePhoto("pexels-999999")
	if !r.IsPhotoConsumed("pexels-999999") {
		t.Error("reserved photo should report consumed")
	}
}

func writePost(t *testing.T, dir, name, frontmatter string) {
	t.Helper()
	content := "---\n" + frontmatter + "---\n\n# Body\n\nSome content here.\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestSyncScansTreesWithPrecedence(t *testing.T) {
	primary := t.TempDir()
	secondary := t.TempDir()

	writePost(t, primary, "2026-08-01-park-slope-guide.md",
		"slug: park-slope-guide\nneighborhood: Park Slope\nborough: Brooklyn\nstate: NY\ncover_photo_id: curated-city-02\ndate: \"2026-08-01\"\ngenerator: postforge\n")
	// Same slug in the secondary tree; primary must win.
	writePost(t, secondary, "2026-07-15-park-slope-guide.md",
		"slug: park-slope-guide\nneighborhood: Park Slope\nborough: Queens\nstate: NY\ncover_photo_id: curated-city-03\ndate: \"2026-07-15\"\ngenerator: postforge\n")
	writePost(t, secondary, "2026-07-20-astoria-eats.md",
		"slug: astoria-eats\nneighborhood: Astoria\nborough: Queens\nstate: NY\ncover_photo_id: curated-food-01\ndate: \"2026-07-20\"\ngenerator: postforge\n")
	// Hand-written post without our marker is ignored.
	writePost(t, secondary, "2025-01-01-manual-post.md",
		"slug: manual-post\nneighborhood: Somewhere\n")

	r := tempRegistry(t)
	err := r.Sync([]corpus.Tree{
		{Name: "primary", Root: primary},
		{Name: "secondary", Root: secondary},
	})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	records := r.Published()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if r.HasSlug("manual-post") {
		t.Error("post without generator marker should be ignored")
	}

	for _, record := range records {
		if record.Slug == "park-slope-guide" {
			if record.SourceTree != "primary" {
				t.Errorf("expected primary tree to win, got %s", record.SourceTree)
			}
			if record.Location.Qualifier != "Brooklyn" {
				t.Errorf("expected primary record's qualifier, got %s", record.Location.Qualifier)
			}
			if !record.PublishedAt.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("unexpected publish date %v", record.PublishedAt)
			}
		}
	}

	// Photos from both trees are consumed, even the shadowed record's.
	for _, id := range []string{"curated-city-02", "curated-city-03", "curated-food-01"} {
		if !r.IsPhotoConsumed(id) {
			t.Errorf("expected photo %s to be consumed after sync", id)
		}
	}
}

func TestSyncUnionsPreviouslyUsedPhotos(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	r.ReservePhoto("pexels-424242")
	if err := r.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Sync against empty trees; the reserved photo must survive.
	if err := r.Sync([]corpus.Tree{{Name: "primary", Root: filepath.Join(t.TempDir(), "missing")}}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !r.IsPhotoConsumed("pexels-424242") {
		t.Error("previously used photo lost during sync")
	}
}
