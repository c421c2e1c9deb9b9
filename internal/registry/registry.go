// Package registry is the source of truth for what has been published:
// slugs, locations, consumed photos, and rotation state. Everything else
// consults it before generating; only publication mutates it.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"postforge/internal/core"
	"postforge/internal/corpus"
	"postforge/internal/logger"
	"postforge/internal/photos"
)

// snapshot is the on-disk shape of the registry. The whole file is
// rewritten on every save; there is no incremental format.
type snapshot struct {
	Published       []core.PublishedRecord `json:"published"`
	UsedPhotos      []string               `json:"used_photos"`
	UsedAngles      map[string][]string    `json:"used_angles"`
	TemplateHistory []string               `json:"template_history"`
	SyncedAt        time.Time              `json:"synced_at"`
}

// Registry tracks published identity and rotation state. All methods are
// safe for concurrent use.
type Registry struct {
	mu              sync.Mutex
	path            string
	published       map[string]core.PublishedRecord // keyed by normalized slug
	usedPhotos      map[string]bool
	usedAngles      map[string][]string
	templateHistory []string
	syncedAt        time.Time
}

// Open loads the registry snapshot at path, or starts empty if the file
// does not exist yet.
func Open(path string) (*Registry, error) {
	r := &Registry{
		path:       path,
		published:  make(map[string]core.PublishedRecord),
		usedPhotos: make(map[string]bool),
		usedAngles: make(map[string][]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("no registry snapshot found, starting empty", "path", path)
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}

	for _, record := range snap.Published {
		r.published[normalizeKey(record.Slug)] = record
	}
	for _, id := range snap.UsedPhotos {
		r.usedPhotos[id] = true
	}
	if snap.UsedAngles != nil {
		r.usedAngles = snap.UsedAngles
	}
	r.templateHistory = snap.TemplateHistory
	r.syncedAt = snap.SyncedAt
	return r, nil
}

// Save writes the full snapshot to disk, replacing whatever was there.
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *Registry) saveLocked() error {
	snap := snapshot{
		Published:       make([]core.PublishedRecord, 0, len(r.published)),
		UsedPhotos:      make([]string, 0, len(r.usedPhotos)),
		UsedAngles:      r.usedAngles,
		TemplateHistory: r.templateHistory,
		SyncedAt:        r.syncedAt,
	}
	for _, record := range r.published {
		snap.Published = append(snap.Published, record)
	}
	sort.Slice(snap.Published, func(i, j int) bool {
		return snap.Published[i].Slug < snap.Published[j].Slug
	})
	for id := range r.usedPhotos {
		snap.UsedPhotos = append(snap.UsedPhotos, id)
	}
	sort.Strings(snap.UsedPhotos)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Frontmatter fields read back off disk during sync. Posts we did not
// generate lack the generator marker and are ignored.
var (
	slugField      = regexp.MustCompile(`(?m)^slug:\s*"?([^"\n]+?)"?\s*$`)
	locationField  = regexp.MustCompile(`(?m)^neighborhood:\s*"?([^"\n]+?)"?\s*$`)
	qualifierField = regexp.MustCompile(`(?m)^borough:\s*"?([^"\n]+?)"?\s*$`)
	regionField    = regexp.MustCompile(`(?m)^state:\s*"?([^"\n]+?)"?\s*$`)
	photoField     = regexp.MustCompile(`(?m)^cover_photo_id:\s*"?([^"\n]+?)"?\s*$`)
	dateField      = regexp.MustCompile(`(?m)^date:\s*"?([^"\n]+?)"?\s*$`)
	generatorField = regexp.MustCompile(`(?m)^generator:\s*"?([^"\n]+?)"?\s*$`)
)

// Sync rebuilds published identity from the content trees. Trees are
// scanned in the given precedence order: when the same slug appears in
// more than one tree, the earlier tree's record wins. Used photos are
// unioned with whatever the snapshot already holds, so a photo stays
// consumed even if its post was later hand-edited.
func (r *Registry) Sync(trees []corpus.Tree) error {
	docs, err := corpus.ReadTrees(trees)
	if err != nil {
		return fmt.Errorf("failed to scan content trees: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rebuilt := make(map[string]core.PublishedRecord)
	skipped := 0
	for _, doc := range docs {
		record, ok := recordFromDocument(doc)
		if !ok {
			skipped++
			continue
		}
		// A photo on disk is consumed even if its record loses the slug
		// dedup below; dedup settles identity, not photo usage.
		if record.CoverPhotoID != "" {
			r.usedPhotos[record.CoverPhotoID] = true
		}
		key := normalizeKey(record.Slug)
		if _, exists := rebuilt[key]; exists {
			logger.Warn("duplicate slug across content trees, keeping first",
				"slug", record.Slug, "tree", doc.Tree, "path", doc.Path)
			continue
		}
		rebuilt[key] = record
	}

	r.published = rebuilt
	r.syncedAt = time.Now()
	logger.Info("registry synced", "published", len(rebuilt), "skipped", skipped)
	return r.saveLocked()
}

// recordFromDocument parses a published record out of one markdown file's
// frontmatter. Files without our generator marker are not ours to track.
func recordFromDocument(doc core.RawDocument) (core.PublishedRecord, bool) {
	if field(generatorField, doc.Text) != "postforge" {
		return core.PublishedRecord{}, false
	}
	slug := field(slugField, doc.Text)
	if slug == "" {
		return core.PublishedRecord{}, false
	}

	record := core.PublishedRecord{
		Slug: slug,
		Location: core.Location{
			Name:      field(locationField, doc.Text),
			Qualifier: field(qualifierField, doc.Text),
			Region:    field(regionField, doc.Text),
		},
		CoverPhotoID: field(photoField, doc.Text),
		SourceTree:   doc.Tree,
	}
	if raw := field(dateField, doc.Text); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			record.PublishedAt = t
		}
	}
	return record, true
}

func field(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// HasSlug reports whether a slug is already published. Comparison is on
// the normalized form, so "Park-Slope-Guide" collides with
// "park slope guide".
func (r *Registry) HasSlug(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.published[normalizeKey(slug)]
	return ok
}

// HasLocation reports whether a post already targets the location. A
// stored record with a blank qualifier or region matches any value for
// that field; old posts did not always carry the full triple.
func (r *Registry) HasLocation(loc core.Location) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := normalizeKey(loc.Name)
	for _, record := range r.published {
		if normalizeKey(record.Location.Name) != name {
			continue
		}
		if record.Location.Qualifier != "" && loc.Qualifier != "" &&
			normalizeKey(record.Location.Qualifier) != normalizeKey(loc.Qualifier) {
			continue
		}
		if record.Location.Region != "" && loc.Region != "" &&
			normalizeKey(record.Location.Region) != normalizeKey(loc.Region) {
			continue
		}
		return true
	}
	return false
}

// IsPhotoConsumed reports whether a photo can no longer be assigned,
// either because a published post uses it or because it is blocked.
func (r *Registry) IsPhotoConsumed(id string) bool {
	if photos.IsBlocked(id) {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usedPhotos[id]
}

// ReservePhoto marks a photo as consumed. Reserving the same photo twice
// is a no-op.
func (r *Registry) ReservePhoto(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usedPhotos[id] = true
}

// Register records a newly published post and persists the snapshot.
// Registering an already-present slug is a no-op; the sync pass owns
// reconciliation with what is actually on disk.
func (r *Registry) Register(record core.PublishedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeKey(record.Slug)
	if _, exists := r.published[key]; exists {
		return nil
	}
	r.published[key] = record
	if record.CoverPhotoID != "" {
		r.usedPhotos[record.CoverPhotoID] = true
	}
	return r.saveLocked()
}

// Published returns all records, sorted by slug.
func (r *Registry) Published() []core.PublishedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]core.PublishedRecord, 0, len(r.published))
	for _, record := range r.published {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Slug < records[j].Slug
	})
	return records
}

// UsedAngles returns a copy of the per-topic used-angle state for seeding
// the rotation tracker.
func (r *Registry) UsedAngles() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]string, len(r.usedAngles))
	for topic, angles := range r.usedAngles {
		out[topic] = append([]string(nil), angles...)
	}
	return out
}

// SetUsedAngles replaces the stored angle state and persists it.
func (r *Registry) SetUsedAngles(state map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usedAngles = state
	return r.saveLocked()
}

// TemplateHistory returns the ordered list of recently used structural
// templates, most recent last.
func (r *Registry) TemplateHistory() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.templateHistory...)
}

// PushTemplate appends a template use to the history and persists it.
func (r *Registry) PushTemplate(templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateHistory = append(r.templateHistory, templateID)
	return r.saveLocked()
}

// Stats summarizes registry contents for display.
type Stats struct {
	Published  int
	UsedPhotos int
	Topics     int
	SyncedAt   time.Time
}

// GetStats returns summary counts.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Published:  len(r.published),
		UsedPhotos: len(r.usedPhotos),
		Topics:     len(r.usedAngles),
		SyncedAt:   r.syncedAt,
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeKey lowercases and strips everything but letters and digits,
// so formatting differences never create two identities.
func normalizeKey(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}
