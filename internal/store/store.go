package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"postforge/internal/core"
)

// Store is the SQLite-backed archive of generated posts and their scoring
// attempts. The registry owns identity; this store keeps the full artifacts
// and the audit trail of how they scored.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "postforge.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	postsTable := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		slug TEXT,
		title TEXT,
		content TEXT,
		content_hash TEXT,
		content_angle TEXT,
		template_id TEXT,
		model_used TEXT,
		word_count INTEGER,
		quality_score REAL,
		overall_score REAL,
		attempts INTEGER,
		warnings TEXT,
		generated_at DATETIME
	);`

	attemptsTable := `
	CREATE TABLE IF NOT EXISTS attempts (
		post_id TEXT,
		attempt INTEGER,
		content_angle TEXT,
		overall_score REAL,
		quality_score REAL,
		passed INTEGER,
		issues TEXT,
		recorded_at DATETIME,
		FOREIGN KEY (post_id) REFERENCES posts (id)
	);`

	tables := []string{postsTable, attemptsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePost archives a finalized post
func (s *Store) SavePost(post core.GeneratedPost) error {
	warnings, _ := json.Marshal(post.Warnings)

	overall := 0.0
	if post.Differentiation != nil {
		overall = post.Differentiation.OverallScore
	}

	query := `
	INSERT OR REPLACE INTO posts
	(id, slug, title, content, content_hash, content_angle, template_id, model_used,
	 word_count, quality_score, overall_score, attempts, warnings, generated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		post.ID,
		post.Slug,
		post.Title,
		post.Content,
		post.ContentHash,
		post.ContentAngle,
		post.TemplateID,
		post.ModelUsed,
		post.WordCount,
		post.QualityScore,
		overall,
		post.Attempts,
		string(warnings),
		post.GeneratedAt,
	)

	return err
}

// GetPostBySlug retrieves an archived post by slug, or nil on a miss
func (s *Store) GetPostBySlug(slug string) (*core.GeneratedPost, error) {
	query := `
	SELECT id, slug, title, content, content_hash, content_angle, template_id,
	       model_used, word_count, quality_score, attempts, warnings, generated_at
	FROM posts
	WHERE slug = ?`

	row := s.db.QueryRow(query, slug)

	var post core.GeneratedPost
	var warnings string
	var generatedAt time.Time

	err := row.Scan(
		&post.ID,
		&post.Slug,
		&post.Title,
		&post.Content,
		&post.ContentHash,
		&post.ContentAngle,
		&post.TemplateID,
		&post.ModelUsed,
		&post.WordCount,
		&post.QualityScore,
		&post.Attempts,
		&warnings,
		&generatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	if warnings != "" {
		_ = json.Unmarshal([]byte(warnings), &post.Warnings)
	}
	post.GeneratedAt = generatedAt
	return &post, nil
}

// RecordAttempt logs one scoring attempt for a post, passed or failed
func (s *Store) RecordAttempt(postID string, attempt int, angle string, report *core.DifferentiationReport, quality float64) error {
	overall := 0.0
	passed := 0
	issues := "[]"
	if report != nil {
		overall = report.OverallScore
		if report.PassesThreshold {
			passed = 1
		}
		if encoded, err := json.Marshal(report.Issues); err == nil {
			issues = string(encoded)
		}
	}

	query := `
	INSERT INTO attempts
	(post_id, attempt, content_angle, overall_score, quality_score, passed, issues, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, postID, attempt, angle, overall, quality, passed, issues, time.Now().UTC())
	return err
}

// CacheStats describes what the archive currently holds
type CacheStats struct {
	PostCount    int
	AttemptCount int
	CacheSize    int64
	LastUpdated  time.Time
}

// GetCacheStats returns statistics about the archive
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM posts":    &stats.PostCount,
		"SELECT COUNT(*) FROM attempts": &stats.AttemptCount,
	}

	for query, target := range queries {
		err := s.db.QueryRow(query).Scan(target)
		if err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	// Get cache size (file size)
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all archived data
func (s *Store) ClearCache() error {
	tables := []string{"posts", "attempts"}

	for _, table := range tables {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	// Vacuum to reclaim space
	_, err := s.db.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldAttempts removes attempt rows older than the given age. Posts
// are kept indefinitely; only the per-attempt audit trail is pruned.
func (s *Store) CleanupOldAttempts(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)
	_, err := s.db.Exec("DELETE FROM attempts WHERE recorded_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean old attempts: %w", err)
	}
	return nil
}
