// Package history persists a record of completed downloads so playlist runs
// can skip entries that were already fetched.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record describes one completed download
type Record struct {
	ID           int64
	VideoID      string
	URL          string
	Title        string
	Selector     string
	DestDir      string
	FileSize     int64
	DownloadedAt time.Time
}

// Store handles download history persistence
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT,
			selector TEXT NOT NULL,
			dest_dir TEXT NOT NULL,
			file_size_bytes INTEGER,
			downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_video_id ON downloads(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_downloaded_at ON downloads(downloaded_at)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// RecordDownload records a completed download
func (s *Store) RecordDownload(rec *Record) error {
	if rec.DownloadedAt.IsZero() {
		rec.DownloadedAt = time.Now()
	}

	query := `
		INSERT INTO downloads (video_id, url, title, selector, dest_dir, file_size_bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		rec.VideoID,
		rec.URL,
		rec.Title,
		rec.Selector,
		rec.DestDir,
		rec.FileSize,
		rec.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// IsDownloaded reports whether a video ID has been recorded before
func (s *Store) IsDownloaded(videoID string) (bool, error) {
	if videoID == "" {
		return false, nil
	}

	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM downloads WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query download history: %w", err)
	}
	return count > 0, nil
}

// Recent returns the most recent downloads, newest first
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, video_id, url, title, selector, dest_dir, file_size_bytes, downloaded_at
		FROM downloads
		ORDER BY downloaded_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list download history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.URL, &rec.Title,
			&rec.Selector, &rec.DestDir, &rec.FileSize, &rec.DownloadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of recorded downloads
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM downloads`).Scan(&count)
	return count, err
}
