package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"chorus/internal/config"
	"chorus/internal/media"
)

// Batch is one recorded ingestion run.
type Batch struct {
	ID         int64
	Playlist   string
	SourceURL  string
	Added      int
	Duplicates int
	Failures   int
	CreatedAt  time.Time
	Songs      int
}

// Store manages ingestion history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "catalog.db")
	return OpenPath(dbPath)
}

// OpenPath opens the catalog database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecordBatch stores one ingestion run and its organized tracks. The batch
// and its songs are committed atomically.
func (s *Store) RecordBatch(ctx context.Context, playlist, sourceURL string, tracks []media.Track, duplicates, failures int) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (playlist, source_url, added, duplicates, failures, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		playlist, nullableString(sourceURL), len(tracks), duplicates, failures, now)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, track := range tracks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO songs (
                batch_id, title, artist, album, year, track_number,
                duration_ms, bitrate, sample_rate, size_bytes, path_to_song, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, track.Title, track.Artist, nullableString(track.Album),
			nullableString(track.Year), nullableString(track.TrackNumber),
			track.DurationMS, track.Bitrate, track.SampleRate, track.SizeBytes,
			track.Path, now)
		if err != nil {
			return 0, fmt.Errorf("insert song %q: %w", track.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return batchID, nil
}

// Recent returns the latest batches, newest first. A limit of zero or less
// defaults to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.playlist, COALESCE(b.source_url, ''), b.added, b.duplicates, b.failures, b.created_at,
                (SELECT COUNT(1) FROM songs WHERE songs.batch_id = b.id)
         FROM batches b
         ORDER BY b.id DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Playlist, &b.SourceURL, &b.Added, &b.Duplicates, &b.Failures, &createdAt, &b.Songs); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Songs returns the tracks recorded for one batch in insertion order.
func (s *Store) Songs(ctx context.Context, batchID int64) ([]media.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, artist, COALESCE(album, ''), COALESCE(year, ''), COALESCE(track_number, ''),
                duration_ms, bitrate, sample_rate, size_bytes, path_to_song
         FROM songs WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var tracks []media.Track
	for rows.Next() {
		var t media.Track
		if err := rows.Scan(&t.Title, &t.Artist, &t.Album, &t.Year, &t.TrackNumber,
			&t.DurationMS, &t.Bitrate, &t.SampleRate, &t.SizeBytes, &t.Path); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// CountByPlaylist reports how many songs have been ingested under the
// given playlist name across all batches.
func (s *Store) CountByPlaylist(ctx context.Context, playlist string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM songs
         JOIN batches ON batches.id = songs.batch_id
         WHERE batches.playlist = ?`, playlist).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return count, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
