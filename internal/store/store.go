// Package store keeps the imported play library in a local SQLite file.
// Analysis never reads the database directly; it operates on the in-memory
// snapshot Records returns.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
)

const schema = `
CREATE TABLE IF NOT EXISTS Track (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	album TEXT NOT NULL DEFAULT '',
	genres TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	popularity INTEGER NOT NULL DEFAULT 0,
	valence REAL NOT NULL DEFAULT 0,
	energy REAL NOT NULL DEFAULT 0,
	danceability REAL NOT NULL DEFAULT 0,
	acousticness REAL NOT NULL DEFAULT 0,
	instrumentalness REAL NOT NULL DEFAULT 0,
	tempo REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Play (
	track TEXT NOT NULL,
	added_at TEXT NOT NULL DEFAULT '',
	played_at TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	added_by TEXT NOT NULL DEFAULT '',
	UNIQUE(track, played_at, source)
);

CREATE TABLE IF NOT EXISTS Origin (
	artist TEXT PRIMARY KEY,
	country TEXT NOT NULL DEFAULT '',
	continent TEXT NOT NULL DEFAULT ''
);
`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRecord upserts the track and records the play event. Re-importing
// the same (track, played_at, source) row is a no-op.
func (s *Store) InsertRecord(r model.PlayRecord) error {
	if r.ID == "" {
		return fmt.Errorf("inserting record: empty track id")
	}
	_, err := s.db.Exec(`
		INSERT INTO Track (id, name, artist, album, genres, release_date, popularity,
			valence, energy, danceability, acousticness, instrumentalness, tempo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, artist = excluded.artist, album = excluded.album,
			genres = excluded.genres, release_date = excluded.release_date,
			popularity = excluded.popularity, valence = excluded.valence,
			energy = excluded.energy, danceability = excluded.danceability,
			acousticness = excluded.acousticness,
			instrumentalness = excluded.instrumentalness, tempo = excluded.tempo`,
		r.ID, r.Track, r.Artist, r.Album, r.RawGenres, formatDate(r.ReleaseDate),
		r.Popularity, r.Valence, r.Energy, r.Dance, r.Acoustic, r.Instrumental, r.Tempo)
	if err != nil {
		return fmt.Errorf("upserting track %s: %w", r.ID, err)
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO Play (track, added_at, played_at, source, added_by)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, formatDate(r.AddedAt), formatDate(r.PlayedAt), r.Source, r.AddedBy)
	if err != nil {
		return fmt.Errorf("inserting play for %s: %w", r.ID, err)
	}
	return nil
}

// InsertOrigin upserts one row of the artist-origin table.
func (s *Store) InsertOrigin(artist, country, continent string) error {
	_, err := s.db.Exec(`
		INSERT INTO Origin (artist, country, continent) VALUES (?, ?, ?)
		ON CONFLICT(artist) DO UPDATE SET
			country = excluded.country, continent = excluded.continent`,
		artist, country, continent)
	if err != nil {
		return fmt.Errorf("upserting origin for %s: %w", artist, err)
	}
	return nil
}

// Records loads the full library snapshot, one record per play event,
// ordered by play time then track id for reproducible analysis input.
func (s *Store) Records() ([]model.PlayRecord, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.artist, t.album, t.genres, t.release_date,
			t.popularity, t.valence, t.energy, t.danceability, t.acousticness,
			t.instrumentalness, t.tempo, p.added_at, p.played_at, p.source, p.added_by
		FROM Play p
		JOIN Track t ON p.track = t.id
		ORDER BY p.played_at, p.added_at, t.id`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []model.PlayRecord
	for rows.Next() {
		var r model.PlayRecord
		var release, added, played string
		if err := rows.Scan(&r.ID, &r.Track, &r.Artist, &r.Album, &r.RawGenres,
			&release, &r.Popularity, &r.Valence, &r.Energy, &r.Dance,
			&r.Acoustic, &r.Instrumental, &r.Tempo,
			&added, &played, &r.Source, &r.AddedBy); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.ReleaseDate = parseDate(release)
		r.AddedAt = parseDate(added)
		r.PlayedAt = parseDate(played)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Origins loads the offline origin table into an immutable resolver.
func (s *Store) Origins() (*origin.Table, error) {
	rows, err := s.db.Query("SELECT artist, country, continent FROM Origin")
	if err != nil {
		return nil, fmt.Errorf("querying origins: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]origin.Info)
	for rows.Next() {
		var artist string
		var info origin.Info
		if err := rows.Scan(&artist, &info.Country, &info.Continent); err != nil {
			return nil, fmt.Errorf("scanning origin: %w", err)
		}
		entries[artist] = info
	}
	return origin.NewTable(entries), rows.Err()
}

// CountPlays reports how many play events are stored.
func (s *Store) CountPlays() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM Play").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting plays: %w", err)
	}
	return count, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseDate tolerates the formats seen in exports. Anything unparsable
// yields a zero time; the record stays, it just drops out of
// date-dependent aggregates.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006-01",
		"2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
