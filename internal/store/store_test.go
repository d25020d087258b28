package store

import (
	"testing"
	"time"

	"github.com/pdewey/soundscope/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndReadBack(t *testing.T) {
	s := setupTestStore(t)

	record := model.PlayRecord{
		ID:          "abc123",
		Track:       "Windowlicker",
		Artist:      "Aphex Twin",
		Album:       "Windowlicker",
		RawGenres:   "idm|electronic",
		ReleaseDate: time.Date(1999, 3, 22, 0, 0, 0, 0, time.UTC),
		PlayedAt:    time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Popularity:  55,
		Valence:     0.3,
		Energy:      0.7,
		Dance:       0.6,
		Tempo:       127.5,
		Source:      "liked-songs.csv",
		AddedBy:     "me",
	}
	if err := s.InsertRecord(record); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	records, err := s.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.Track != record.Track || got.Artist != record.Artist {
		t.Errorf("got %q by %q", got.Track, got.Artist)
	}
	if !got.PlayedAt.Equal(record.PlayedAt) {
		t.Errorf("played at %v, want %v", got.PlayedAt, record.PlayedAt)
	}
	if !got.ReleaseDate.Equal(record.ReleaseDate) {
		t.Errorf("release %v, want %v", got.ReleaseDate, record.ReleaseDate)
	}
	if got.Tempo != record.Tempo {
		t.Errorf("tempo %v, want %v", got.Tempo, record.Tempo)
	}
}

func TestReimportIsIdempotent(t *testing.T) {
	s := setupTestStore(t)

	record := model.PlayRecord{
		ID:       "abc123",
		Track:    "Track",
		PlayedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Source:   "list",
	}
	for i := 0; i < 3; i++ {
		if err := s.InsertRecord(record); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	count, err := s.CountPlays()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("got %d plays after re-import, want 1", count)
	}

	// A different play time is a new event.
	record.PlayedAt = record.PlayedAt.Add(time.Hour)
	if err := s.InsertRecord(record); err != nil {
		t.Fatal(err)
	}
	if count, _ := s.CountPlays(); count != 2 {
		t.Errorf("got %d plays, want 2", count)
	}
}

func TestInsertRecordRejectsEmptyID(t *testing.T) {
	s := setupTestStore(t)
	if err := s.InsertRecord(model.PlayRecord{Track: "nameless"}); err == nil {
		t.Error("expected an error for an empty track id")
	}
}

func TestOrigins(t *testing.T) {
	s := setupTestStore(t)
	if err := s.InsertOrigin("Caribou", "Canada", "North America"); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertOrigin("Caribou", "Canada", "North America"); err != nil {
		t.Fatal(err) // upsert
	}

	table, err := s.Origins()
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Errorf("table has %d entries, want 1", table.Len())
	}
	if got := table.Lookup("caribou"); got.Country != "Canada" {
		t.Errorf("lookup = %+v", got)
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := map[string]bool{
		"2024-05-01T09:30:00Z": true,
		"2024-05-01 09:30:00":  true,
		"2024-05-01":           true,
		"2024-05":              true,
		"2024":                 true,
		"not a date":           false,
		"":                     false,
	}
	for input, want := range cases {
		got := !parseDate(input).IsZero()
		if got != want {
			t.Errorf("parseDate(%q) parsed=%v, want %v", input, got, want)
		}
	}
}
