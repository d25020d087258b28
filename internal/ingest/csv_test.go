package ingest

import (
	"strings"
	"testing"
)

func TestReadExport(t *testing.T) {
	input := `track_id,track_name,artist_name,album_name,genres,release_date,added_at,popularity,valence,energy,danceability,tempo
abc1,Alpha,Artist One,Album A,rock|indie rock,2019-06-01,2023-02-03T10:00:00Z,44,0.5,0.8,0.6,120.5
,Ghost,Nobody,Album B,pop,2020-01-01,2023-02-04T10:00:00Z,50,0.1,0.2,0.3,99
abc2,Beta,Artist Two,Album B,jazz,1988,2023-02-05T10:00:00Z,12,0.3,0.4,0.5,80
`
	result, err := Read(strings.NewReader(input), Options{DefaultSource: "liked.csv", DefaultAddedBy: "me"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 for the empty-id row", result.Skipped)
	}

	first := result.Records[0]
	if first.ID != "abc1" || first.Track != "Alpha" || first.Artist != "Artist One" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.ReleaseDate.Year() != 2019 {
		t.Errorf("release year = %d", first.ReleaseDate.Year())
	}
	if first.AddedAt.IsZero() {
		t.Error("added_at should parse")
	}
	if first.Popularity != 44 || first.Tempo != 120.5 {
		t.Errorf("popularity/tempo = %d/%v", first.Popularity, first.Tempo)
	}
	if first.Source != "liked.csv" || first.AddedBy != "me" {
		t.Errorf("defaults not applied: %q %q", first.Source, first.AddedBy)
	}

	second := result.Records[1]
	if second.ReleaseDate.Year() != 1988 {
		t.Errorf("year-only release date: %v", second.ReleaseDate)
	}
}

func TestReadHeaderSynonyms(t *testing.T) {
	input := `id,name,artists,playlist_name,ts
x1,Song,Someone,road trip,2024-01-01 08:00:00
`
	result, err := Read(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := result.Records[0]
	if r.Source != "road trip" {
		t.Errorf("source = %q", r.Source)
	}
	if r.PlayedAt.IsZero() {
		t.Error("ts column should map to played_at")
	}
}

func TestReadMissingIDColumn(t *testing.T) {
	input := "song,artist\nAlpha,Someone\n"
	if _, err := Read(strings.NewReader(input), Options{}); err == nil {
		t.Error("expected an error when no id column exists")
	}
}

func TestReadEmptyInput(t *testing.T) {
	result, err := Read(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 0 {
		t.Errorf("got %d records from empty input", len(result.Records))
	}
}

func TestUnparsableDateKeptWithoutDate(t *testing.T) {
	input := "track_id,played_at\nx1,sometime last summer\n"
	result, err := Read(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 1 {
		t.Fatal("record with a bad date must still be kept")
	}
	if !result.Records[0].PlayedAt.IsZero() {
		t.Error("unparsable date should yield a zero time")
	}
}

func TestReadOrigins(t *testing.T) {
	input := `artist,country,continent
Caribou,Canada,North America
Stereolab,United Kingdom,Europe
,missing,
`
	rows, err := ReadOrigins(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Artist != "Stereolab" || rows[1].Continent != "Europe" {
		t.Errorf("row = %+v", rows[1])
	}
}
