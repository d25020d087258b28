// Package window resolves effective dates for play records and provides the
// cutoff filtering and deduplication the aggregators are built on.
package window

import (
	"sort"
	"time"

	"github.com/pdewey/soundscope/internal/model"
)

// Config controls cutoff filtering.
type Config struct {
	// Cutoff drops records whose effective date falls before it when
	// DropPreCutoff is set. The default is the month the source streaming
	// platform went public.
	Cutoff        time.Time
	DropPreCutoff bool
}

// DefaultConfig returns the standard window: drop everything before 2008-10.
func DefaultConfig() Config {
	return Config{
		Cutoff:        time.Date(2008, time.October, 1, 0, 0, 0, 0, time.UTC),
		DropPreCutoff: true,
	}
}

// MonthCount is a per-month bucket in a chronological trend.
type MonthCount struct {
	Month string `yaml:"month" json:"month"`
	Count int    `yaml:"count" json:"count"`
}

// EffectiveDate resolves a record's date: played-at, else added-at, else
// release date. The second return is false when none parse.
func EffectiveDate(r model.PlayRecord) (time.Time, bool) {
	switch {
	case !r.PlayedAt.IsZero():
		return r.PlayedAt, true
	case !r.AddedAt.IsZero():
		return r.AddedAt, true
	case !r.ReleaseDate.IsZero():
		return r.ReleaseDate, true
	}
	return time.Time{}, false
}

// Filter applies the cutoff. Records with no effective date pass through:
// they are only excluded from date-dependent aggregates, not from the set.
func Filter(records []model.PlayRecord, cfg Config) []model.PlayRecord {
	if !cfg.DropPreCutoff || cfg.Cutoff.IsZero() {
		return records
	}
	out := make([]model.PlayRecord, 0, len(records))
	for _, r := range records {
		if d, ok := EffectiveDate(r); ok && d.Before(cfg.Cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// UniqueTracks deduplicates by track ID, first occurrence wins. Used for
// track-level aggregates.
func UniqueTracks(records []model.PlayRecord) []model.PlayRecord {
	seen := make(map[string]bool, len(records))
	out := make([]model.PlayRecord, 0, len(records))
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

// UniquePlays deduplicates by (track ID, exact effective timestamp). A track
// played at two different times contributes two plays. Records without an
// effective date are excluded.
func UniquePlays(records []model.PlayRecord) []model.PlayRecord {
	type key struct {
		id string
		at int64
	}
	seen := make(map[key]bool, len(records))
	out := make([]model.PlayRecord, 0, len(records))
	for _, r := range records {
		d, ok := EffectiveDate(r)
		if !ok {
			continue
		}
		k := key{r.ID, d.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// DiscoveriesByMonth buckets first plays by month: unique plays are sorted
// ascending by time and only each track's earliest occurrence is kept.
func DiscoveriesByMonth(records []model.PlayRecord) []MonthCount {
	plays := UniquePlays(records)
	sort.SliceStable(plays, func(i, j int) bool {
		di, _ := EffectiveDate(plays[i])
		dj, _ := EffectiveDate(plays[j])
		return di.Before(dj)
	})
	seen := make(map[string]bool, len(plays))
	counts := make(map[string]int)
	for _, r := range plays {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		d, _ := EffectiveDate(r)
		counts[d.Format("2006-01")]++
	}
	return sortedMonths(counts)
}

// PlaysByMonth buckets unique plays by month, chronologically.
func PlaysByMonth(records []model.PlayRecord) []MonthCount {
	counts := make(map[string]int)
	for _, r := range UniquePlays(records) {
		d, _ := EffectiveDate(r)
		counts[d.Format("2006-01")]++
	}
	return sortedMonths(counts)
}

// Span returns the earliest and latest effective dates in the set. ok is
// false when no record has a usable date.
func Span(records []model.PlayRecord) (start, end time.Time, ok bool) {
	for _, r := range records {
		d, has := EffectiveDate(r)
		if !has {
			continue
		}
		if !ok || d.Before(start) {
			start = d
		}
		if !ok || d.After(end) {
			end = d
		}
		ok = true
	}
	return start, end, ok
}

func sortedMonths(counts map[string]int) []MonthCount {
	out := make([]MonthCount, 0, len(counts))
	for m, c := range counts {
		out = append(out, MonthCount{Month: m, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
