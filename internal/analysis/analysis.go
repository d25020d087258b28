// Package analysis derives library-wide and per-playlist summaries from
// imported play records. Every function here is a pure transformation: it
// reads its input slice, allocates fresh results, and shares no state
// between calls.
package analysis

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/pdewey/soundscope/internal/genre"
	"github.com/pdewey/soundscope/internal/model"
)

func clamp100(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// countGenresPerTrack counts, per genre, how many tracks carry it. Each
// track contributes a genre at most once.
func countGenresPerTrack(tracks []model.PlayRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range tracks {
		for _, g := range genre.Normalize(r.RawGenres) {
			counts[g]++
		}
	}
	return counts
}

// countGenreOccurrences counts raw genre occurrences over all records, so
// repeated plays of a genre increase its weight. Feeds the entropy metrics.
func countGenreOccurrences(records []model.PlayRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		for _, g := range genre.Normalize(r.RawGenres) {
			counts[g]++
		}
	}
	return counts
}

// normalizedEntropy returns Shannon entropy of the count distribution
// divided by its maximum, in [0,1]. Zero or one distinct key yields 0.
// Counts are accumulated into a table first so the result is independent of
// input ordering.
func normalizedEntropy(counts map[string]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) < 2 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h / math.Log2(float64(len(counts)))
}

// topCounts sorts a count table descending by count, ties broken by name
// for stable output, truncated to limit (unlimited when limit <= 0).
func topCounts(counts map[string]int, limit int) []GenreCount {
	out := make([]GenreCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, GenreCount{Genre: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rankedKeys returns the keys of a count table, descending by count with
// name tiebreak, truncated to limit.
func rankedKeys(counts map[string]int, limit int) []string {
	ranked := topCounts(counts, limit)
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Genre)
	}
	return out
}

func meanPopularity(tracks []model.PlayRecord) float64 {
	if len(tracks) == 0 {
		return 0
	}
	sum := 0
	for _, r := range tracks {
		sum += r.Popularity
	}
	return float64(sum) / float64(len(tracks))
}

// snapshotHash fingerprints the record set: FNV-1a over the sorted track
// IDs plus the row count, so identical snapshots hash identically
// regardless of input order.
func snapshotHash(records []model.PlayRecord) string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d", len(records))
	return fmt.Sprintf("%016x", h.Sum64())
}
