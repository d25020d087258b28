// Package genre normalizes raw genre strings from export files into
// canonical lowercase tokens.
package genre

import "strings"

// aliases maps common variant spellings to their canonical token. Values
// must themselves be canonical so that Normalize is idempotent.
var aliases = map[string]string{
	"hip hop":          "hip-hop",
	"hiphop":           "hip-hop",
	"rap":              "hip-hop",
	"r b":              "r&b",
	"rnb":              "r&b",
	"r n b":            "r&b",
	"alt rock":         "alternative rock",
	"alt-rock":         "alternative rock",
	"indie":            "indie rock",
	"lo fi":            "lo-fi",
	"lofi":             "lo-fi",
	"drum n bass":      "drum and bass",
	"drum & bass":      "drum and bass",
	"dnb":              "drum and bass",
	"electronica":      "electronic",
	"electro":          "electronic",
	"neo soul":         "neo-soul",
	"kpop":             "k-pop",
	"k pop":            "k-pop",
	"jpop":             "j-pop",
	"j pop":            "j-pop",
	"singer songwriter": "singer-songwriter",
	"post rock":        "post-rock",
	"synth pop":        "synth-pop",
	"synthpop":         "synth-pop",
}

// Normalize splits a pipe- or comma-delimited genre string into a
// deduplicated list of lowercase, whitespace-collapsed, alias-mapped tokens.
// Order follows first appearance. Normalizing an already-normalized list
// yields the same list.
func Normalize(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ','
	})
	var out []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		tok := strings.Join(strings.Fields(strings.ToLower(f)), " ")
		if tok == "" {
			continue
		}
		if canon, ok := aliases[tok]; ok {
			tok = canon
		}
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// Primary returns the first normalized token, or "" when the raw string
// carries no usable genre.
func Primary(raw string) string {
	tokens := Normalize(raw)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
