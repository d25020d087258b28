package playlist

import "sort"

// GateConfig holds the rare-eligibility thresholds.
type GateConfig struct {
	MinPlaylists int
	MinTracks    int
	MinScore     int
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinPlaylists: 3,
		MinTracks:    10,
		MinScore:     82,
	}
}

// Eligibility is the gate decision. SuggestedTop3 always carries the best
// playlists by score, eligible or not, for suggestion purposes.
type Eligibility struct {
	Eligible      bool     `yaml:"eligible" json:"eligible"`
	SuggestedTop3 []string `yaml:"suggested_top_3" json:"suggestedTop3"`
}

// EvaluateGate is a single stateless threshold decision over a set of
// playlist scores.
func EvaluateGate(scores []Score, cfg GateConfig) Eligibility {
	if cfg.MinPlaylists == 0 {
		cfg = DefaultGateConfig()
	}

	ranked := make([]Score, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	qualifying := 0
	for _, s := range ranked {
		if s.Size >= cfg.MinTracks && s.Score >= cfg.MinScore {
			qualifying++
		}
	}

	var top []string
	for i, s := range ranked {
		if i == 3 {
			break
		}
		top = append(top, s.Name)
	}

	return Eligibility{
		Eligible:      qualifying >= cfg.MinPlaylists,
		SuggestedTop3: top,
	}
}
