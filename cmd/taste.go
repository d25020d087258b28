package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdewey/soundscope/internal/taste"
)

var (
	tasteOwners  []string
	tasteMinRows int
	tasteSeed    int64
)

var tasteCmd = &cobra.Command{
	Use:   "taste",
	Short: "Builds the listener taste profile",
	Long: `Weighs every play by recency, ownership and source influence, then derives
the named taste metrics, a persona label and per-genre favorites.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runTaste())
	},
}

func init() {
	rootCmd.AddCommand(tasteCmd)

	tasteCmd.Flags().StringSliceVar(&tasteOwners, "owner", nil, "Contributor names counted as the library owner")
	tasteCmd.Flags().IntVar(&tasteMinRows, "min_rows", 300, "Rows required for a full (non-provisional) profile")
	tasteCmd.Flags().Int64Var(&tasteSeed, "seed", 0, "Seed for the provisional message picker (0 uses the clock)")
}

func runTaste() error {
	cfg := taste.DefaultConfig()
	win, err := windowConfig()
	if err != nil {
		return err
	}
	cfg.Window = win
	cfg.OwnerAliases = tasteOwners
	cfg.MinRows = tasteMinRows

	records, origins, err := loadLibrary()
	if err != nil {
		return err
	}

	seed := tasteSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	builder := taste.NewBuilder(origins, rand.New(rand.NewSource(seed)))
	profile := builder.Build(records, cfg)

	if structuredFormat() {
		return writeStructured(os.Stdout, profile)
	}

	if profile.Provisional {
		fmt.Printf("Profile: %s\n%s\n", profile.Label, profile.RudeMessage)
		return nil
	}

	fmt.Printf("Profile: %s (score %d)\n\n", profile.Label, profile.Score)
	fmt.Printf("Variety:          %d\n", profile.Metrics.Variety)
	fmt.Printf("Cohesion:         %d\n", profile.Metrics.Cohesion)
	fmt.Printf("Rarity:           %d\n", profile.Metrics.Rarity)
	fmt.Printf("Exploration:      %d\n", profile.Metrics.Exploration)
	fmt.Printf("Internationality: %d\n", profile.Metrics.Internationality)
	fmt.Printf("Era balance:      %d\n", profile.Metrics.EraBalance)
	fmt.Printf("Niche share:      %d\n", profile.Metrics.NicheShare)

	if len(profile.Breakdowns.TopGenres) > 0 {
		fmt.Println()
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Genre", "Mentions", "Favorites"})
		for _, g := range profile.Breakdowns.TopGenres {
			table.Append([]string{
				g.Genre,
				strconv.Itoa(g.Count),
				strings.Join(profile.Breakdowns.FavoritesPerGenre[g.Genre], ", "),
			})
		}
		table.Render()
	}

	if len(profile.Evidence) > 0 {
		fmt.Printf("\nEvidence:\n  %s\n", strings.Join(profile.Evidence, "\n  "))
	}
	return nil
}
