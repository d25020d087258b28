/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdewey/soundscope/internal/ingest"
	"github.com/pdewey/soundscope/internal/logger"
)

var (
	importSource  string
	importAddedBy string
	originsPath   string
)

var importCmd = &cobra.Command{
	Use:   "import <export.csv>...",
	Short: "Imports play export files into the library",
	Long: `Parses one or more CSV export files into the local library. Rows without
a track id are skipped. Re-importing the same file is idempotent.`,
	Args: cobra.MinimumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && originsPath == "" {
			fmt.Fprintln(os.Stderr, "Nothing to do: pass export files or --origins")
			os.Exit(1)
		}
		err := runImport(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSource, "playlist", "", "Source playlist name override (default: the file name)")
	importCmd.Flags().StringVar(&importAddedBy, "added_by", "", "Contributor username recorded on imported rows")
	importCmd.Flags().StringVar(&originsPath, "origins", "", "Also load this artist-origin CSV table")
}

func runImport(paths []string) error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer db.Close()

	log := logger.L()
	for _, path := range paths {
		result, err := ingest.ReadFile(path, ingest.Options{
			DefaultSource:  importSource,
			DefaultAddedBy: importAddedBy,
		})
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, r := range result.Records {
			if err := db.InsertRecord(r); err != nil {
				return fmt.Errorf("storing %s: %w", path, err)
			}
		}
		log.Info("imported export",
			zap.String("file", path),
			zap.Int("records", len(result.Records)),
			zap.Int("skipped", result.Skipped))
		if result.Skipped > 0 {
			fmt.Printf("%s: imported %d rows, skipped %d without a track id\n",
				path, len(result.Records), result.Skipped)
		} else {
			fmt.Printf("%s: imported %d rows\n", path, len(result.Records))
		}
	}

	if originsPath != "" {
		if err := importOrigins(db, originsPath); err != nil {
			return err
		}
	}

	total, err := db.CountPlays()
	if err != nil {
		return err
	}
	fmt.Printf("library now holds %d play events\n", total)
	return nil
}

func importOrigins(db originWriter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening origin table: %w", err)
	}
	defer f.Close()

	rows, err := ingest.ReadOrigins(f)
	if err != nil {
		return fmt.Errorf("parsing origin table: %w", err)
	}
	for _, row := range rows {
		if err := db.InsertOrigin(row.Artist, row.Country, row.Continent); err != nil {
			return err
		}
	}
	fmt.Printf("loaded %d artist origins\n", len(rows))
	return nil
}

type originWriter interface {
	InsertOrigin(artist, country, continent string) error
}
