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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdewey/soundscope/internal/logger"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/store"
	"github.com/pdewey/soundscope/internal/window"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "soundscope",
	Short: "Analyzes imported music-play exports",
	Long: `soundscope imports streaming-service play exports into a local library
and derives rarity rankings, taste profiles, and playlist quality scores from them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Config{
			Verbose: viper.GetBool("verbose"),
			File:    viper.GetString("log_file"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.soundscope.yaml)")

	var databasePath string
	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./soundscope.db", "Path to the SQLite library")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var format string
	rootCmd.PersistentFlags().StringVarP(
		&format, "format", "f", "table", "Output format: table, yaml, or json")
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	var logFile string
	rootCmd.PersistentFlags().StringVar(&logFile, "log_file", "", "Also log to this rotated file")
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log_file"))

	var cutoff string
	rootCmd.PersistentFlags().StringVar(
		&cutoff, "cutoff", "2008-10", "Window cutoff month (YYYY-MM)")
	viper.BindPFlag("cutoff", rootCmd.PersistentFlags().Lookup("cutoff"))

	var includePreCutoff bool
	rootCmd.PersistentFlags().BoolVar(
		&includePreCutoff, "include_pre_cutoff", false, "Keep records dated before the cutoff")
	viper.BindPFlag("include_pre_cutoff", rootCmd.PersistentFlags().Lookup("include_pre_cutoff"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".soundscope" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".soundscope")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore() (*store.Store, error) {
	return store.New(viper.GetString("database"))
}

// loadLibrary reads the full record snapshot and the origin table.
func loadLibrary() ([]model.PlayRecord, *origin.Table, error) {
	db, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("opening library: %w", err)
	}
	defer db.Close()

	records, err := db.Records()
	if err != nil {
		return nil, nil, fmt.Errorf("loading records: %w", err)
	}
	origins, err := db.Origins()
	if err != nil {
		return nil, nil, fmt.Errorf("loading origins: %w", err)
	}
	return records, origins, nil
}

// windowConfig builds the cutoff window from the persistent flags.
func windowConfig() (window.Config, error) {
	cfg := window.DefaultConfig()
	if raw := viper.GetString("cutoff"); raw != "" {
		cutoff, err := parseMonth(raw)
		if err != nil {
			return cfg, fmt.Errorf("parsing cutoff: %w", err)
		}
		cfg.Cutoff = cutoff
	}
	cfg.DropPreCutoff = !viper.GetBool("include_pre_cutoff")
	return cfg, nil
}
