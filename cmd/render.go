package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// structuredFormat reports whether output should bypass the table renderers.
func structuredFormat() bool {
	f := viper.GetString("format")
	return f == "yaml" || f == "json"
}

// writeStructured encodes a report as yaml or json per the --format flag.
func writeStructured(out io.Writer, v interface{}) error {
	switch viper.GetString("format") {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err

	default:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return nil
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
