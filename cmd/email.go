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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/window"
)

type SendEmailConfig struct {
	From   string
	To     []string
	Types  []string
	Params []map[string]string
	DryRun bool
	APIKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address...>",
	Short: "Emails a report built from the selected analyses",
	Long: `Renders the selected analyses as an HTML report and sends it to each
address. Analyses are one or more of: stats, rare-tracks, ratings,
playlist-scores, taste.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		reports, _ := cmd.Flags().GetStringSlice("reports")
		params, _ := cmd.Flags().GetStringArray("params")

		if len(params) > 0 && len(params) != len(reports) {
			exitOnError(fmt.Errorf("number of --params flags (%d) must match number of reports (%d), or be 0", len(params), len(reports)))
		}

		structuredParams := make([]map[string]string, len(reports))
		for i, v := range params {
			pMap := make(map[string]string)
			if v != "" {
				for _, pair := range strings.Split(v, ",") {
					kv := strings.SplitN(pair, "=", 2)
					if len(kv) == 2 {
						pMap[kv[0]] = kv[1]
					}
				}
			}
			structuredParams[i] = pMap
		}

		config := SendEmailConfig{
			From:   viper.GetString("from"),
			To:     args,
			Types:  reports,
			Params: structuredParams,
			DryRun: viper.GetBool("dryRun"),
			APIKey: viper.GetString("sendgrid_api_key"),
		}
		exitOnError(sendEmail(config))
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var apiKey string
	emailCmd.Flags().StringVar(&apiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().StringSlice("reports", []string{"stats", "taste"}, "Analyses to include in the report")
	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'top_genres=20')")
}

func sendEmail(config SendEmailConfig) error {
	actions := make([]Analyser, 0)
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return err
		}

		if config.Params != nil && i < len(config.Params) {
			params := config.Params[i]
			if len(params) > 0 {
				if configurable, ok := action.(Configurable); ok {
					if err := configurable.Configure(params); err != nil {
						return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
					}
				}
			}
		}

		actions = append(actions, action)
	}

	records, origins, err := loadLibrary()
	if err != nil {
		return err
	}
	win, err := windowConfig()
	if err != nil {
		return err
	}

	subject, out, err := generateEmailContent(records, origins, win, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	client := sendgrid.NewSendClient(config.APIKey)
	from := mail.NewEmail("soundscope", config.From)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)
	for _, toAddress := range config.To {
		to := mail.NewEmail(toAddress, toAddress)
		message := mail.NewSingleEmail(from, subject, to, out, out)
		err := retry.Do(
			func() error {
				if err := limiter.Wait(context.Background()); err != nil {
					return retry.Unrecoverable(err)
				}
				resp, err := client.Send(message)
				if err != nil {
					return err
				}
				if resp.StatusCode/100 == 5 {
					return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
				}
				if resp.StatusCode/100 != 2 {
					return retry.Unrecoverable(fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body))
				}
				return nil
			},
		)
		if err != nil {
			return fmt.Errorf("sending to %s: %w", toAddress, err)
		}
		fmt.Printf("Sent report to %s\n", toAddress)
	}

	return nil
}

func generateEmailContent(records []model.PlayRecord, origins *origin.Table, win window.Config, actions []Analyser) (subject string, body string, err error) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	for _, action := range actions {
		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s:</h2>\n", action.GetName())
		analysis, err := action.GetResults(records, origins, win)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}

		if analysis.BodyOverride != "" {
			out += analysis.BodyOverride
		} else if len(analysis.results) <= 1 {
			out += "<div>No tracks found.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range analysis.results[0] {
				out += fmt.Sprintf("<th>%s</th>", header)
			}
			out += `				</tr>
			</thead>`

			for _, row := range analysis.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", column)
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		out += fmt.Sprintf(`<div>%s</div>
		</div>`, analysis.summary)
	}

	subject = fmt.Sprintf("Library report for %s", time.Now().Format("2006-01-02"))
	return subject, out, nil
}
