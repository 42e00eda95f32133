package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/tzverify/internal/verifier"
)

var errScenariosFailed = errors.New("one or more scenarios did not pass")

func newRunCmd() *cobra.Command {
	var (
		filters []string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the scenario catalog and archives the report",
		Long: `Runs every scenario (or those selected with --scenario, by name or rule),
archives the report to the configured blob store and publishes a summary when
Pub/Sub is configured. Exits non-zero when any scenario fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			scenarios, err := verifier.Select(appInstance.Catalog(), filters...)
			if err != nil {
				return err
			}
			report, err := appInstance.Runner().Run(cmd.Context(), scenarios)
			if err != nil {
				return fmt.Errorf("run scenarios: %w", err)
			}
			if err := printReport(cmd.OutOrStdout(), report, output); err != nil {
				return err
			}
			if !report.OK() {
				return errScenariosFailed
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&filters, "scenario", nil, "scenario names or rules to run (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func printReport(w io.Writer, report verifier.Report, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, res := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strings.ToUpper(string(res.Outcome)), res.Rule, res.Name, res.Detail)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, err := fmt.Fprintf(w, "\nrun %s: %d passed, %d failed, %d errored (%s)\n",
		report.RunID, report.Passed, report.Failed, report.Errored, report.URI)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Lists the scenario catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sc := range appInstance.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.Rule, sc.Name, sc.Description)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write scenarios: %w", err)
			}
			return nil
		},
	}
}
