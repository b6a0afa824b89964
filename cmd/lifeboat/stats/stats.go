package statscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/cliconfig"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
	"github.com/papercomputeco/lifeboat/pkg/stats"
)

const statsLongDesc string = `Print the headline passenger statistics.

Reports the number of passengers, the survival rate and the average
age of passengers whose age is known. Figures with no underlying data
are shown as n/a (null with --json).

Examples:
  lifeboat stats
  lifeboat stats --dataset Titanic-Dataset.csv --json`

const statsShortDesc string = "Print headline passenger statistics"

var labelStyle = lipgloss.NewStyle().Bold(true).Width(18)

type statsCommander struct {
	flags  cliconfig.Flags
	asJSON bool
}

type statsOutput struct {
	Count           int      `json:"count"`
	SurvivalPercent *float64 `json:"survival_percent"`
	AverageAge      *float64 `json:"average_age"`
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Bind(cmd)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the statistics as JSON")

	return cmd
}

func (c *statsCommander) run(_ context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Load()
	if err != nil {
		return err
	}

	ds, err := passenger.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("could not load dataset: %w", err)
	}

	sum := stats.Summarize(ds)
	out := cmd.OutOrStdout()

	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statsOutput{
			Count:           sum.Count,
			SurvivalPercent: finite(sum.SurvivalPercent()),
			AverageAge:      finite(sum.AverageAgeRounded()),
		})
	}

	fmt.Fprintln(out, labelStyle.Render("Total Passengers")+fmt.Sprintf("%d", sum.Count))
	fmt.Fprintln(out, labelStyle.Render("Survival Rate")+format(sum.SurvivalPercent(), "%.2f%%"))
	fmt.Fprintln(out, labelStyle.Render("Average Age")+format(sum.AverageAgeRounded(), "%.1f"))
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func format(v float64, layout string) string {
	if finite(v) == nil {
		return "n/a"
	}
	return fmt.Sprintf(layout, v)
}
