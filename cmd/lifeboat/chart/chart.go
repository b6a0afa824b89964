package chartcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/cliconfig"
	"github.com/papercomputeco/lifeboat/pkg/chart"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
)

const chartLongDesc string = `Draw one of the dashboard charts in the terminal.

The chart is one of:
  survival-by-sex     Survival by Gender
  class-distribution  Passenger Class Distribution
  age-distribution    Age Distribution (histogram with smoothed curve)

Titles are accepted as well as identifiers. Colours are dropped when
the output is not a terminal.

Examples:
  lifeboat chart survival-by-sex
  lifeboat chart "Age Distribution" --width 60
  lifeboat chart class-distribution --json`

const chartShortDesc string = "Draw a dashboard chart"

const defaultWidth = 80

type chartCommander struct {
	flags  cliconfig.Flags
	width  int
	asJSON bool
}

func NewChartCmd() *cobra.Command {
	cmder := &chartCommander{}

	cmd := &cobra.Command{
		Use:   "chart <kind>",
		Short: chartShortDesc,
		Long:  chartLongDesc,
		Args:  cobra.MinimumNArgs(1),
		ValidArgs: func() []string {
			names := make([]string, len(chart.Kinds))
			for i, k := range chart.Kinds {
				names[i] = string(k)
			}
			return names
		}(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmder.flags.Bind(cmd)
	cmd.Flags().IntVarP(&cmder.width, "width", "w", 0, "Chart width in columns (default: terminal width)")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the chart data as JSON")

	return cmd
}

func (c *chartCommander) run(_ context.Context, cmd *cobra.Command, selector string) error {
	kind, err := chart.ParseKind(selector)
	if err != nil {
		return err
	}

	cfg, err := c.flags.Load()
	if err != nil {
		return err
	}

	ds, err := passenger.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("could not load dataset: %w", err)
	}

	ch, err := chart.Build(kind, ds)
	if err != nil {
		return fmt.Errorf("could not build chart: %w", err)
	}

	out := cmd.OutOrStdout()

	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ch)
	}

	width, tty := outputWidth(out)
	if c.width > 0 {
		width = c.width
	}
	if !tty {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	fmt.Fprintln(out, chart.RenderText(ch, width))
	return nil
}

// outputWidth reports the terminal width of w, or the default width when w
// is not a terminal.
func outputWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth, false
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth, true
	}
	return width, true
}
