package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/lifeboat/cmd/lifeboat/ask"
	chartcmder "github.com/papercomputeco/lifeboat/cmd/lifeboat/chart"
	servecmder "github.com/papercomputeco/lifeboat/cmd/lifeboat/serve"
	statscmder "github.com/papercomputeco/lifeboat/cmd/lifeboat/stats"
	tuicmder "github.com/papercomputeco/lifeboat/cmd/lifeboat/tui"
)

const lifeboatLongDesc string = `lifeboat is a dashboard for the Titanic passenger dataset.

It reports headline statistics and charts, and lets you ask questions
about the passengers through a separate answer service. The dashboard
runs in the browser (serve) or in the terminal (tui).`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifeboat",
		Short:         "Titanic passenger dashboard",
		Long:          lifeboatLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(chartcmder.NewChartCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
