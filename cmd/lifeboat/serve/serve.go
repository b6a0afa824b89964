package servecmder

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/cliconfig"
	"github.com/papercomputeco/lifeboat/dashboard"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
)

const serveLongDesc string = `Serve the passenger dashboard over HTTP.

Loads the passenger dataset once and serves the headline statistics,
the three charts, and a per-session chat with the answer service.
Answers are streamed as NDJSON reveal frames.

Examples:
  lifeboat serve
  lifeboat serve --listen :9090 --answer-url http://localhost:8000/ask
  lifeboat serve --config lifeboat.toml`

const serveShortDesc string = "Serve the web dashboard"

type serveCommander struct {
	flags  cliconfig.Flags
	listen string

	// set by tests to serve on a prepared listener
	listener net.Listener
	ready    chan<- *dashboard.Server
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Bind(cmd)
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides the config file)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Load()
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.ListenAddr = c.listen
	}

	log := logger.NewLoggerTo(cfg.Debug, cmd.ErrOrStderr())
	defer log.Sync()

	ds, err := passenger.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("could not load dataset: %w", err)
	}

	dispatcher, err := dispatch.New(cfg.Dispatch(), log)
	if err != nil {
		return fmt.Errorf("could not create dispatcher: %w", err)
	}

	srv, err := dashboard.New(dashboard.Config{
		ListenAddr:  cfg.ListenAddr,
		SessionTTL:  cfg.SessionTTL,
		Placeholder: cfg.Reveal.Placeholder,
		Pacer:       cfg.Pacer(),
	}, ds, dispatcher, log)
	if err != nil {
		return fmt.Errorf("could not create dashboard: %w", err)
	}

	log.Info("lifeboat dashboard starting",
		zap.String("dataset", cfg.DatasetPath),
		zap.String("answer_url", cfg.Answer.URL),
		zap.Bool("debug", cfg.Debug),
	)

	errCh := make(chan error, 1)
	go func() {
		if c.listener != nil {
			errCh <- srv.RunWithListener(c.listener)
			return
		}
		errCh <- srv.Run()
	}()
	if c.ready != nil {
		c.ready <- srv
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down dashboard")
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("could not shut down dashboard: %w", err)
		}
		return nil
	}
}
