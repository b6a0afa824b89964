package tuicmder

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/cliconfig"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
	"github.com/papercomputeco/lifeboat/pkg/session"
	"github.com/papercomputeco/lifeboat/pkg/tui"
)

const tuiLongDesc string = `Open the passenger dashboard in the terminal.

Shows the headline statistics, a chat with the answer service and the
three charts. Logs are written to a file so they do not disturb the
screen.

Keys:
  enter           ask the typed question
  tab, shift+tab  cycle charts (alt+1..alt+3 jump to one)
  ctrl+l          clear the chat
  f1              toggle help
  esc, ctrl+c     quit

Examples:
  lifeboat tui
  lifeboat tui --dataset Titanic-Dataset.csv --log-file /tmp/lifeboat.log`

const tuiShortDesc string = "Open the terminal dashboard"

type tuiCommander struct {
	flags         cliconfig.Flags
	logFile       string
	markdownStyle string

	// extra program options, set by tests
	programOpts []tea.ProgramOption
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Bind(cmd)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "lifeboat.log", "File to write logs to")
	cmd.Flags().StringVar(&cmder.markdownStyle, "style", "", "Markdown style for answers: dark, light, notty (default: detect)")

	return cmd
}

func (c *tuiCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.flags.Load()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", c.logFile, err)
	}
	defer f.Close()

	log := logger.NewLoggerTo(cfg.Debug, f)
	defer log.Sync()

	ds, err := passenger.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("could not load dataset: %w", err)
	}

	dispatcher, err := dispatch.New(cfg.Dispatch(), log)
	if err != nil {
		return fmt.Errorf("could not create dispatcher: %w", err)
	}

	sess := session.New(dispatcher, session.Options{
		Placeholder: cfg.Reveal.Placeholder,
		Pacer:       cfg.Pacer(),
	}, log)

	model := tui.New(sess, ds, tui.Options{
		Pacer:         cfg.Pacer(),
		Placeholder:   cfg.Reveal.Placeholder,
		MarkdownStyle: c.markdownStyle,
	}, log)

	log.Info("terminal dashboard starting",
		zap.String("session", sess.ID()),
		zap.Int("passengers", ds.Len()),
		zap.String("answer_url", cfg.Answer.URL),
	)

	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	}, c.programOpts...)

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("terminal dashboard failed: %w", err)
	}

	log.Info("terminal dashboard closed", zap.Int("turns", len(sess.Turns())))
	return nil
}
