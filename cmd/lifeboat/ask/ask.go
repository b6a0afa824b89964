package askcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/cliconfig"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
	"github.com/papercomputeco/lifeboat/pkg/session"
)

const askLongDesc string = `Ask the answer service one question about the passengers.

On a terminal the answer is typed out the way the dashboards show it.
When the output is piped only the final answer is printed. If the
answer service cannot be reached the fallback message is printed
instead of an answer.

Examples:
  lifeboat ask "How many passengers survived?"
  lifeboat ask --answer-url http://localhost:8000/ask What was the average fare?
  lifeboat ask --no-animate "Which class had the most passengers?" > answer.txt`

const askShortDesc string = "Ask the answer service a question"

type askCommander struct {
	flags     cliconfig.Flags
	noAnimate bool
	strict    bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmder.flags.Bind(cmd)
	cmd.Flags().BoolVar(&cmder.noAnimate, "no-animate", false, "Print only the final answer")
	cmd.Flags().BoolVar(&cmder.strict, "strict", false, "Exit with an error when the answer service is unavailable")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, query string) error {
	cfg, err := c.flags.Load()
	if err != nil {
		return err
	}

	log := logger.NewLoggerTo(cfg.Debug, cmd.ErrOrStderr())
	defer log.Sync()

	dispatcher, err := dispatch.New(cfg.Dispatch(), log)
	if err != nil {
		return fmt.Errorf("could not create dispatcher: %w", err)
	}

	sess := session.New(dispatcher, session.Options{
		Placeholder: cfg.Reveal.Placeholder,
		Pacer:       cfg.Pacer(),
	}, log)

	out := cmd.OutOrStdout()

	var (
		emit  func(reveal.Frame)
		shown string
	)
	cols, tty := terminalWidth(out)
	if tty && !c.noAnimate {
		emit = func(f reveal.Frame) {
			fmt.Fprint(out, redraw(shown, f.Text, cols))
			shown = f.Text
		}
	}

	turn, err := sess.Submit(ctx, query, emit)
	if err != nil {
		return fmt.Errorf("could not ask %q: %w", query, err)
	}

	if emit != nil {
		// redraw the whole answer in case the reveal was interrupted
		fmt.Fprintln(out, redraw(shown, turn.Content, cols))
	} else {
		fmt.Fprintln(out, turn.Content)
	}

	log.Debug("question answered",
		zap.Bool("fallback", turn.Fallback),
		zap.Int("chars", len([]rune(turn.Content))),
	)

	if c.strict && turn.Fallback {
		return fmt.Errorf("answer service at %s is unavailable", cfg.Answer.URL)
	}
	return nil
}

// terminalWidth reports the column count of w when it is a terminal, or 0
// when the width is unknown.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return 0, true
	}
	return cols, true
}

// redraw returns the output that replaces prev, already written with the
// cursor left at its end, by next. Every row prev occupies is erased,
// including rows produced by wrapping at cols. cols <= 0 counts only
// explicit newlines.
func redraw(prev, next string, cols int) string {
	var b strings.Builder
	b.WriteString("\r")
	if up := rows(prev, cols) - 1; up > 0 {
		b.WriteString(ansi.CursorUp(up))
	}
	b.WriteString(ansi.EraseScreenBelow)
	b.WriteString(next)
	return b.String()
}

// rows counts the terminal rows s occupies.
func rows(s string, cols int) int {
	n := 0
	for line := range strings.SplitSeq(s, "\n") {
		w := ansi.StringWidth(line)
		if cols <= 0 || w <= cols {
			n++
			continue
		}
		n += (w + cols - 1) / cols
	}
	return n
}
