package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/tray"
	"go.uber.org/zap"
)

type rollFlags struct {
	advantage    bool
	disadvantage bool
	hidden       bool
	repeat       int
}

func (f *rollFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.advantage, "adv", "a", false, "Roll the kept die twice and keep the higher")
	cmd.Flags().BoolVarP(&f.disadvantage, "dis", "d", false, "Roll the kept die twice and keep the lower")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "Do not print the individual dice")
	cmd.Flags().IntVarP(&f.repeat, "repeat", "n", 1, "Number of times to roll")
	cmd.MarkFlagsMutuallyExclusive("adv", "dis")
}

func (f *rollFlags) mode() dice.Advantage {
	switch {
	case f.advantage:
		return dice.WithAdvantage
	case f.disadvantage:
		return dice.WithDisadvantage
	default:
		return dice.None
	}
}

func newRollCmd(opts *options) *cobra.Command {
	flags := &rollFlags{}
	cmd := &cobra.Command{
		Use:     "roll <specifier>",
		Short:   "Roll a specifier such as 2d6+3 and print the result",
		Example: "  dicetray roll 2d6+3\n  dicetray roll d20 --adv\n  dicetray roll 4d6 -n 6",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return rollLocal(cmd, cfg, logger, strings.Join(args, " "), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// rollLocal rolls input through a local tray and prints one line per roll.
// Errors reach the user through the tray notifier on errOut.
func rollLocal(cmd *cobra.Command, cfg config.Config, logger *zap.Logger, input string, flags *rollFlags) error {
	if flags.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", flags.repeat)
	}
	newSource, err := sourceFactory(cfg.Dice)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg.Dice, logger)
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	notifier := tray.NotifierFunc(func(msg string) { fmt.Fprintln(errOut, msg) })
	t, err := newLocalTray(cfg, catalog, newSource(), notifier, logger,
		tray.WithCompletionHook(func(e tray.HistoryEntry) { printEntry(out, e) }),
	)
	if err != nil {
		return err
	}
	t.SetHidden(flags.hidden)

	for i := 0; i < flags.repeat; i++ {
		// Completion resets the advantage mode along with the selection.
		t.SetAdvantage(flags.mode())
		if _, err := t.Roll(input); err != nil {
			return errRollFailed
		}
	}
	if t.State() != tray.Finished {
		return errors.New("roll did not finish")
	}
	return nil
}

// errRollFailed is returned after the notifier has already explained the failure.
var errRollFailed = errors.New("roll failed")

func printEntry(w io.Writer, e tray.HistoryEntry) {
	expr := e.Counts.Expression(e.Bonus)
	if e.Hidden {
		fmt.Fprintf(w, "%s = %d\n", expr, e.Total)
		return
	}
	line := dice.RollResult{Expression: expr, Dice: e.Results, Modifier: e.Bonus}.String()
	if e.Advantage != dice.None {
		line += " (" + e.Advantage.String() + ")"
	}
	fmt.Fprintln(w, line)
}
