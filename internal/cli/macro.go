package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dicetray/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
)

func newMacroCmd(opts *options) *cobra.Command {
	flags := &rollFlags{}
	cmd := &cobra.Command{
		Use:   "macro <name> [args...]",
		Short: "Expand a Lua macro and roll the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			macros, err := loadMacros(cfg.Scripting, logger)
			if err != nil {
				return err
			}
			if macros == nil {
				return errors.New("no macro directory configured (scripting.macros_dir)")
			}
			defer macros.Close()

			spec, err := macros.Expand(args[0], args[1:]...)
			if err != nil {
				return err
			}
			return rollLocal(cmd, cfg, logger, spec.String(), flags)
		},
	}
	flags.register(cmd)
	cmd.AddCommand(newMacroListCmd(opts))
	return cmd
}

func newMacroListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the loaded macros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			macros, err := loadMacros(cfg.Scripting, logger)
			if err != nil {
				return err
			}
			if macros == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No macros loaded.")
				return nil
			}
			defer macros.Close()
			fmt.Fprintln(cmd.OutOrStdout(), telnet.StripANSI(handlers.RenderMacros(macros.Macros())))
			return nil
		},
	}
}
