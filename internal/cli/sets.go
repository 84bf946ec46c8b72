package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dicetray/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
)

func newSetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List the available dice sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			catalog, err := loadCatalog(cfg.Dice, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), telnet.StripANSI(handlers.RenderSets(catalog.Sets(), cfg.Dice.DefaultSet)))
			return nil
		},
	}
}
