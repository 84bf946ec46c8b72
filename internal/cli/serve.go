package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dice tray over Telnet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			newSource, err := sourceFactory(cfg.Dice)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Dice, logger)
			if err != nil {
				return err
			}
			macros, err := loadMacros(cfg.Scripting, logger)
			if err != nil {
				return err
			}
			if macros != nil {
				defer macros.Close()
			}

			handler, err := handlers.NewTrayHandler(cfg, catalog, macros, newSource, logger)
			if err != nil {
				return err
			}
			acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

			lifecycle := server.NewLifecycle(logger)
			lifecycle.Add("telnet", &server.FuncService{
				StartFn: acceptor.ListenAndServe,
				StopFn:  acceptor.Stop,
			})

			logger.Info("dice tray initialized",
				zap.Duration("startup", time.Since(start)),
				zap.String("telnet_addr", cfg.Telnet.Addr()),
				zap.String("default_set", cfg.Dice.DefaultSet),
				zap.String("source", cfg.Dice.Source),
				zap.Duration("reveal_delay", cfg.Tray.RevealDelay),
			)
			return lifecycle.Run(cmd.Context())
		},
	}
}
