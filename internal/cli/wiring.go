package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/scripting"
	"github.com/cory-johannsen/dicetray/internal/tray"
)

// sourceFactory returns a constructor for the configured random source. A
// non-zero pcg seed gives every caller the same sequence.
func sourceFactory(cfg config.DiceConfig) (func() dice.Source, error) {
	switch cfg.Source {
	case "crypto":
		return dice.NewCryptoSource, nil
	case "pcg":
		if cfg.Seed != 0 {
			seed := cfg.Seed
			return func() dice.Source { return dice.NewSeededSource(seed) }, nil
		}
		return dice.NewSource, nil
	default:
		return nil, fmt.Errorf("unknown dice source %q", cfg.Source)
	}
}

// loadCatalog reads dice sets from cfg.SetsDir, or returns the built-in set.
func loadCatalog(cfg config.DiceConfig, logger *zap.Logger) (*tray.Catalog, error) {
	if cfg.SetsDir == "" {
		return tray.DefaultCatalog(), nil
	}
	catalog, err := tray.LoadCatalog(cfg.SetsDir)
	if err != nil {
		return nil, fmt.Errorf("loading dice sets: %w", err)
	}
	logger.Info("dice sets loaded",
		zap.String("dir", cfg.SetsDir),
		zap.Int("sets", len(catalog.Sets())),
	)
	return catalog, nil
}

// loadMacros returns nil when no macro directory is configured.
func loadMacros(cfg config.ScriptingConfig, logger *zap.Logger) (*scripting.Manager, error) {
	if cfg.MacrosDir == "" {
		return nil, nil
	}
	mgr := scripting.NewManager(logger, cfg.InstructionLimit)
	if _, err := mgr.LoadDir(cfg.MacrosDir); err != nil {
		mgr.Close()
		return nil, err
	}
	return mgr, nil
}

// newLocalTray builds a tray that reveals immediately, for one-shot rolls.
func newLocalTray(cfg config.Config, catalog *tray.Catalog, src dice.Source, notifier tray.Notifier, logger *zap.Logger, opts ...tray.Option) (*tray.Tray, error) {
	set, ok := catalog.Set(cfg.Dice.DefaultSet)
	if !ok {
		return nil, fmt.Errorf("%w %q", tray.ErrUnknownSet, cfg.Dice.DefaultSet)
	}
	opts = append([]tray.Option{
		tray.WithKeptFaces(cfg.Dice.KeptFaces),
		tray.WithMaxDice(cfg.Tray.MaxDice),
	}, opts...)
	return tray.NewTray(
		catalog,
		tray.NewSelectionStore(set),
		tray.NewRollStore(),
		tray.NewHistoryStore(cfg.History.Capacity),
		dice.NewRoller(src, logger),
		notifier,
		logger,
		opts...,
	), nil
}
