package cli

import (
	"log/slog"

	"github.com/odysseus0/aidigest/internal/config"
	"github.com/odysseus0/aidigest/internal/fetch"
)

// App carries what every subcommand needs once flags and config are
// resolved.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	reader *fetch.Reader
}

func NewApp(cfg config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		reader: fetch.NewReader(cfg),
	}
}
