package cmd

import (
	"fmt"
	"log/slog"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/config"
	"github.com/quickstart-labs/hubctl/internal/logging"
)

// session is the loaded config plus a client and logger built from it.
type session struct {
	cfg    *config.Config
	client *api.Client
	logger *slog.Logger
	close  func() error
}

func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}
	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(cfg.ResolvedBaseURL(), cfg.APIKey)
	client.SetLogger(logger)
	return &session{cfg: cfg, client: client, logger: logger, close: closeLog}, nil
}
