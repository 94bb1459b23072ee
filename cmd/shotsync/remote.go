package main

import (
	"context"
	"errors"
	"log/slog"

	"shotsync/internal/config"
	"shotsync/internal/ledger"
	"shotsync/internal/logging"
	"shotsync/internal/services"
	"shotsync/internal/services/kitsu"
)

// remoteSide is the Kitsu half of a reconciliation.
type remoteSide struct {
	client  *kitsu.Client
	project kitsu.Project
	ledger  ledger.Ledger
}

// fetchRemote logs in, resolves the project and builds the remote ledger
// from the sequence's shots. A sequence that does not exist yet yields an
// empty ledger, so every local shot reports as missing in remote.
func fetchRemote(ctx context.Context, cfg *config.Config, projectName, sequence string, logger *slog.Logger) (remoteSide, error) {
	if err := cfg.RequireKitsu(); err != nil {
		return remoteSide{}, services.Wrap(services.ErrConfiguration, "kitsu", "configure", "", err)
	}
	client, err := kitsu.New(cfg.Kitsu, kitsu.WithLogger(logger))
	if err != nil {
		return remoteSide{}, err
	}
	if err := client.Authenticate(ctx); err != nil {
		return remoteSide{}, err
	}
	project, err := client.GetProject(ctx, projectName)
	if err != nil {
		return remoteSide{}, err
	}

	side := remoteSide{client: client, project: project, ledger: ledger.Ledger{}}
	seq, err := client.GetSequence(ctx, project, sequence)
	if errors.Is(err, services.ErrNotFound) {
		logger.Info("sequence not in kitsu yet; remote shot list is empty",
			logging.String("project", project.Name),
			logging.String("sequence", sequence),
		)
		return side, nil
	}
	if err != nil {
		return remoteSide{}, err
	}
	shots, err := client.ListShots(ctx, seq)
	if err != nil {
		return remoteSide{}, err
	}
	side.ledger = ledger.FromRemote(shots)
	logger.Info("remote shots loaded",
		logging.String("project", project.Name),
		logging.String("sequence", seq.Name),
		logging.Int("shots", len(side.ledger)),
	)
	return side, nil
}
