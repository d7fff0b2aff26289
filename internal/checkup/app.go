// Package checkup wires the checklist engine to its persistence backends.
// Commands and the TUI consume App instead of cherry-picking raw
// dependencies.
package checkup

import (
	"context"
	"fmt"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/config"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/logging"
	"github.com/colonyops/checkup/internal/data/db"
	"github.com/colonyops/checkup/internal/data/rest"
	"github.com/colonyops/checkup/internal/data/stores"
)

// App is the central entry point for all checkup operations.
type App struct {
	Config *config.Config
	DB     *db.DB
	Bus    *eventbus.EventBus

	// Local is the SQLite store; always available for authoring commands
	// regardless of the configured source.
	Local *stores.ChecklistStore

	// Source is the backend sessions read from and write to. Points at
	// Local when source=local, at the REST client when source=rest.
	Source checklist.Source
}

// NewApp constructs an App for the configured source. The database is
// always opened: local mode reads and writes it, remote mode still uses
// it for authoring commands.
func NewApp(cfg *config.Config, database *db.DB, bus *eventbus.EventBus) (*App, error) {
	local := stores.NewChecklistStore(database, cfg.REST.PollInterval)

	app := &App{
		Config: cfg,
		DB:     database,
		Bus:    bus,
		Local:  local,
		Source: local,
	}

	if cfg.Source == config.SourceREST {
		client, err := rest.New(rest.Options{
			Endpoint:     cfg.REST.Endpoint,
			APIKey:       cfg.REST.APIKey,
			PollInterval: cfg.REST.PollInterval,
		}, logging.Component("rest"))
		if err != nil {
			return nil, fmt.Errorf("create rest client: %w", err)
		}
		app.Source = client
	}

	return app, nil
}

// Start runs the event bus dispatch loop until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.Bus.Start(ctx)
}
