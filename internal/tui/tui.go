package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/logging"
	"github.com/colonyops/checkup/internal/engine"
)

// Run opens a session on the checklist and blocks in the interactive
// interface until the user quits. The session is closed on exit; any
// remote results still in flight at that point are discarded.
func Run(ctx context.Context, app *checkup.App, checklistID string) error {
	log := logging.Component("tui")

	session, err := engine.Open(ctx, app.Source, checklistID, app.Bus, logging.Component("session"))
	if err != nil {
		return fmt.Errorf("open checklist %s: %w", checklistID, err)
	}
	defer session.Close()

	p := tea.NewProgram(newModel(session), tea.WithAltScreen(), tea.WithContext(ctx))

	// Forward bus events into the program so edits from other clients
	// repaint the list.
	app.Bus.SubscribeRemoteReceived(func(payload eventbus.RemoteReceivedPayload) {
		p.Send(remoteChangeMsg{itemID: payload.Item.ID})
	})

	log.Debug().Str("checklist_id", checklistID).Msg("starting interactive session")

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
