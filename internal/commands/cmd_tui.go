package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/tui"
	"github.com/urfave/cli/v3"
)

type TuiCmd struct {
	flags *Flags
	app   *checkup.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *checkup.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Work through a checklist interactively",
		UsageText: "checkup tui <checklist-id>",
		Description: `Opens the checklist in an interactive interface. Changes are pushed to
the configured source as you make them; edits from other clients show
up live.`,
		Action: cmd.Run,
	})

	return app
}

// Run starts the interactive interface. Also used as the root action when
// checkup is invoked with a checklist ID and no subcommand.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	checklistID := c.Args().First()
	if checklistID == "" {
		return fmt.Errorf("checklist ID argument is required. Run 'checkup ls' to find one")
	}

	return tui.Run(ctx, cmd.app, checklistID)
}
