package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/validate"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type AddCmd struct {
	flags *Flags
	app   *checkup.App

	checklistID string
	description string
	category    string
	priority    string
	estimated   int
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *checkup.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add an item to a checklist",
		UsageText: "checkup add -C <checklist-id> [options] <title>",
		Description: `Appends a new item to an existing checklist in the local database.

Examples:
  checkup add -C abc123 "Compress hero video" --category Performance --priority high
  checkup add -C abc123 "Write launch announcement" --category Content --est 60`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "checklist",
				Aliases:     []string{"C"},
				Usage:       "checklist ID",
				Required:    true,
				Destination: &cmd.checklistID,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "item description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "item category",
				Value:       string(checklist.CategoryGeneral),
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "priority",
				Usage:       "item priority (critical, high, medium, low)",
				Value:       string(checklist.PriorityMedium),
				Destination: &cmd.priority,
			},
			&cli.IntFlag{
				Name:        "est",
				Usage:       "estimated minutes",
				Destination: &cmd.estimated,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	title := c.Args().First()
	if err := validate.Title(title); err != nil {
		return err
	}

	category := checklist.Category(cmd.category)
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", cmd.category)
	}
	priority := checklist.Priority(cmd.priority)
	if !priority.Valid() {
		return fmt.Errorf("unknown priority %q", cmd.priority)
	}

	it := checklist.Item{
		Title:       title,
		Description: cmd.description,
		Category:    category,
		Priority:    priority,
	}
	if cmd.estimated > 0 {
		est := cmd.estimated
		it.EstimatedMinutes = &est
	}

	added, err := cmd.app.Local.AddItem(ctx, cmd.checklistID, it)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, added)
}
