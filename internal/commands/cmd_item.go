package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/logging"
	"github.com/colonyops/checkup/internal/engine"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// ItemCmd implements the checkup item command group.
type ItemCmd struct {
	flags *Flags
	app   *checkup.App

	checklistID string

	// notes flags
	notes string

	// verify flags
	method string

	// time flags
	minutes int
}

// NewItemCmd creates a new item command.
func NewItemCmd(flags *Flags, app *checkup.App) *ItemCmd {
	return &ItemCmd{flags: flags, app: app}
}

// Register adds the item command to the application.
func (cmd *ItemCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "item",
		Usage: "Update checklist items",
		Description: `Item commands apply a single change to an item and print the result
as JSON.

Changes are applied optimistically and pushed to the configured source;
if the push fails the change is rolled back and the command reports the
error.

Examples:
  checkup item toggle -C <checklist-id> <item-id>
  checkup item notes -C <checklist-id> <item-id> --notes "waiting on DNS"
  checkup item verify -C <checklist-id> <item-id> --method manual
  checkup item time -C <checklist-id> <item-id> --minutes 45`,
		Commands: []*cli.Command{
			cmd.toggleCmd(),
			cmd.notesCmd(),
			cmd.verifyCmd(),
			cmd.timeCmd(),
		},
	})

	return app
}

func (cmd *ItemCmd) checklistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "checklist",
		Aliases:     []string{"C"},
		Usage:       "checklist ID",
		Required:    true,
		Destination: &cmd.checklistID,
	}
}

func (cmd *ItemCmd) toggleCmd() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Toggle an item's completion",
		UsageText: "checkup item toggle -C <checklist-id> <item-id>",
		Flags:     []cli.Flag{cmd.checklistFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.mutate(ctx, c, func(ctx context.Context, s *engine.Session, itemID string) (checklist.Item, error) {
				return s.ToggleItem(ctx, itemID)
			})
		},
	}
}

func (cmd *ItemCmd) notesCmd() *cli.Command {
	return &cli.Command{
		Name:      "notes",
		Usage:     "Replace an item's notes",
		UsageText: "checkup item notes -C <checklist-id> <item-id> --notes <text>",
		Flags: []cli.Flag{
			cmd.checklistFlag(),
			&cli.StringFlag{
				Name:        "notes",
				Aliases:     []string{"n"},
				Usage:       "note text (empty clears the notes)",
				Destination: &cmd.notes,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.mutate(ctx, c, func(ctx context.Context, s *engine.Session, itemID string) (checklist.Item, error) {
				return s.UpdateNotes(ctx, itemID, cmd.notes)
			})
		},
	}
}

func (cmd *ItemCmd) verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Attach a verification to an item",
		UsageText: "checkup item verify -C <checklist-id> <item-id> --method <method>",
		Description: `Attaches a pending verification to the item. Valid methods are
manual, automated, and external.`,
		Flags: []cli.Flag{
			cmd.checklistFlag(),
			&cli.StringFlag{
				Name:        "method",
				Aliases:     []string{"m"},
				Usage:       "verification method (manual, automated, external)",
				Value:       string(checklist.VerificationManual),
				Destination: &cmd.method,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			method := checklist.VerificationMethod(cmd.method)
			if !method.Valid() {
				return fmt.Errorf("unknown verification method %q", cmd.method)
			}
			return cmd.mutate(ctx, c, func(ctx context.Context, s *engine.Session, itemID string) (checklist.Item, error) {
				return s.AddVerification(ctx, itemID, method)
			})
		},
	}
}

func (cmd *ItemCmd) timeCmd() *cli.Command {
	return &cli.Command{
		Name:      "time",
		Usage:     "Record actual minutes spent on an item",
		UsageText: "checkup item time -C <checklist-id> <item-id> --minutes <n>",
		Flags: []cli.Flag{
			cmd.checklistFlag(),
			&cli.IntFlag{
				Name:        "minutes",
				Aliases:     []string{"m"},
				Usage:       "minutes spent",
				Required:    true,
				Destination: &cmd.minutes,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.mutate(ctx, c, func(ctx context.Context, s *engine.Session, itemID string) (checklist.Item, error) {
				return s.LogActualMinutes(ctx, itemID, cmd.minutes)
			})
		},
	}
}

// mutate opens a short-lived session, applies fn to the positional item,
// and prints the resulting item.
func (cmd *ItemCmd) mutate(ctx context.Context, c *cli.Command, fn func(context.Context, *engine.Session, string) (checklist.Item, error)) error {
	itemID := c.Args().First()
	if itemID == "" {
		return fmt.Errorf("item ID argument is required")
	}

	session, err := engine.Open(ctx, cmd.app.Source, cmd.checklistID, cmd.app.Bus, logging.Component("session"))
	if err != nil {
		return fmt.Errorf("open checklist %s: %w", cmd.checklistID, err)
	}
	defer session.Close()

	it, err := fn(ctx, session, itemID)
	if err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, it)
}
