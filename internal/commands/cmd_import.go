package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type ImportCmd struct {
	flags *Flags
	app   *checkup.App

	checklistID string
	reader      iojson.FileReader[[]checklist.RawItem]
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *checkup.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Import items from JSON into a checklist",
		UsageText: "checkup import -C <checklist-id> [-f <path>]",
		Description: `Reads a JSON array of items from a file or stdin and appends them to
a checklist. Records are normalized on the way in: unknown categories
bucket into General, unknown priorities are rejected, and completion
timestamps are repaired.

Example record:
  {"id": "img1", "title": "Compress images", "category": "Performance", "priority": "high"}`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "checklist",
				Aliases:     []string{"C"},
				Usage:       "checklist ID",
				Required:    true,
				Destination: &cmd.checklistID,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	raws, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	items, err := checklist.NormalizeAll(raws)
	if err != nil {
		return fmt.Errorf("invalid import: %w", err)
	}

	for _, it := range items {
		if _, err := cmd.app.Local.AddItem(ctx, cmd.checklistID, it); err != nil {
			return fmt.Errorf("add item %s: %w", it.ID, err)
		}
	}

	fmt.Fprintf(c.Root().Writer, "Imported %d items into %s\n", len(items), cmd.checklistID)
	return nil
}
