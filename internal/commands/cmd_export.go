package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/engine"
	"github.com/urfave/cli/v3"
)

type ExportCmd struct {
	flags *Flags
	app   *checkup.App

	// flags
	outPath string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *checkup.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export a checklist snapshot as JSON",
		UsageText: "checkup export [--out <path>] <checklist-id>",
		Description: `Exports the checklist with freshly computed statistics and an export
timestamp. Writes to stdout unless --out is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.outPath,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	checklistID := c.Args().First()
	if checklistID == "" {
		return fmt.Errorf("checklist ID argument is required")
	}

	cl, err := cmd.app.Source.FetchChecklist(ctx, checklistID)
	if err != nil {
		return fmt.Errorf("fetch checklist %s: %w", checklistID, err)
	}

	snapshot := engine.BuildSnapshot(cl, time.Now())

	bits, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	bits = append(bits, '\n')

	if cmd.outPath != "" {
		if err := os.WriteFile(cmd.outPath, bits, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cmd.outPath, err)
		}
		fmt.Fprintf(c.Root().Writer, "Exported %s to %s\n", checklistID, cmd.outPath)
		return nil
	}

	_, err = c.Root().Writer.Write(bits)
	return err
}
