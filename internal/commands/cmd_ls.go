package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags *Flags
	app   *checkup.App

	// flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *checkup.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List checklists",
		UsageText: "checkup ls [--json]",
		Description: `Displays a table of all checklists with their client, item counts,
and completion progress.

Use --json for machine-readable output.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	summaries, err := cmd.app.Local.ListChecklists(ctx)
	if err != nil {
		return fmt.Errorf("list checklists: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintf(os.Stderr, "No checklists found. Run 'checkup new' to create one.\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tCLIENT\tPROGRESS\tUPDATED")

	for _, s := range summaries {
		progress := fmt.Sprintf("%d/%d", s.Completed, s.Items)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Title, s.ClientName, progress, s.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}
