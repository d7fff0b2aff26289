package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/stats"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type StatsCmd struct {
	flags *Flags
	app   *checkup.App

	// flags
	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *checkup.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show progress statistics for a checklist",
		UsageText: "checkup stats [--json] <checklist-id>",
		Description: `Computes overall progress, per-category breakdowns, priority counts,
and time estimates for a checklist.`,
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

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	checklistID := c.Args().First()
	if checklistID == "" {
		return fmt.Errorf("checklist ID argument is required")
	}

	cl, err := cmd.app.Source.FetchChecklist(ctx, checklistID)
	if err != nil {
		return fmt.Errorf("fetch checklist %s: %w", checklistID, err)
	}

	result := stats.Compute(cl.Items)

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result)
	}

	out := c.Root().Writer

	fmt.Fprintf(out, "%s\n", cl.Title)
	fmt.Fprintf(out, "Progress: %d/%d items (%.0f%%)\n", result.CompletedItems, result.TotalItems, result.ProgressPercentage)
	fmt.Fprintf(out, "Time: %d estimated, %d logged, %d remaining\n\n",
		result.EstimatedMinutes, result.ActualMinutes, stats.RemainingMinutes(cl.Items))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tDONE\tTOTAL\tPERCENT")
	for _, category := range checklist.Categories {
		cs, ok := result.Categories[category]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.0f%%\n", category, cs.Completed, cs.Total, cs.Percentage)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(w, "PRIORITY\tITEMS")
	for _, priority := range checklist.Priorities {
		if n := result.Priorities[priority]; n > 0 {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", priority, n)
		}
	}
	return w.Flush()
}
