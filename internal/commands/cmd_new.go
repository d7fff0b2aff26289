package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/checkup/internal/checkup"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type NewCmd struct {
	flags *Flags
	app   *checkup.App

	// Command-specific flags
	title        string
	clientName   string
	businessType string
	industry     string
	companySize  string
	empty        bool
	jsonOutput   bool
}

// NewNewCmd creates a new new command
func NewNewCmd(flags *Flags, app *checkup.App) *NewCmd {
	return &NewCmd{flags: flags, app: app}
}

// Register adds the new command to the application
func (cmd *NewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "new",
		Usage:     "Create a checklist from the audit template",
		UsageText: "checkup new [options]",
		Description: `Creates a new audit checklist in the local database, seeded from the
built-in template. The template adapts to the client's business type:
ecommerce clients get checkout and product markup items, local
businesses get listing consistency items.

When --title is omitted, an interactive form prompts for input.

Use --empty to start with no items and add them with 'checkup add'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "checklist title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "client",
				Usage:       "client name",
				Destination: &cmd.clientName,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "client business type (ecommerce, local, other)",
				Destination: &cmd.businessType,
			},
			&cli.StringFlag{
				Name:        "industry",
				Usage:       "client industry",
				Destination: &cmd.industry,
			},
			&cli.StringFlag{
				Name:        "size",
				Usage:       "client company size (solo, small, medium, large)",
				Destination: &cmd.companySize,
			},
			&cli.BoolFlag{
				Name:        "empty",
				Usage:       "create the checklist without template items",
				Destination: &cmd.empty,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the created checklist as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NewCmd) run(ctx context.Context, c *cli.Command) error {
	// Show interactive form if title not provided via flag
	if cmd.title == "" {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	var profile *checklist.ClientProfile
	if cmd.clientName != "" {
		profile = &checklist.ClientProfile{
			Name:         cmd.clientName,
			BusinessType: cmd.businessType,
			Industry:     cmd.industry,
			CompanySize:  cmd.companySize,
		}
	}

	cl := checklist.NewFromTemplate(cmd.title, profile, time.Now())
	if cmd.empty {
		cl.Items = nil
	}

	created, err := cmd.app.Local.CreateChecklist(ctx, cl)
	if err != nil {
		return fmt.Errorf("create checklist: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, created)
	}

	fmt.Fprintf(c.Root().Writer, "Created checklist %s with %d items\n", created.ID, len(created.Items))
	return nil
}

func (cmd *NewCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Checklist title").
				Placeholder("Acme Bakery Launch Audit").
				Validate(func(s string) error {
					if s == "" {
						return errors.New("title is required")
					}
					return nil
				}).
				Value(&cmd.title),
			huh.NewInput().
				Title("Client name").
				Placeholder("leave blank for no client").
				Value(&cmd.clientName),
			huh.NewSelect[string]().
				Title("Business type").
				Options(
					huh.NewOption("Local business", "local"),
					huh.NewOption("E-commerce", "ecommerce"),
					huh.NewOption("Other", "other"),
				).
				Value(&cmd.businessType),
			huh.NewSelect[string]().
				Title("Company size").
				Options(
					huh.NewOption("Solo", "solo"),
					huh.NewOption("Small (2-10)", "small"),
					huh.NewOption("Medium (11-50)", "medium"),
					huh.NewOption("Large (50+)", "large"),
				).
				Value(&cmd.companySize),
		),
	).Run()
}
