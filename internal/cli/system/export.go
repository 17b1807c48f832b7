package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/report"
	"github.com/julianstephens/sirr/internal/utils"
)

// ExportCmd writes the journey and prayer history to a spreadsheet.
type ExportCmd struct {
	Out string `help:"Output .xlsx file." default:"sirr-progress.xlsx" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	progress, err := ctx.Store.ListProgress(bg)
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	prayers, err := ctx.Store.ListPrayers(bg)
	if err != nil {
		return fmt.Errorf("failed to list prayers: %w", err)
	}

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	data := report.Data{
		Progress: progress,
		Prayers:  prayers,
		Location: loc,
	}
	if err := report.Write(c.Out, data); err != nil {
		return err
	}
	fmt.Printf("Exported %d completed days and %d prayer records to %s\n", countCompleted(data), len(prayers), c.Out)
	return nil
}

func countCompleted(data report.Data) int {
	n := 0
	for _, p := range data.Progress {
		if p.Completed {
			n++
		}
	}
	return n
}
