package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/sirr/internal/cli"
	"github.com/julianstephens/sirr/internal/content"
)

// SyncCmd pulls the Ramadan calendar state (active flag and current day).
type SyncCmd struct{}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	status, err := content.NewSyncer(ctx.Content(settings), ctx.Store).Sync(context.Background())
	if status.Active {
		fmt.Printf("Ramadan is active. Current day: %d\n", status.CurrentDay)
	} else {
		fmt.Println("Ramadan is not active.")
	}
	if err != nil {
		fmt.Println("Some values could not be fetched; local values were kept.")
		return err
	}
	return nil
}
