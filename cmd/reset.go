package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/confirm"
	"github.com/marcus/colsync/internal/output"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all parent-child collection relationships",
	Long: `Remove every parent-child relationship the sync created for the shop.
Collections themselves are not deleted.

Examples:
  colsync reset --shop example.myshopify.com
  colsync reset --yes`,
	GroupID: "actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		cfg, err := config.Resolve(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		shop, err := resolveShop(cmd, cfg)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if !yes {
			ok, err := confirm.Ask("Are you sure? This will delete all parent-child collection relationships.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		client := newClient(cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(), triggerTimeout)
		defer cancel()
		if err := client.TriggerReset(ctx, shop); err != nil {
			output.Error("reset: %v", err)
			return err
		}

		output.Success("All parent-child relationships removed.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
