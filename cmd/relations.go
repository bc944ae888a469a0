package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/output"
)

var relationsCmd = &cobra.Command{
	Use:     "relations",
	Aliases: []string{"ls"},
	Short:   "Show the current parent/child collection relations",
	Long: `Fetch and display the parent/child collection relations for the shop.

Examples:
  colsync relations --shop example.myshopify.com
  colsync relations --json   # machine-readable output`,
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

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

		client := newClient(cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(), triggerTimeout)
		defer cancel()
		view, err := client.FetchRelations(ctx, shop)
		if err != nil {
			output.Error("fetch relations: %v", err)
			return err
		}

		if asJSON {
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Print(output.Relations(view, shop))
		return nil
	},
}

func init() {
	relationsCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(relationsCmd)
}
